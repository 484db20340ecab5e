package buildinfo

import "testing"

func TestSummary(t *testing.T) {
	prevV, prevC, prevD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = prevV, prevC, prevD })

	cases := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "", "", "dev"},
		{"v1.0.0", "abc", "", "v1.0.0 (abc)"},
		{"v1.0.0", "abc", "2025-01-01", "v1.0.0 (abc, 2025-01-01)"},
	}
	for _, tc := range cases {
		Version, Commit, Date = tc.version, tc.commit, tc.date
		if got := Summary(); got != tc.want {
			t.Errorf("Summary() = %q, want %q", got, tc.want)
		}
	}
}
