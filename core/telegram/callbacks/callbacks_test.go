package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name          string
		cb            *tele.Callback
		unique, extra string
	}{
		{"raw", &tele.Callback{Data: "\fusers_page|2"}, "users_page", "2"},
		{"no payload", &tele.Callback{Data: "\fadmin_menu"}, "admin_menu", ""},
		{"routed", &tele.Callback{Unique: "show_user", Data: "42"}, "show_user", "42"},
		{"nil", nil, "", ""},
	}
	for _, tt := range tests {
		u, p := ParseCallbackData(tt.cb)
		if u != tt.unique || p != tt.extra {
			t.Errorf("%s: got (%q, %q), want (%q, %q)", tt.name, u, p, tt.unique, tt.extra)
		}
	}
}

func TestFields(t *testing.T) {
	f := Split(Join(int64(7), "car", 1), 3)
	id, field, flag := f.Int64(), f.String(), f.Bool()
	if err := f.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if id != 7 || field != "car" || !flag {
		t.Fatalf("decoded %d %q %v", id, field, flag)
	}

	bad := Split("x:1", 2)
	_ = bad.Int64()
	_ = bad.Int()
	if bad.Err() == nil {
		t.Fatal("expected error for non numeric field")
	}
	if Split("1:2:3", 2).Err() == nil {
		t.Fatal("expected arity error")
	}
	if Split("", 0).Err() != nil {
		t.Fatal("empty payload with zero fields must decode")
	}
}
