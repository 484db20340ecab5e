package buildinfo

import "strings"

// These variables are set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/teambot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/teambot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/teambot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// Summary renders "version (commit, date)" skipping empty parts.
func Summary() string {
	var meta []string
	if c := strings.TrimSpace(Commit); c != "" {
		meta = append(meta, c)
	}
	if d := strings.TrimSpace(Date); d != "" {
		meta = append(meta, d)
	}
	if len(meta) == 0 {
		return Version
	}
	return Version + " (" + strings.Join(meta, ", ") + ")"
}
