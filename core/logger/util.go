package logger

import (
	"strings"
	"time"
)

// RoundMS rounds d to whole milliseconds; negative durations become 0.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took is RoundMS of the time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// SummarizeStrings renders at most limit values as a comma separated
// preview. truncated reports that values were left out.
func SummarizeStrings(values []string, limit int) (preview string, truncated bool) {
	if len(values) > limit {
		truncated = true
		values = values[:max(limit, 0)]
	}
	return strings.Join(values, ", "), truncated
}
