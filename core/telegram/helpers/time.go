package helpers

import (
	"strings"
	"time"
)

var dateTimeLayouts = []string{
	"02.01.2006 15:04",
	"2.1.2006 15:04",
	"2.1.2006 15.04",
}

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
}

// ParseDateTime parses "DD.MM.YYYY HH:MM" as typed by users, in loc.
func ParseDateTime(input string, loc *time.Location) (time.Time, bool) {
	return parseIn(dateTimeLayouts, input, loc)
}

// ParseDate parses "DD.MM.YYYY", accepting single digit day and month, in loc.
func ParseDate(input string, loc *time.Location) (time.Time, bool) {
	return parseIn(dateLayouts, input, loc)
}

func parseIn(layouts []string, input string, loc *time.Location) (time.Time, bool) {
	s := strings.Join(strings.Fields(input), " ")
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders t the way ParseDateTime reads it.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
