package format

import "time"

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}

// DerefInt safely dereferences a *int and returns a default value if nil.
func DerefInt(i *int, defaultVal int) int {
	if i != nil {
		return *i
	}
	return defaultVal
}

// YesNo renders a tri-state flag with the given labels for true, false and unset.
func YesNo(b *bool, yes, no, unset string) string {
	switch {
	case b == nil:
		return unset
	case *b:
		return yes
	default:
		return no
	}
}

// DerefTime renders *t with layout or returns defaultVal.
func DerefTime(t *time.Time, layout, defaultVal string) string {
	if t == nil {
		return defaultVal
	}
	return t.Format(layout)
}
