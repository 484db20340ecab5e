package callbacks

import (
	"fmt"
	"strconv"
	"strings"
)

// Sep separates payload fields.
const Sep = ":"

// Join renders payload fields.
func Join(fields ...any) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprint(f)
	}
	return strings.Join(parts, Sep)
}

// Fields is a decoded payload read left to right. The first failure sticks
// and is reported by Err, so decoders can read all fields before checking.
type Fields struct {
	parts []string
	pos   int
	err   error
}

// Split starts reading payload; want is the exact number of fields expected.
func Split(payload string, want int) *Fields {
	f := &Fields{}
	if payload != "" {
		f.parts = strings.Split(payload, Sep)
	}
	if len(f.parts) != want {
		f.err = fmt.Errorf("payload %q: want %d fields, got %d", payload, want, len(f.parts))
	}
	return f
}

func (f *Fields) next() string {
	if f.err != nil || f.pos >= len(f.parts) {
		return ""
	}
	s := f.parts[f.pos]
	f.pos++
	return s
}

// Int64 reads the next field as a base 10 integer.
func (f *Fields) Int64() int64 {
	s := f.next()
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f.err = fmt.Errorf("field %d: %w", f.pos, err)
	}
	return v
}

// Int reads the next field as int.
func (f *Fields) Int() int {
	return int(f.Int64())
}

// Bool reads "1" or "0".
func (f *Fields) Bool() bool {
	s := f.next()
	if f.err != nil {
		return false
	}
	switch s {
	case "1":
		return true
	case "0":
		return false
	}
	f.err = fmt.Errorf("field %d: %q is not a flag", f.pos, s)
	return false
}

// String reads the next field verbatim.
func (f *Fields) String() string {
	return f.next()
}

// Err reports the first decoding failure.
func (f *Fields) Err() error {
	return f.err
}
