/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package timeformat checks that a sample time value matches a strftime style format.
package timeformat

import (
	"github.com/pkg/errors"
	"strings"
)

var (
	ErrUnsupportedDirective = errors.New("unsupported time format directive")
	ErrAmbiguousLiteral     = errors.New("literal text of the time format would be read as a layout element")

	// words golang reads as layout elements, digits are checked separately
	layoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

	// strftime directive -> golang layout
	directives = map[byte]string{
		'Y': "2006",
		'y': "06",
		'm': "01",
		'd': "02",
		'e': "_2",
		'H': "15",
		'I': "03",
		'M': "04",
		'S': "05",
		'p': "PM",
		'b': "Jan",
		'h': "Jan",
		'B': "January",
		'a': "Mon",
		'A': "Monday",
		'j': "002",
		'z': "-0700",
		'Z': "MST",
		'f': "000000",
		'L': "000",
		'T': "15:04:05",
		'D': "01/02/06",
		'F': "2006-01-02",
		'R': "15:04",
		'%': "%",
	}

	// golang layout element -> strftime, longest first
	reverse = []struct {
		layout string
		format string
	}{
		{"January", "%B"},
		{"Monday", "%A"},
		{"Z07:00", "%z"},
		{"-07:00", "%z"},
		{"-0700", "%z"},
		{"2006", "%Y"},
		{".000000", ".%f"},
		{",000000", ",%f"},
		{".000", ".%L"},
		{",000", ",%L"},
		{"Jan", "%b"},
		{"Mon", "%a"},
		{"MST", "%Z"},
		{"002", "%j"},
		{"01", "%m"},
		{"02", "%d"},
		{"_2", "%e"},
		{"15", "%H"},
		{"03", "%I"},
		{"04", "%M"},
		{"05", "%S"},
		{"06", "%y"},
		{"PM", "%p"},
	}
)

// ToLayout converts a strftime format such as "%Y-%m-%d %H:%M:%S" into a golang layout.
// %f and %L are only recognised by golang right after a '.' or ','. %f becomes six digits
// here, LocalChecker also accepts one to five.
// Golang layouts cannot escape literal text, so a literal containing a digit or one of
// Jan, Mon, MST, PM, pm is rejected with ErrAmbiguousLiteral.
// The epoch directive %s cannot be expressed as a layout and is reported through epoch.
func ToLayout(format string) (layout string, epoch bool, err error) {
	if format == "%s" {
		return "", true, nil
	}
	var b strings.Builder
	literal := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if err := checkLiteral(format[literal:i]); err != nil {
			return "", false, err
		}
		if i+1 >= len(format) {
			return "", false, errors.Wrap(ErrUnsupportedDirective, "trailing %")
		}
		i++
		literal = i + 1
		d := format[i]
		l, ok := directives[d]
		if !ok {
			return "", false, errors.Wrapf(ErrUnsupportedDirective, "%%%c", d)
		}
		b.WriteString(l)
	}
	if err := checkLiteral(format[literal:]); err != nil {
		return "", false, err
	}
	return b.String(), false, nil
}

func checkLiteral(s string) error {
	if strings.ContainsAny(s, "0123456789") {
		return errors.Wrapf(ErrAmbiguousLiteral, "%q", s)
	}
	for _, w := range layoutWords {
		if strings.Contains(s, w) {
			return errors.Wrapf(ErrAmbiguousLiteral, "%q", s)
		}
	}
	return nil
}

// FromLayout converts a golang layout back into a strftime format.
func FromLayout(layout string) string {
	var b strings.Builder
	for i := 0; i < len(layout); {
		matched := false
		for _, r := range reverse {
			if strings.HasPrefix(layout[i:], r.layout) {
				b.WriteString(r.format)
				i += len(r.layout)
				matched = true
				break
			}
		}
		if !matched {
			if layout[i] == '%' {
				b.WriteString("%%")
			} else {
				b.WriteByte(layout[i])
			}
			i++
		}
	}
	return b.String()
}
