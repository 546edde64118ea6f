/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package timeformat

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	secondsTimestampDemo = "1668517987"
	// values may be wrapped, e.g. "[2021-01-02 03:04:05]"
	maxOffset = 4
)

type (
	// Detection tells where a known layout was found in a value.
	Detection struct {
		Offset int
		Layout string
		// Format is Layout as a strftime format, "%s" for epoch seconds.
		Format string
	}
	sortByLayoutLength []string
)

var basicLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
}

var knownLayouts = []string{
	time.UnixDate,
	time.ANSIC,
	time.RFC1123Z,
	time.RFC1123,
	"2006 Jan/02 15:04:05",
	"02/Jan/2006:15:04:05 -0700",
	"02/Jan/2006 15:04:05",
	"Jan 02 2006 15:04:05",
	"01/02/2006 15:04:05",
	"Jan _2 15:04:05",
	"2006-01-02",
}

func init() {
	for _, layout := range basicLayouts {
		// .000 matches .000 or ,111
		// Z07:00 matches Z or +07:00
		knownLayouts = append(knownLayouts,
			layout+".000000Z07:00",
			layout+".000 Z07:00",
			layout+".000Z07:00",
			layout+".000000",
			layout+".000",
			layout+" Z07:00",
			layout+"Z07:00",
			layout,
		)
	}
	sort.Stable(sort.Reverse(sortByLayoutLength(knownLayouts)))
}

func (s sortByLayoutLength) Len() int           { return len(s) }
func (s sortByLayoutLength) Less(i, j int) bool { return len(s[i]) < len(s[j]) }
func (s sortByLayoutLength) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Detect guesses the time format of value. Longer layouts are preferred.
func Detect(value string) (*Detection, bool) {
	value = strings.TrimSpace(value)
	if len(value) == len(secondsTimestampDemo) {
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			return &Detection{Format: "%s"}, true
		}
	}
	for i := 0; i <= maxOffset; i++ {
		for _, layout := range knownLayouts {
			if i+len(layout) > len(value) {
				continue
			}
			if _, err := time.ParseInLocation(layout, value[i:i+len(layout)], time.UTC); err == nil {
				return &Detection{
					Offset: i,
					Layout: layout,
					Format: FromLayout(layout),
				}, true
			}
		}
	}
	return nil, false
}
