/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package timeformat

import (
	"context"
	"strconv"
	"strings"
	"time"
)

type (
	// Checker tells whether value can be parsed with format.
	// The API client implements it remotely, LocalChecker in process.
	Checker interface {
		CheckTimeFormat(ctx context.Context, value, format string) (bool, error)
	}

	// LocalChecker parses the value itself.
	LocalChecker struct {
		// Location is used for formats without zone. Defaults to UTC.
		Location *time.Location
	}
)

// CheckTimeFormat returns an error only for formats it cannot understand.
func (l *LocalChecker) CheckTimeFormat(_ context.Context, value, format string) (bool, error) {
	_, err := l.Parse(value, format)
	if err == nil {
		return true, nil
	}
	if _, _, lerr := ToLayout(format); lerr != nil {
		return false, lerr
	}
	return false, nil
}

// Parse parses value with a strftime format.
func (l *LocalChecker) Parse(value, format string) (time.Time, error) {
	layout, epoch, err := ToLayout(format)
	if err != nil {
		return time.Time{}, err
	}
	value = strings.TrimSpace(value)
	if epoch {
		sec, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(sec, 0), nil
	}
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	var (
		t        time.Time
		firstErr error
	)
	for _, candidate := range layoutCandidates(layout) {
		if t, err = time.ParseInLocation(candidate, value, loc); err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return t, firstErr
}

// layoutCandidates expands a layout into the variants a strftime parser would accept:
// %f with one to six digits, %z as "+0800", "+08:00" or "Z".
func layoutCandidates(layout string) []string {
	ret := []string{layout}
	for _, sep := range []string{".", ","} {
		frac := sep + "000000"
		if !strings.Contains(layout, frac) {
			continue
		}
		for n := 5; n >= 1; n-- {
			ret = append(ret, strings.Replace(layout, frac, sep+strings.Repeat("0", n), 1))
		}
		break
	}
	if !strings.Contains(layout, "-0700") {
		return ret
	}
	for _, l := range ret {
		for _, zone := range []string{"Z07:00", "Z0700"} {
			ret = append(ret, strings.Replace(l, "-0700", zone, 1))
		}
	}
	return ret
}
