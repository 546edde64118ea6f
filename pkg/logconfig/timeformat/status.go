/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package timeformat

const (
	Unchecked Status = iota
	Valid
	Invalid
)

type (
	// Status is the result of the last time format check of a field.
	Status int
)

func (s Status) String() string {
	switch s {
	case Valid:
		return "VALID"
	case Invalid:
		return "INVALID"
	default:
		return "UNCHECKED"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
