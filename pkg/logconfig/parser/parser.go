/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package parser extracts named fields from a sample log line.
// Only the first match of an expression is used.
package parser

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/pkg/errors"
)

var (
	ErrInvalidRegex = errors.New("invalid regular expression")
	ErrNotMatched   = errors.New("log line not matched")
)

type (
	// Field is one extracted capture group.
	Field struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	// Result is the outcome of evaluating an expression against one line.
	// Fields keeps the order in which the groups appear in the expression.
	Result struct {
		Fields []Field `json:"fields"`
		Err    error   `json:"-"`
	}

	// Evaluator matches a single line.
	Evaluator interface {
		Evaluate(line string) Result
	}
)

// OK reports whether the line matched.
func (r Result) OK() bool {
	return r.Err == nil
}

// Map returns the extracted fields keyed by group name.
func (r Result) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Key] = f.Value
	}
	return m
}

// Keys returns the group names in expression order.
func (r Result) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// MessageKey maps the error to the message shown next to the sample log.
func (r Result) MessageKey() i18n.Key {
	switch {
	case r.Err == nil:
		return ""
	case errors.Is(r.Err, ErrInvalidRegex):
		return i18n.RegexInvalid
	case errors.Is(r.Err, ErrNotMatched):
		return i18n.RegexNotMatched
	default:
		return i18n.GeneralError
	}
}

func failed(err error) Result {
	return Result{Err: err}
}
