/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package parser

import (
	"github.com/pkg/errors"
	"regexp"
)

type (
	regexpEvaluator struct {
		reg *regexp.Regexp
	}
	errEvaluator struct {
		err error
	}
)

// Evaluate compiles expr and matches it against line.
func Evaluate(expr, line string) Result {
	return NewRegexp(expr).Evaluate(line)
}

// NewRegexp returns an evaluator for expr. A compile error is reported by every Evaluate call.
func NewRegexp(expr string) Evaluator {
	reg, err := Compile(expr)
	if err != nil {
		return &errEvaluator{err: err}
	}
	return &regexpEvaluator{reg: reg}
}

// Compile compiles expr, wrapping failures with ErrInvalidRegex.
func Compile(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, errors.Wrap(ErrInvalidRegex, "empty expression")
	}
	reg, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidRegex, err.Error())
	}
	return reg, nil
}

func (r *regexpEvaluator) Evaluate(line string) Result {
	if line == "" {
		return failed(ErrNotMatched)
	}
	ss := r.reg.FindStringSubmatch(line)
	if ss == nil {
		return failed(ErrNotMatched)
	}
	names := r.reg.SubexpNames()
	fields := make([]Field, 0, len(ss)-1)
	for i := 1; i < len(ss); i++ {
		if names[i] == "" {
			continue
		}
		fields = append(fields, Field{Key: names[i], Value: ss[i]})
	}
	return Result{Fields: fields}
}

func (e *errEvaluator) Evaluate(string) Result {
	return failed(e.err)
}
