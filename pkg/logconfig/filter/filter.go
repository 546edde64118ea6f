/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package filter edits and applies the include/exclude rules of a log config.
package filter

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"regexp"
)

var (
	ErrIndexOutOfRange = errors.New("filter index out of range")
	ErrInvalidRule     = errors.New("invalid filter rule")
)

type (
	// Matcher decides whether a parsed record is kept.
	Matcher interface {
		Match(record map[string]interface{}) bool
	}
	xRule struct {
		key     string
		include bool
		regexp  *regexp.Regexp
	}
	xAnd        []*xRule
	xAlwaysTrue struct{}
)

// Add returns a new list with rule appended. Rules are kept verbatim.
func Add(rules []logconfig.FilterRule, rule logconfig.FilterRule) []logconfig.FilterRule {
	ret := make([]logconfig.FilterRule, len(rules), len(rules)+1)
	copy(ret, rules)
	return append(ret, rule)
}

// Remove returns a new list without the rule at index i.
func Remove(rules []logconfig.FilterRule, i int) ([]logconfig.FilterRule, error) {
	if i < 0 || i >= len(rules) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", i, len(rules))
	}
	ret := make([]logconfig.FilterRule, 0, len(rules)-1)
	ret = append(ret, rules[:i]...)
	return append(ret, rules[i+1:]...), nil
}

// Update returns a new list with the rule at index i replaced.
func Update(rules []logconfig.FilterRule, i int, rule logconfig.FilterRule) ([]logconfig.FilterRule, error) {
	if i < 0 || i >= len(rules) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", i, len(rules))
	}
	ret := make([]logconfig.FilterRule, len(rules))
	copy(ret, rules)
	ret[i] = rule
	return ret, nil
}

// Compile builds a matcher that keeps a record when every Include rule matches
// and no Exclude rule matches. A record missing the rule key is treated as an empty value.
func Compile(cfg logconfig.FilterConfig) (Matcher, error) {
	if !cfg.Enabled || len(cfg.Filters) == 0 {
		return xAlwaysTrue{}, nil
	}
	and := make(xAnd, 0, len(cfg.Filters))
	for i, f := range cfg.Filters {
		if f.Key == "" {
			return nil, errors.Wrapf(ErrInvalidRule, "filter %d: empty key", i)
		}
		if !f.Condition.Valid() {
			return nil, errors.Wrapf(ErrInvalidRule, "filter %d: condition %q", i, f.Condition)
		}
		reg, err := regexp.Compile(f.Value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidRule, "filter %d: %v", i, err)
		}
		and = append(and, &xRule{
			key:     f.Key,
			include: f.Condition == logconfig.ConditionInclude,
			regexp:  reg,
		})
	}
	return and, nil
}

func (x xAnd) Match(record map[string]interface{}) bool {
	for _, r := range x {
		if !r.Match(record) {
			return false
		}
	}
	return true
}

func (r *xRule) Match(record map[string]interface{}) bool {
	s := ""
	if v, err := schema.Lookup(record, r.key); err == nil {
		s = cast.ToString(v)
	}
	return r.regexp.MatchString(s) == r.include
}

func (xAlwaysTrue) Match(map[string]interface{}) bool {
	return true
}
