/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package formstate holds the draft of a log config being edited and the pure reducer updating it.
// Asynchronous work such as remote time format checks happens outside the reducer and is fed
// back as actions.
package formstate

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/parser"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"golang.org/x/text/language"
)

const (
	FieldName       Field = "name"
	FieldLogType    Field = "logType"
	FieldLogFormat  Field = "userLogFormat"
	FieldRegex      Field = "regex"
	FieldSample     Field = "userSampleLog"
	FieldSchema     Field = "jsonSchema"
	FieldTimeKey    Field = "timeKey"
	FieldTimeFormat Field = "timeFormat"
	FieldTimeOffset Field = "timeOffset"
	FieldFilters    Field = "filters"
)

type (
	Field string

	// TimeCheck is the time format check state of one field.
	TimeCheck struct {
		Status     timeformat.Status `json:"status"`
		Validating bool              `json:"validating"`
		// Value and Format are what the last finished check was run with.
		Value  string `json:"value,omitempty"`
		Format string `json:"format,omitempty"`
	}

	// State is the whole form. It is treated as a value: the reducer never mutates its input.
	State struct {
		Config logconfig.LogConfig `json:"config"`
		// Tree mirrors Config.JSONSchema for JSON log types.
		Tree *schema.Node `json:"-"`
		// Extracted holds the fields of the last successful regex evaluation.
		Extracted []parser.Field `json:"extracted,omitempty"`
		// Parsed is true once the current sample was parsed with the current expression.
		Parsed     bool                 `json:"parsed"`
		Errors     map[Field]i18n.Key   `json:"errors,omitempty"`
		Success    map[Field]i18n.Key   `json:"success,omitempty"`
		TimeChecks map[string]TimeCheck `json:"timeChecks,omitempty"`
		// RetainOnFailure keeps the previously extracted fields displayed when a parse fails.
		RetainOnFailure bool `json:"retainOnFailure"`
		Editing         bool `json:"editing"`
		CanSave         bool `json:"canSave"`
	}
)

// New returns an empty form.
func New() State {
	s := State{}
	s.Config.FilterConfig.Filters = []logconfig.FilterRule{}
	return derive(s)
}

// Messages translates the error and success keys of every field.
func (s State) Messages(tag language.Tag) map[Field]string {
	m := make(map[Field]string, len(s.Errors)+len(s.Success))
	for f, k := range s.Success {
		m[f] = i18n.T(tag, k)
	}
	for f, k := range s.Errors {
		m[f] = i18n.T(tag, k)
	}
	return m
}

// TimeSample returns the sample value and the declared format of field key.
func (s State) TimeSample(key string) (value, format string, ok bool) {
	if key == "" {
		return "", "", false
	}
	if s.Config.LogType == logconfig.LogTypeJSON {
		if s.Tree == nil {
			return "", "", false
		}
		path, found := s.Tree.TimeKeyPath()
		if !found {
			return "", "", false
		}
		if name, _ := s.Tree.DottedKey(path); name != key {
			return "", "", false
		}
		n, _ := s.Tree.Get(path)
		return n.Value, n.Format, true
	}
	for _, f := range s.Extracted {
		if f.Key == key {
			value = f.Value
			ok = true
			break
		}
	}
	for _, spec := range s.Config.RegexFieldSpecs {
		if spec.Key == key {
			format = spec.Format
		}
	}
	return value, format, ok
}

// SaveBlocker returns the first reason the form cannot be saved.
func (s State) SaveBlocker() i18n.Key {
	if err := s.Config.Validate(); err != nil {
		if e, ok := err.(*i18n.Error); ok {
			return e.Key
		}
		return i18n.GeneralError
	}
	if s.Config.LogType.UsesRegex() && !s.Parsed {
		if s.Config.UserSampleLog == "" {
			return i18n.SampleRequired
		}
		return i18n.RegexNotMatched
	}
	if key := s.Config.TimeKey; key != "" {
		_, format, _ := s.TimeSample(key)
		if format == "" {
			return i18n.TimeFormatRequired
		}
		tc := s.TimeCheckOf(key)
		if tc.Validating || tc.Status == timeformat.Unchecked {
			return i18n.TimeFormatNotVerified
		}
		if tc.Status != timeformat.Valid {
			return i18n.TimeFormatInvalid
		}
	}
	return ""
}

func derive(s State) State {
	s.CanSave = s.SaveBlocker() == ""
	return s
}
