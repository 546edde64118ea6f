/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package logconfig defines the versioned log parsing configuration edited in the console.
package logconfig

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"regexp"
	"strings"
)

var timeOffsetRegexp = regexp.MustCompile(`^[+-](0\d|1[0-4]):[0-5]\d$`)

// Normalize clears the side of the config that does not apply to its log type.
func (c *LogConfig) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.LogType.UsesRegex() {
		c.JSONSchema = nil
	} else {
		c.Regex = ""
		c.RegexFieldSpecs = nil
		c.UserLogFormat = ""
	}
	if c.FilterConfig.Filters == nil {
		c.FilterConfig.Filters = []FilterRule{}
	}
}

// Validate returns the first local validation problem. The error is an *i18n.Error.
func (c *LogConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return i18n.NewError(i18n.NameRequired)
	}
	if !c.LogType.Valid() {
		return i18n.NewError(i18n.LogTypeRequired)
	}
	if c.LogType.UsesRegex() {
		if c.LogType.UsesLogFormat() && c.UserLogFormat == "" {
			return i18n.NewError(i18n.LogFormatRequired)
		}
		if c.UsesGrok() {
			if c.UserLogFormat != SyslogRFC3164 && c.UserLogFormat != SyslogRFC5424 {
				return i18n.NewError(i18n.LogFormatInvalid)
			}
		} else if c.Regex == "" {
			return i18n.NewError(i18n.RegexRequired)
		} else if _, err := regexp.Compile(c.Regex); err != nil {
			return i18n.NewError(i18n.RegexInvalid)
		}
	} else if c.JSONSchema == nil {
		return i18n.NewError(i18n.SchemaRequired)
	}
	if !ValidTimeOffset(c.TimeOffset) {
		return i18n.NewError(i18n.TimeOffsetInvalid)
	}
	if c.FilterConfig.Enabled {
		for _, f := range c.FilterConfig.Filters {
			if f.Key == "" {
				return i18n.NewError(i18n.FilterKeyRequired)
			}
			if _, err := regexp.Compile(f.Value); err != nil {
				return i18n.NewError(i18n.FilterValueInvalid)
			}
		}
	}
	return nil
}

// ValidTimeOffset accepts an empty offset or one of the form "+08:00".
func ValidTimeOffset(offset string) bool {
	return offset == "" || timeOffsetRegexp.MatchString(offset)
}

// NextVersion returns a copy of c whose version is one higher.
// The receiver is left untouched so that the previous version stays addressable.
func (c *LogConfig) NextVersion() *LogConfig {
	next := c.Clone()
	next.Version = c.Version + 1
	return next
}

// Clone returns a copy of c. The JSON schema is shared since schemas are never mutated in place.
func (c *LogConfig) Clone() *LogConfig {
	x := *c
	if c.RegexFieldSpecs != nil {
		x.RegexFieldSpecs = append([]FieldSpec(nil), c.RegexFieldSpecs...)
	}
	if c.FilterConfig.Filters != nil {
		x.FilterConfig.Filters = append([]FilterRule(nil), c.FilterConfig.Filters...)
	}
	return &x
}

// FieldNames lists the fields a parsed record of this config will have.
func (c *LogConfig) FieldNames() []string {
	if c.LogType.UsesRegex() {
		names := make([]string, 0, len(c.RegexFieldSpecs))
		for _, spec := range c.RegexFieldSpecs {
			names = append(names, spec.Key)
		}
		return names
	}
	if c.JSONSchema == nil {
		return nil
	}
	return c.JSONSchema.FieldPaths()
}
