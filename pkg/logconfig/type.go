/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package logconfig

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"time"
)

const (
	LogTypeJSON           LogType = "JSON"
	LogTypeApache         LogType = "Apache"
	LogTypeNginx          LogType = "Nginx"
	LogTypeSyslog         LogType = "Syslog"
	LogTypeSingleLineText LogType = "SingleLineText"
	LogTypeMultiLineText  LogType = "MultiLineText"

	ConditionInclude Condition = "Include"
	ConditionExclude Condition = "Exclude"

	SyslogRFC3164 = "RFC3164"
	SyslogRFC5424 = "RFC5424"
	SyslogCustom  = "CUSTOM"
)

var AllLogTypes = []LogType{
	LogTypeJSON,
	LogTypeApache,
	LogTypeNginx,
	LogTypeSyslog,
	LogTypeSingleLineText,
	LogTypeMultiLineText,
}

type (
	LogType   string
	Condition string

	// LogConfig describes how to parse one class of log lines into structured fields.
	// Regex based types use Regex and RegexFieldSpecs, JSON uses JSONSchema.
	LogConfig struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Version     int     `json:"version"`
		LogType     LogType `json:"logType"`
		Description string  `json:"description,omitempty"`
		// nginx log_format / apache LogFormat directive, or the syslog format name
		UserLogFormat string `json:"userLogFormat,omitempty"`
		UserSampleLog string `json:"userSampleLog,omitempty"`

		Regex           string      `json:"regex,omitempty"`
		RegexFieldSpecs []FieldSpec `json:"regexFieldSpecs,omitempty"`

		JSONSchema *schema.JSONSchema `json:"jsonSchema,omitempty"`

		TimeKey      string       `json:"timeKey,omitempty"`
		TimeOffset   string       `json:"timeOffset,omitempty"`
		TimeKeyRegex string       `json:"timeKeyRegex,omitempty"`
		FilterConfig FilterConfig `json:"filterConfigMap"`
		CreatedAt    time.Time    `json:"createdAt"`
	}

	// FieldSpec annotates one regex capture group with a type and an optional time format.
	FieldSpec struct {
		Key    string `json:"key"`
		Type   string `json:"type"`
		Format string `json:"format,omitempty"`
	}

	FilterConfig struct {
		Enabled bool         `json:"enabled"`
		Filters []FilterRule `json:"filters"`
	}

	// FilterRule keeps or drops parsed records whose Key field matches the Value regex.
	FilterRule struct {
		Key       string    `json:"key"`
		Condition Condition `json:"condition"`
		Value     string    `json:"value"`
	}
)

// UsesRegex reports whether fields of this log type come from a regex rather than a JSON schema.
func (t LogType) UsesRegex() bool {
	return t != LogTypeJSON
}

// UsesLogFormat reports whether the regex is generated from a server log format directive.
func (t LogType) UsesLogFormat() bool {
	return t == LogTypeApache || t == LogTypeNginx || t == LogTypeSyslog
}

// UsesGrok reports whether the config is evaluated with a built-in syslog grok expression
// instead of Regex.
func (c *LogConfig) UsesGrok() bool {
	return c.LogType == LogTypeSyslog && c.UserLogFormat != SyslogCustom
}

func (t LogType) Valid() bool {
	for _, x := range AllLogTypes {
		if x == t {
			return true
		}
	}
	return false
}

func (c Condition) Valid() bool {
	return c == ConditionInclude || c == ConditionExclude
}
