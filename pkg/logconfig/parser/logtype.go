/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package parser

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/pkg/errors"
)

var ErrNoEvaluator = errors.New("log type is not parsed by a regular expression")

// GenerateRegex derives the regex of a config from its user log format.
// It returns an empty string for log types whose regex is written by the user
// and for syslog formats evaluated with grok.
func GenerateRegex(c *logconfig.LogConfig) (string, error) {
	switch c.LogType {
	case logconfig.LogTypeNginx:
		return NginxFormatToRegex(c.UserLogFormat)
	case logconfig.LogTypeApache:
		return ApacheFormatToRegex(c.UserLogFormat)
	}
	return "", nil
}

// ForConfig picks the evaluator matching the log type of c.
func ForConfig(c *logconfig.LogConfig) (Evaluator, error) {
	switch c.LogType {
	case logconfig.LogTypeJSON:
		return nil, ErrNoEvaluator
	case logconfig.LogTypeSyslog:
		if c.UserLogFormat == logconfig.SyslogCustom {
			return NewRegexp(c.Regex), nil
		}
		return NewSyslog(c.UserLogFormat)
	case logconfig.LogTypeNginx, logconfig.LogTypeApache:
		if c.Regex != "" {
			return NewRegexp(c.Regex), nil
		}
		reg, err := GenerateRegex(c)
		if err != nil {
			return nil, err
		}
		return NewRegexp(reg), nil
	case logconfig.LogTypeSingleLineText, logconfig.LogTypeMultiLineText:
		return NewRegexp(c.Regex), nil
	}
	return nil, errors.Errorf("unknown log type %q", c.LogType)
}
