/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package parser

import (
	"github.com/pkg/errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidLogFormat = errors.New("invalid log format")

	nginxDirectiveRegexp  = regexp.MustCompile(`^\s*log_format\s+\S+\s+`)
	nginxQuotedRegexp     = regexp.MustCompile(`'([^']*)'|"((?:[^"\\]|\\.)*)"`)
	nginxVariableRegexp   = regexp.MustCompile(`\$\{?([A-Za-z0-9_]+)\}?`)
	apacheDirectiveRegexp = regexp.MustCompile(`^\s*LogFormat\s+"((?:[^"\\]|\\.)*)"`)
	apacheTokenRegexp     = regexp.MustCompile(`%[<>!,0-9]*(?:\{([^}]*)\})?([a-zA-Z%])`)

	apacheDirectives = map[byte]string{
		'a': "client_addr",
		'A': "local_addr",
		'b': "response_size_bytes",
		'B': "response_bytes",
		'D': "time_taken_microseconds",
		'f': "file_name",
		'h': "remote_addr",
		'H': "request_protocol",
		'k': "keep_alive",
		'l': "remote_ident",
		'L': "error_log_id",
		'm': "request_method",
		'p': "port",
		'P': "process_id",
		'q': "request_query",
		'r': "request",
		'R': "handler",
		's': "status",
		't': "time_local",
		'T': "time_taken",
		'u': "remote_user",
		'U': "request_uri",
		'v': "server_name",
		'V': "canonical_server_name",
		'X': "connection_status",
		'I': "bytes_received",
		'O': "bytes_sent",
		'S': "bytes_transferred",
	}
)

type formatBuilder struct {
	b     strings.Builder
	names map[string]int
	// pending group name waiting for the literal that follows it
	pending string
}

func (f *formatBuilder) literal(s string) {
	if s == "" {
		return
	}
	f.flush(s[0])
	f.b.WriteString(regexp.QuoteMeta(s))
}

func (f *formatBuilder) group(name string) {
	if f.pending != "" {
		// two adjacent variables, the first one cannot be delimited
		f.flush(0)
	}
	f.pending = f.unique(name)
}

// flush writes the pending group, bounded by the first byte of the following literal.
func (f *formatBuilder) flush(next byte) {
	if f.pending == "" {
		return
	}
	name := f.pending
	f.pending = ""
	switch next {
	case 0:
		f.b.WriteString("(?P<" + name + ">.*)")
	case ' ':
		f.b.WriteString("(?P<" + name + `>\S*)`)
	default:
		f.b.WriteString("(?P<" + name + ">[^" + regexp.QuoteMeta(string(next)) + "]*)")
	}
}

func (f *formatBuilder) unique(name string) string {
	if f.names == nil {
		f.names = make(map[string]int)
	}
	f.names[name]++
	if n := f.names[name]; n > 1 {
		return name + "_" + strconv.Itoa(n)
	}
	return name
}

func (f *formatBuilder) String() string {
	f.flush(0)
	return "^" + f.b.String() + "$"
}

// NginxFormatToRegex converts an nginx log_format into a regex with one named group per variable.
// Both the bare format and the full "log_format name '...' '...';" directive are accepted.
func NginxFormatToRegex(format string) (string, error) {
	format = strings.TrimSpace(format)
	if loc := nginxDirectiveRegexp.FindStringIndex(format); loc != nil {
		var parts []string
		for _, m := range nginxQuotedRegexp.FindAllStringSubmatch(format[loc[1]:], -1) {
			if m[1] != "" {
				parts = append(parts, m[1])
			} else {
				parts = append(parts, strings.ReplaceAll(m[2], `\"`, `"`))
			}
		}
		format = strings.Join(parts, "")
	}
	if format == "" {
		return "", errors.Wrap(ErrInvalidLogFormat, "empty nginx log format")
	}
	matches := nginxVariableRegexp.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 {
		return "", errors.Wrap(ErrInvalidLogFormat, "no variable found in nginx log format")
	}
	fb := &formatBuilder{}
	last := 0
	for _, m := range matches {
		fb.literal(format[last:m[0]])
		fb.group(format[m[2]:m[3]])
		last = m[1]
	}
	fb.literal(format[last:])
	return fb.String(), nil
}

// ApacheFormatToRegex converts an apache LogFormat into a regex with one named group per directive.
func ApacheFormatToRegex(format string) (string, error) {
	format = strings.TrimSpace(format)
	if m := apacheDirectiveRegexp.FindStringSubmatch(format); m != nil {
		format = strings.ReplaceAll(m[1], `\"`, `"`)
	} else {
		format = strings.ReplaceAll(format, `\"`, `"`)
	}
	if format == "" {
		return "", errors.Wrap(ErrInvalidLogFormat, "empty apache log format")
	}
	matches := apacheTokenRegexp.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 {
		return "", errors.Wrap(ErrInvalidLogFormat, "no directive found in apache log format")
	}
	fb := &formatBuilder{}
	last := 0
	for _, m := range matches {
		fb.literal(format[last:m[0]])
		last = m[1]
		directive := format[m[4]]
		arg := ""
		if m[2] >= 0 {
			arg = format[m[2]:m[3]]
		}
		if directive == '%' {
			fb.literal("%")
			continue
		}
		name, err := apacheGroupName(directive, arg)
		if err != nil {
			return "", err
		}
		if directive == 't' && arg == "" {
			// %t renders as [10/Oct/2000:13:55:36 -0700]
			fb.literal("[")
			fb.group(name)
			fb.literal("]")
			continue
		}
		fb.group(name)
	}
	fb.literal(format[last:])
	return fb.String(), nil
}

func apacheGroupName(directive byte, arg string) (string, error) {
	if arg != "" {
		key := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(arg))
		switch directive {
		case 'i':
			return "http_" + key, nil
		case 'o':
			return "sent_http_" + key, nil
		case 'C':
			return "cookie_" + key, nil
		case 'e':
			return "env_" + key, nil
		case 'n':
			return "note_" + key, nil
		case 't':
			return "time_local", nil
		}
	}
	if name, ok := apacheDirectives[directive]; ok {
		return name, nil
	}
	return "", errors.Wrapf(ErrInvalidLogFormat, "unsupported apache directive %%%c", directive)
}
