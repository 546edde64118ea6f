/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package parser

import (
	"github.com/pkg/errors"
	"github.com/vjeantet/grok"
	"regexp"
	"sort"
)

const (
	// rfc3164: <PRI>Mmm dd hh:mm:ss HOSTNAME TAG[PID]: MSG
	syslogRFC3164 = `^(?:<%{NONNEGINT:pri}>)?%{SYSLOGTIMESTAMP:time} %{SYSLOGHOST:hostname} %{DATA:program}(?:\[%{POSINT:pid}\])?: %{GREEDYDATA:message}$`
	// rfc5424: <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
	syslogRFC5424 = `^<%{NONNEGINT:pri}>%{NONNEGINT:version} %{TIMESTAMP_ISO8601:timestamp} %{SYSLOGHOST:hostname} %{NOTSPACE:app_name} %{NOTSPACE:proc_id} %{NOTSPACE:msg_id} (?:-|%{SYSLOG5424SDBLOCK:structured_data}) ?%{GREEDYDATA:message}$`
)

var grokGroupRegexp = regexp.MustCompile(`%\{\w+:(\w+)(?::\w+)?\}`)

type (
	grokEvaluator struct {
		g          *grok.Grok
		expression string
		// order of the semantic names as written in the expression
		order []string
	}
)

func newGrok() (*grok.Grok, error) {
	g, err := grok.NewWithConfig(&grok.Config{NamedCapturesOnly: true})
	if err != nil {
		return nil, err
	}
	if err := g.AddPattern("SYSLOG5424SDBLOCK", `(?:\[[^\]]*\])+`); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGrok returns an evaluator for a grok expression such as "%{IP:client} %{WORD:method}".
func NewGrok(expression string) Evaluator {
	if expression == "" {
		return &errEvaluator{err: errors.Wrap(ErrInvalidRegex, "empty grok expression")}
	}
	g, err := newGrok()
	if err != nil {
		return &errEvaluator{err: errors.Wrap(ErrInvalidRegex, err.Error())}
	}
	var order []string
	for _, m := range grokGroupRegexp.FindAllStringSubmatch(expression, -1) {
		order = append(order, m[1])
	}
	return &grokEvaluator{g: g, expression: expression, order: order}
}

// NewSyslog returns the evaluator of a syslog format, RFC3164 or RFC5424.
func NewSyslog(format string) (Evaluator, error) {
	switch format {
	case "RFC3164", "":
		return NewGrok(syslogRFC3164), nil
	case "RFC5424":
		return NewGrok(syslogRFC5424), nil
	}
	return nil, errors.Errorf("unsupported syslog format %q", format)
}

func (g *grokEvaluator) Evaluate(line string) Result {
	if line == "" {
		return failed(ErrNotMatched)
	}
	m, err := g.g.Parse(g.expression, line)
	if err != nil {
		return failed(errors.Wrap(ErrInvalidRegex, err.Error()))
	}
	if len(m) == 0 {
		return failed(ErrNotMatched)
	}
	fields := make([]Field, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, name := range g.order {
		if v, ok := m[name]; ok {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				fields = append(fields, Field{Key: name, Value: v})
			}
		}
	}
	// names coming from nested patterns, in a stable order
	var rest []string
	for name := range m {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		fields = append(fields, Field{Key: name, Value: m[name]})
	}
	return Result{Fields: fields}
}
