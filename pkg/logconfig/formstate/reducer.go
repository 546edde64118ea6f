/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package formstate

import (
	"encoding/json"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/i18n"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/filter"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/parser"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
	"regexp"
	"strings"
)

// DefaultFieldType is the type given to newly extracted regex fields.
const DefaultFieldType = "text"

// Reduce returns the state following a. It never mutates s and has no side effects.
// Actions that do not apply, such as an edit addressing a missing node, return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetName:
		s.Config.Name = a.Name
		if strings.TrimSpace(a.Name) == "" {
			s = s.withError(FieldName, i18n.NameRequired)
		} else {
			s = s.withError(FieldName, "")
		}
	case SetDescription:
		s.Config.Description = a.Description
	case SetLogType:
		if a.LogType == s.Config.LogType {
			return s
		}
		s = switchLogType(s, a.LogType)
	case SetLogFormat:
		s = setLogFormat(s, a.Format)
	case SetRegex:
		if !s.Config.LogType.UsesRegex() {
			return s
		}
		s.Config.Regex = a.Regex
		s = s.invalidateParse()
		if a.Regex == "" {
			s = s.withError(FieldRegex, i18n.RegexRequired)
		} else if _, err := parser.Compile(a.Regex); err != nil {
			s = s.withError(FieldRegex, i18n.RegexInvalid)
		} else {
			s = s.withError(FieldRegex, "")
		}
	case SetSample:
		s.Config.UserSampleLog = a.Sample
		s = s.invalidateParse()
	case ParseSample:
		s = parseSample(s)
	case SetRetainOnFailure:
		s.RetainOnFailure = a.Retain
	case SetFieldSpec:
		specs, ok := replaceSpec(s.Config.RegexFieldSpecs, a.Spec)
		if !ok {
			return s
		}
		s.Config.RegexFieldSpecs = specs
	case SetTimeKey:
		if !s.Config.LogType.UsesRegex() {
			return s
		}
		if a.Key != "" && !hasSpec(s.Config.RegexFieldSpecs, a.Key) {
			return s
		}
		s.Config.TimeKey = a.Key
	case SetTimeOffset:
		s.Config.TimeOffset = a.Offset
		if logconfig.ValidTimeOffset(a.Offset) {
			s = s.withError(FieldTimeOffset, "")
		} else {
			s = s.withError(FieldTimeOffset, i18n.TimeOffsetInvalid)
		}
	case ToggleNode:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.Toggle(a.Path) })
	case SetNodeKey:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.SetKey(a.Path, a.Key) })
	case SetNodeType:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.SetType(a.Path, a.Type) })
	case SetNodeFormat:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.SetFormat(a.Path, a.Format) })
	case SetNodeTimeKey:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.SetTimeKey(a.Path, a.On) })
	case AddNodeChild:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.AddChild(a.Path) })
	case RemoveNode:
		return editTree(s, func(n *schema.Node) (*schema.Node, error) { return n.RemoveChild(a.Path) })
	case SetFilterEnabled:
		s.Config.FilterConfig.Enabled = a.Enabled
		s = s.withError(FieldFilters, filterError(s.Config.FilterConfig))
	case AddFilter:
		s.Config.FilterConfig.Filters = filter.Add(s.Config.FilterConfig.Filters, a.Rule)
		s = s.withError(FieldFilters, filterError(s.Config.FilterConfig))
	case RemoveFilter:
		rules, err := filter.Remove(s.Config.FilterConfig.Filters, a.Index)
		if err != nil {
			return s
		}
		s.Config.FilterConfig.Filters = rules
		s = s.withError(FieldFilters, filterError(s.Config.FilterConfig))
	case UpdateFilter:
		rules, err := filter.Update(s.Config.FilterConfig.Filters, a.Index, a.Rule)
		if err != nil {
			return s
		}
		s.Config.FilterConfig.Filters = rules
		s = s.withError(FieldFilters, filterError(s.Config.FilterConfig))
	case TimeFormatCheckStarted:
		tc := s.TimeChecks[a.Key]
		tc.Validating = true
		s = s.withTimeCheck(a.Key, tc)
	case TimeFormatCheckFinished:
		s = finishTimeCheck(s, a)
	case Reset:
		n := New()
		n.RetainOnFailure = s.RetainOnFailure
		return n
	case LoadForEdit:
		return loadForEdit(s, a.Config)
	default:
		return s
	}
	return derive(s)
}

// TimeCheckOf returns the check state of field key. A check run with a value or format
// other than the current ones reads as Unchecked.
func (s State) TimeCheckOf(key string) TimeCheck {
	tc := s.TimeChecks[key]
	value, format, _ := s.TimeSample(key)
	if tc.Status != timeformat.Unchecked && (tc.Value != value || tc.Format != format) {
		tc.Status = timeformat.Unchecked
	}
	return tc
}

func (s State) withError(f Field, key i18n.Key) State {
	s.Errors = withKey(s.Errors, f, key)
	if key != "" {
		s.Success = withKey(s.Success, f, "")
	}
	return s
}

func (s State) withSuccess(f Field, key i18n.Key) State {
	s.Success = withKey(s.Success, f, key)
	if key != "" {
		s.Errors = withKey(s.Errors, f, "")
	}
	return s
}

func (s State) withTimeCheck(key string, tc TimeCheck) State {
	m := make(map[string]TimeCheck, len(s.TimeChecks)+1)
	for k, v := range s.TimeChecks {
		m[k] = v
	}
	m[key] = tc
	s.TimeChecks = m
	return s
}

// invalidateParse marks the current parse result as stale after an input changed.
func (s State) invalidateParse() State {
	s.Parsed = false
	s.Errors = withKey(s.Errors, FieldSample, "")
	s.Success = withKey(s.Success, FieldSample, "")
	return s
}

// withKey copies m with f set to key, or removed when key is empty.
func withKey(m map[Field]i18n.Key, f Field, key i18n.Key) map[Field]i18n.Key {
	if _, ok := m[f]; !ok && key == "" {
		return m
	}
	cp := make(map[Field]i18n.Key, len(m)+1)
	for k, v := range m {
		cp[k] = v
	}
	if key == "" {
		delete(cp, f)
	} else {
		cp[f] = key
	}
	return cp
}

func switchLogType(s State, t logconfig.LogType) State {
	prev := s.Config
	n := New()
	n.RetainOnFailure = s.RetainOnFailure
	n.Editing = s.Editing
	n.Config.ID = prev.ID
	n.Config.Name = prev.Name
	n.Config.Version = prev.Version
	n.Config.Description = prev.Description
	n.Config.CreatedAt = prev.CreatedAt
	n.Config.TimeOffset = prev.TimeOffset
	n.Config.LogType = t
	if t == logconfig.LogTypeSyslog {
		n.Config.UserLogFormat = logconfig.SyslogRFC3164
	}
	if name, ok := s.Errors[FieldName]; ok {
		n.Errors = map[Field]i18n.Key{FieldName: name}
	}
	return n
}

func setLogFormat(s State, format string) State {
	s.Config.UserLogFormat = format
	s = s.invalidateParse()
	switch s.Config.LogType {
	case logconfig.LogTypeNginx, logconfig.LogTypeApache:
		reg, err := parser.GenerateRegex(&s.Config)
		if err != nil {
			s.Config.Regex = ""
			return s.withError(FieldLogFormat, i18n.LogFormatInvalid)
		}
		s.Config.Regex = reg
	case logconfig.LogTypeSyslog:
		if s.Config.UsesGrok() {
			s.Config.Regex = ""
			if _, err := parser.NewSyslog(format); err != nil {
				return s.withError(FieldLogFormat, i18n.LogFormatInvalid)
			}
		}
	}
	return s.withError(FieldLogFormat, "")
}

func parseSample(s State) State {
	s = s.invalidateParse()
	if s.Config.UserSampleLog == "" {
		return s.failParse(i18n.SampleRequired)
	}
	if s.Config.LogType == logconfig.LogTypeJSON {
		return parseJSONSample(s)
	}
	ev, err := parser.ForConfig(&s.Config)
	if err != nil {
		return s.failParse(i18n.RegexInvalid)
	}
	res := ev.Evaluate(s.Config.UserSampleLog)
	if !res.OK() {
		return s.failParse(res.MessageKey())
	}
	s.Extracted = res.Fields
	s.Config.RegexFieldSpecs = mergeSpecs(s.Config.RegexFieldSpecs, res.Keys())
	if !hasSpec(s.Config.RegexFieldSpecs, s.Config.TimeKey) {
		s.Config.TimeKey = ""
	}
	s.Parsed = true
	return s.withSuccess(FieldSample, i18n.ParseSuccess)
}

func parseJSONSample(s State) State {
	inferred, err := schema.Infer(s.Config.UserSampleLog)
	if err != nil {
		return s.failParse(i18n.JSONInvalid)
	}
	var sample interface{}
	_ = json.Unmarshal([]byte(s.Config.UserSampleLog), &sample)
	tree := schema.FromSchema(inferred, sample)
	tree = carryTimeKey(s.Tree, s.Config.TimeKey, tree)
	s.Tree = tree
	s = syncTree(s)
	s.Parsed = true
	return s.withSuccess(FieldSample, i18n.ParseSuccess)
}

// carryTimeKey marks the previous time key on a freshly inferred tree when it still exists.
func carryTimeKey(prev *schema.Node, timeKey string, tree *schema.Node) *schema.Node {
	if prev == nil || timeKey == "" {
		return tree
	}
	oldPath, ok := prev.FindPath(timeKey)
	if !ok {
		return tree
	}
	old, _ := prev.Get(oldPath)
	path, ok := tree.FindPath(timeKey)
	if !ok {
		return tree
	}
	if n, err := tree.SetTimeKey(path, true); err == nil {
		tree = n
	}
	if n, err := tree.SetFormat(path, old.Format); err == nil {
		tree = n
	}
	return tree
}

func (s State) failParse(key i18n.Key) State {
	if !s.RetainOnFailure {
		s.Extracted = nil
		if s.Config.LogType == logconfig.LogTypeJSON {
			s.Tree = nil
			s.Config.JSONSchema = nil
		} else {
			s.Config.RegexFieldSpecs = nil
		}
		s.Config.TimeKey = ""
	}
	return s.withError(FieldSample, key)
}

func editTree(s State, fn func(*schema.Node) (*schema.Node, error)) State {
	if s.Tree == nil {
		return s
	}
	tree, err := fn(s.Tree)
	if err != nil {
		return s
	}
	s.Tree = tree
	return derive(syncTree(s))
}

// syncTree copies the schema and time key of the tree into the config.
func syncTree(s State) State {
	s.Config.JSONSchema = s.Tree.ToSchema()
	s.Config.TimeKey = ""
	if path, ok := s.Tree.TimeKeyPath(); ok {
		s.Config.TimeKey, _ = s.Tree.DottedKey(path)
	}
	return s
}

func finishTimeCheck(s State, a TimeFormatCheckFinished) State {
	tc := s.TimeChecks[a.Key]
	tc.Validating = false
	value, format, _ := s.TimeSample(a.Key)
	if value == a.Value && format == a.Format {
		tc.Status = a.Status
		tc.Value = a.Value
		tc.Format = a.Format
	}
	s = s.withTimeCheck(a.Key, tc)
	switch s.TimeCheckOf(a.Key).Status {
	case timeformat.Valid:
		s = s.withSuccess(FieldTimeFormat, i18n.TimeFormatValid)
	case timeformat.Invalid:
		s = s.withError(FieldTimeFormat, i18n.TimeFormatInvalid)
	}
	return s
}

func loadForEdit(s State, c logconfig.LogConfig) State {
	n := New()
	n.RetainOnFailure = s.RetainOnFailure
	n.Editing = true
	n.Config = *c.Clone()
	n.Config.Normalize()
	if n.Config.LogType == logconfig.LogTypeJSON {
		if n.Config.JSONSchema != nil {
			var sample interface{}
			_ = json.Unmarshal([]byte(n.Config.UserSampleLog), &sample)
			n.Tree = schema.FromSchema(n.Config.JSONSchema, sample)
			n.Parsed = true
		}
	} else if ev, err := parser.ForConfig(&n.Config); err == nil {
		res := ev.Evaluate(n.Config.UserSampleLog)
		if res.OK() {
			n.Extracted = res.Fields
			n.Parsed = true
		}
	}
	// a saved config passed its time format check when it was saved
	if value, format, ok := n.TimeSample(n.Config.TimeKey); ok && format != "" {
		n = n.withTimeCheck(n.Config.TimeKey, TimeCheck{Status: timeformat.Valid, Value: value, Format: format})
	}
	return derive(n)
}

func mergeSpecs(prev []logconfig.FieldSpec, keys []string) []logconfig.FieldSpec {
	specs := make([]logconfig.FieldSpec, 0, len(keys))
	for _, k := range keys {
		spec := logconfig.FieldSpec{Key: k, Type: DefaultFieldType}
		for _, p := range prev {
			if p.Key == k {
				spec = p
				break
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

func replaceSpec(specs []logconfig.FieldSpec, spec logconfig.FieldSpec) ([]logconfig.FieldSpec, bool) {
	for i, p := range specs {
		if p.Key == spec.Key {
			cp := append([]logconfig.FieldSpec(nil), specs...)
			cp[i] = spec
			return cp, true
		}
	}
	return specs, false
}

func hasSpec(specs []logconfig.FieldSpec, key string) bool {
	for _, p := range specs {
		if p.Key == key {
			return true
		}
	}
	return false
}

func filterError(cfg logconfig.FilterConfig) i18n.Key {
	if !cfg.Enabled {
		return ""
	}
	for _, r := range cfg.Filters {
		if r.Key == "" {
			return i18n.FilterKeyRequired
		}
		if _, err := regexp.Compile(r.Value); err != nil {
			return i18n.FilterValueInvalid
		}
	}
	return ""
}
