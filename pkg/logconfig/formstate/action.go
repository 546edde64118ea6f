/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package formstate

import (
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/schema"
	"github.com/aws-solutions/centralized-logging-with-opensearch-sub007/pkg/logconfig/timeformat"
)

type (
	// Action is a change request handled by Reduce.
	Action interface {
		actionName() string
	}

	SetName        struct{ Name string }
	SetDescription struct{ Description string }
	// SetLogType switches the log type and drops everything derived from the previous one.
	SetLogType struct{ LogType logconfig.LogType }
	// SetLogFormat updates the user log format and regenerates the regex for nginx and apache.
	SetLogFormat struct{ Format string }
	SetRegex     struct{ Regex string }
	SetSample    struct{ Sample string }
	// ParseSample evaluates the sample against the regex, or infers the schema for JSON.
	ParseSample        struct{}
	SetRetainOnFailure struct{ Retain bool }

	// SetFieldSpec annotates one extracted regex field.
	SetFieldSpec struct{ Spec logconfig.FieldSpec }
	// SetTimeKey selects the time field of a regex config. An empty key clears it.
	SetTimeKey    struct{ Key string }
	SetTimeOffset struct{ Offset string }

	ToggleNode struct{ Path schema.Path }
	SetNodeKey struct {
		Path schema.Path
		Key  string
	}
	SetNodeType struct {
		Path schema.Path
		Type schema.Type
	}
	SetNodeFormat struct {
		Path   schema.Path
		Format string
	}
	SetNodeTimeKey struct {
		Path schema.Path
		On   bool
	}
	AddNodeChild struct{ Path schema.Path }
	RemoveNode   struct{ Path schema.Path }

	SetFilterEnabled struct{ Enabled bool }
	AddFilter        struct{ Rule logconfig.FilterRule }
	RemoveFilter     struct{ Index int }
	UpdateFilter     struct {
		Index int
		Rule  logconfig.FilterRule
	}

	// TimeFormatCheckStarted marks field Key as validating. Its previous status is kept.
	TimeFormatCheckStarted struct{ Key string }
	// TimeFormatCheckFinished records the outcome of a check run with Value and Format.
	// Outcomes for a value or format that changed in the meantime are discarded.
	TimeFormatCheckFinished struct {
		Key    string
		Value  string
		Format string
		Status timeformat.Status
	}

	Reset       struct{}
	LoadForEdit struct{ Config logconfig.LogConfig }
)

func (SetName) actionName() string                 { return "SetName" }
func (SetDescription) actionName() string          { return "SetDescription" }
func (SetLogType) actionName() string              { return "SetLogType" }
func (SetLogFormat) actionName() string            { return "SetLogFormat" }
func (SetRegex) actionName() string                { return "SetRegex" }
func (SetSample) actionName() string               { return "SetSample" }
func (ParseSample) actionName() string             { return "ParseSample" }
func (SetRetainOnFailure) actionName() string      { return "SetRetainOnFailure" }
func (SetFieldSpec) actionName() string            { return "SetFieldSpec" }
func (SetTimeKey) actionName() string              { return "SetTimeKey" }
func (SetTimeOffset) actionName() string           { return "SetTimeOffset" }
func (ToggleNode) actionName() string              { return "ToggleNode" }
func (SetNodeKey) actionName() string              { return "SetNodeKey" }
func (SetNodeType) actionName() string             { return "SetNodeType" }
func (SetNodeFormat) actionName() string           { return "SetNodeFormat" }
func (SetNodeTimeKey) actionName() string          { return "SetNodeTimeKey" }
func (AddNodeChild) actionName() string            { return "AddNodeChild" }
func (RemoveNode) actionName() string              { return "RemoveNode" }
func (SetFilterEnabled) actionName() string        { return "SetFilterEnabled" }
func (AddFilter) actionName() string               { return "AddFilter" }
func (RemoveFilter) actionName() string            { return "RemoveFilter" }
func (UpdateFilter) actionName() string            { return "UpdateFilter" }
func (TimeFormatCheckStarted) actionName() string  { return "TimeFormatCheckStarted" }
func (TimeFormatCheckFinished) actionName() string { return "TimeFormatCheckFinished" }
func (Reset) actionName() string                   { return "Reset" }
func (LoadForEdit) actionName() string             { return "LoadForEdit" }
