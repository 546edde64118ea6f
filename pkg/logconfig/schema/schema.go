/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package schema infers the field type tree of JSON logs and keeps an editable copy of it.
package schema

import (
	"encoding/json"
	"github.com/pkg/errors"
	"sort"
)

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeDate    Type = "date"
	// TypeUnknown is the type of an array items template inferred from an empty array
	// and of children appended in the editor.
	TypeUnknown Type = ""
)

var (
	ErrInvalidJSON = errors.New("invalid JSON")
)

type (
	Type string

	// JSONSchema is the persisted form of a schema tree.
	JSONSchema struct {
		Type       Type                   `json:"type,omitempty"`
		Format     string                 `json:"format,omitempty"`
		TimeKey    bool                   `json:"timeKey,omitempty"`
		Properties map[string]*JSONSchema `json:"properties,omitempty"`
		Items      *JSONSchema            `json:"items,omitempty"`
	}
)

// IsContainer reports whether nodes of this type may hold children.
func (t Type) IsContainer() bool {
	return t == TypeObject || t == TypeArray
}

func (t Type) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeObject, TypeArray, TypeDate, TypeUnknown:
		return true
	}
	return false
}

// Infer parses raw as JSON and derives its schema.
func Infer(raw string) (*JSONSchema, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}
	return InferValue(v), nil
}

// InferValue derives the schema of an already decoded JSON value.
// The first element of an array defines the type of its items.
func InferValue(v interface{}) *JSONSchema {
	switch x := v.(type) {
	case map[string]interface{}:
		s := &JSONSchema{Type: TypeObject}
		if len(x) == 0 {
			return s
		}
		s.Properties = make(map[string]*JSONSchema, len(x))
		for _, key := range sortedKeys(x) {
			s.Properties[key] = InferValue(x[key])
		}
		return s
	case []interface{}:
		s := &JSONSchema{Type: TypeArray, Items: &JSONSchema{}}
		if len(x) > 0 {
			s.Items = InferValue(x[0])
		}
		return s
	case float64, json.Number:
		return &JSONSchema{Type: TypeNumber}
	case bool:
		return &JSONSchema{Type: TypeBoolean}
	default:
		// strings and null
		return &JSONSchema{Type: TypeString}
	}
}

// FieldPaths returns the dotted paths of all leaf fields in lexicographic order.
func (s *JSONSchema) FieldPaths() []string {
	var paths []string
	s.walkLeaves("", func(path string, _ *JSONSchema) {
		paths = append(paths, path)
	})
	sort.Strings(paths)
	return paths
}

// TimeKeyPath returns the dotted path of the field marked as the record timestamp.
func (s *JSONSchema) TimeKeyPath() (string, bool) {
	found := ""
	s.walkLeaves("", func(path string, leaf *JSONSchema) {
		if leaf.TimeKey && found == "" {
			found = path
		}
	})
	return found, found != ""
}

func (s *JSONSchema) walkLeaves(prefix string, fn func(path string, leaf *JSONSchema)) {
	if s == nil {
		return
	}
	switch s.Type {
	case TypeObject:
		for _, key := range sortedKeys(s.Properties) {
			p := key
			if prefix != "" {
				p = prefix + "." + key
			}
			s.Properties[key].walkLeaves(p, fn)
		}
	case TypeArray:
		// array items are stored as a whole, the array itself is the field
		fn(prefix, s)
	default:
		if prefix != "" {
			fn(prefix, s)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
