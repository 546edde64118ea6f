/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package schema

import (
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestInferFlatObject(t *testing.T) {
	s, err := Infer(`{"host":"92.13.1.23","level":"WARN"}`)
	require.NoError(t, err)
	assert.Equal(t, &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*JSONSchema{
			"host":  {Type: TypeString},
			"level": {Type: TypeString},
		},
	}, s)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","properties":{"host":{"type":"string"},"level":{"type":"string"}}}`, string(b))
}

func TestInferNested(t *testing.T) {
	s, err := Infer(`{"a":1.5,"b":true,"c":null,"d":{"e":[{"f":"x"},{"g":1}]},"h":[]}`)
	require.NoError(t, err)

	assert.Equal(t, TypeNumber, s.Properties["a"].Type)
	assert.Equal(t, TypeBoolean, s.Properties["b"].Type)
	assert.Equal(t, TypeString, s.Properties["c"].Type)

	e := s.Properties["d"].Properties["e"]
	assert.Equal(t, TypeArray, e.Type)
	// first element wins
	assert.Equal(t, TypeObject, e.Items.Type)
	assert.Contains(t, e.Items.Properties, "f")
	assert.NotContains(t, e.Items.Properties, "g")

	h := s.Properties["h"]
	assert.Equal(t, TypeArray, h.Type)
	assert.Equal(t, &JSONSchema{}, h.Items)

	assert.Equal(t, []string{"a", "b", "c", "d.e", "h"}, s.FieldPaths())
}

func TestInferInvalid(t *testing.T) {
	_, err := Infer(`{"a":`)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidJSON))

	_, err = Infer(``)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

func TestInferEmptyObject(t *testing.T) {
	s, err := Infer(`{}`)
	require.NoError(t, err)
	assert.Equal(t, &JSONSchema{Type: TypeObject}, s)
}

func TestTimeKeyPath(t *testing.T) {
	s := &JSONSchema{
		Type: TypeObject,
		Properties: map[string]*JSONSchema{
			"meta": {Type: TypeObject, Properties: map[string]*JSONSchema{
				"ts": {Type: TypeDate, Format: "%Y-%m-%d", TimeKey: true},
			}},
			"msg": {Type: TypeString},
		},
	}
	p, ok := s.TimeKeyPath()
	assert.True(t, ok)
	assert.Equal(t, "meta.ts", p)

	_, ok = (&JSONSchema{Type: TypeObject}).TimeKeyPath()
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	var record interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"a":{"b":"x"},"c.d":1,"list":[{"v":2}]}`), &record))

	v, err := Lookup(record, "a.b")
	assert.NoError(t, err)
	assert.Equal(t, "x", v)

	v, err = Lookup(record, "c.d")
	assert.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = Lookup(record, "$.a.b")
	assert.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = Lookup(record, "missing")
	assert.True(t, errors.Is(err, ErrFieldNotFound))

	_, err = Lookup(record, "a.b.c")
	assert.True(t, errors.Is(err, ErrFieldNotFound))

	_, err = Lookup("not an object", "a")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
}
