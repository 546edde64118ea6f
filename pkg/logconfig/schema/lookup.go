/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package schema

import (
	"github.com/oliveagle/jsonpath"
	"github.com/pkg/errors"
	"strings"
)

var ErrFieldNotFound = errors.New("field not found")

// Lookup returns the value of field name in a decoded record.
// Names starting with '$' are JSON paths, dotted names walk nested objects,
// anything else is a plain key.
func Lookup(record interface{}, name string) (interface{}, error) {
	if strings.HasPrefix(name, "$") {
		v, err := jsonpath.JsonPathLookup(record, name)
		if err != nil {
			return nil, errors.Wrapf(ErrFieldNotFound, "%s: %v", name, err)
		}
		return v, nil
	}
	m, ok := record.(map[string]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrFieldNotFound, "%s: record is not an object", name)
	}
	if v, ok := m[name]; ok {
		return v, nil
	}
	if !strings.Contains(name, ".") {
		return nil, errors.Wrap(ErrFieldNotFound, name)
	}
	var cur interface{} = m
	for _, part := range strings.Split(name, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, errors.Wrap(ErrFieldNotFound, name)
		}
		if cur, ok = obj[part]; !ok {
			return nil, errors.Wrap(ErrFieldNotFound, name)
		}
	}
	return cur, nil
}
