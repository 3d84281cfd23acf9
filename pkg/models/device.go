/*
 * Copyright 2025 DMH Technology Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package models defines the shared data types for the sync pipeline.
package models

import (
	"fmt"
	"strings"
)

// Device is one raw device record as reported by the monitoring platform.
// Records arrive as arbitrarily nested JSON; accessors tolerate missing or
// mistyped keys and report absence as the empty value instead of failing.
type Device map[string]interface{}

// ID returns the opaque endpoint identifier, or "" if the record has none.
func (d Device) ID() string {
	return d.StringAt("endpointId")
}

// Name returns the device's friendly name (the computer name).
func (d Device) Name() string {
	return d.StringAt("friendlyName")
}

// EndpointType returns the upstream type tag ("Desktop", "Server", ...).
func (d Device) EndpointType() string {
	return d.StringAt("endpointType")
}

// At returns the value at a dot-separated path, or nil if any segment is
// missing or not a nested object.
func (d Device) At(path string) interface{} {
	var value interface{} = map[string]interface{}(d)

	for _, part := range strings.Split(path, ".") {
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil
		}

		value = m[part]
	}

	return value
}

// StringAt returns the string value at a dot-separated path. Non-string
// scalars are formatted; missing values and nested objects yield "".
func (d Device) StringAt(path string) string {
	value := d.At(path)
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case map[string]interface{}, []interface{}:
		return ""
	case float64:
		// JSON numbers decode as float64; render integers without a fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}

		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ListAt returns the list of objects at a dot-separated path. Entries that
// are not objects are skipped; a missing or scalar value yields nil.
func (d Device) ListAt(path string) []map[string]interface{} {
	raw, ok := d.At(path).([]interface{})
	if !ok {
		return nil
	}

	list := make([]map[string]interface{}, 0, len(raw))

	for _, entry := range raw {
		if m, ok := entry.(map[string]interface{}); ok {
			list = append(list, m)
		}
	}

	return list
}
