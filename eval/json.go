// Copyright 2024 The Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eval

import (
	"bytes"
	"encoding/json"

	"scout-lang.dev/scout/object"
)

// encodeOrderedValue renders o as JSON with object.Map insertion order
// preserved at every nesting level, the same rule results.Aggregator.JSON
// applies to the top-level results document (see DESIGN.md's JSON-ordering
// entry) — used here by the toJson and httpRequest builtins.
func encodeOrderedValue(buf *bytes.Buffer, o object.Object) error {
	switch v := o.(type) {
	case *object.Map:
		buf.WriteByte('{')
		for i, entry := range v.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(entry.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := encodeOrderedValue(buf, entry.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case *object.List:
		buf.WriteByte('[')
		for i, elem := range v.Snapshot() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeOrderedValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		plain, err := object.ToJSON(o)
		if err != nil {
			return err
		}
		enc, err := json.Marshal(plain)
		if err != nil {
			return err
		}
		buf.Write(enc)
		return nil
	}
}

// decodeJSONValue converts a value produced by decoding arbitrary external
// JSON (nil, bool, json.Number, string, []interface{}, map[string]interface{})
// into the equivalent object.Object, for httpRequest's mode:"json" response
// parsing. Object field order is not preserved here: encoding/json decodes
// objects into a plain Go map, which has no ordering guarantee, unlike the
// Map literals Scout itself builds and walks in insertion order above — the
// standard library has no ordered-decode counterpart.
func decodeJSONValue(raw interface{}) object.Object {
	switch v := raw.(type) {
	case nil:
		return object.Null{}
	case bool:
		return object.Boolean(v)
	case json.Number:
		f, _ := v.Float64()
		return object.Number(f)
	case string:
		return object.Str(v)
	case []interface{}:
		elems := make([]object.Object, len(v))
		for i, e := range v {
			elems[i] = decodeJSONValue(e)
		}
		return object.NewList(elems)
	case map[string]interface{}:
		m := object.NewMap()
		for k, val := range v {
			m.Set(k, decodeJSONValue(val))
		}
		return m
	default:
		return object.Null{}
	}
}
