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

package results

import (
	"encoding/json"
	"testing"

	"scout-lang.dev/scout/object"
)

func record(pairs ...interface{}) *object.Map {
	m := object.NewMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(object.Object))
	}
	return m
}

func TestAppendCreatesSingletonThenAppends(t *testing.T) {
	a := New()
	a.Append("https://a.test", record("title", object.Str("one")))
	a.Append("https://a.test", record("title", object.Str("two")))

	recs := a.Records("https://a.test")
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	v, _ := recs[0].Get("title")
	if v != object.Str("one") {
		t.Fatalf("recs[0][title] = %v, want one", v)
	}
}

func TestURLsPreserveFirstWriteOrder(t *testing.T) {
	a := New()
	a.Append("https://b.test", record("x", object.Number(1)))
	a.Append("https://a.test", record("x", object.Number(2)))
	a.Append("https://b.test", record("x", object.Number(3)))

	urls := a.URLs()
	want := []string{"https://b.test", "https://a.test"}
	if len(urls) != len(want) || urls[0] != want[0] || urls[1] != want[1] {
		t.Fatalf("URLs() = %v, want %v", urls, want)
	}
}

func TestJSONKeyOrderIsPreservedAtEveryLevel(t *testing.T) {
	a := New()
	nested := object.NewMap()
	nested.Set("z", object.Number(1))
	nested.Set("a", object.Number(2))
	a.Append("https://a.test", record("title", object.Str("hi"), "meta", nested))

	raw, err := a.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}

	want := `{"https://a.test":[{"title":"hi","meta":{"z":1,"a":2}}]}`
	if string(raw) != want {
		t.Fatalf("JSON() = %s, want %s", raw, want)
	}

	// Also confirm it is valid JSON a standard decoder can read back,
	// even though key order is not observable through generic decoding.
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
}

func TestJSONEmptyAggregator(t *testing.T) {
	a := New()
	raw, err := a.JSON()
	if err != nil {
		t.Fatalf("JSON error: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("JSON() = %s, want {}", raw)
	}
}

func TestRecordsOfUnknownURLIsNil(t *testing.T) {
	a := New()
	if recs := a.Records("https://never.test"); recs != nil {
		t.Fatalf("Records(unknown) = %v, want nil", recs)
	}
}
