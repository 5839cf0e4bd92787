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

// Package results implements Scout's shared scrape-results aggregator
// (spec §4.G Scrape, §6 "Results output"): a process-wide, URL-keyed
// collection of scrape records with program-wide lifetime, written by
// every `scrape` statement and read at program end.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"scout-lang.dev/scout/object"
)

// Aggregator is the shared results store. It is created once at program
// start and passed by reference into every evaluator frame, mirroring the
// env/container sharing the spec describes as "protected by an async
// mutex" (§5) — implemented here as a plain sync.Mutex, synchronously,
// per the same Go-has-no-colored-functions deviation documented in
// package eval's doc comment.
type Aggregator struct {
	mu    sync.Mutex
	order []string
	byURL map[string]*object.List
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{byURL: make(map[string]*object.List)}
}

// Append records one scrape result under url: a fresh URL starts a
// singleton list, a seen URL gets the record appended (spec §4.G).
func (a *Aggregator) Append(url string, record *object.Map) {
	a.mu.Lock()
	defer a.mu.Unlock()

	list, ok := a.byURL[url]
	if !ok {
		list = object.NewList(nil)
		a.byURL[url] = list
		a.order = append(a.order, url)
	}
	list.Push(record)
}

// URLs returns the URLs written so far, in first-write order.
func (a *Aggregator) URLs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Records returns a snapshot of the scrape records recorded under url.
func (a *Aggregator) Records(url string) []*object.Map {
	a.mu.Lock()
	defer a.mu.Unlock()
	list, ok := a.byURL[url]
	if !ok {
		return nil
	}
	elems := list.Snapshot()
	out := make([]*object.Map, 0, len(elems))
	for _, e := range elems {
		m, ok := e.(*object.Map)
		if !ok {
			// Append is the only writer and it only ever pushes *object.Map
			// values; anything else getting in here means the aggregator's
			// own invariant was violated elsewhere in the process.
			panic(fmt.Sprintf("results: non-map scrape record under %q: %T", url, e))
		}
		out = append(out, m)
	}
	return out
}

// JSON renders the aggregator as spec §6 describes: a JSON object keyed
// by URL (in first-write order) whose values are arrays of scrape
// records, with every record's own key order preserved.
//
// encoding/json.Marshal over a plain map[string]interface{} cannot honor
// this — Go's JSON encoder always sorts map keys alphabetically — so this
// walks the aggregator and every object.Map by hand instead of routing
// through object.ToJSON's lossy map[string]interface{} conversion.
func (a *Aggregator) JSON() ([]byte, error) {
	urls := a.URLs()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, url := range urls {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(url)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, record := range a.Records(url) {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := encodeOrdered(&buf, record); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeOrdered writes o's JSON form to buf, preserving object.Map
// insertion order at every nesting level.
func encodeOrdered(buf *bytes.Buffer, o object.Object) error {
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
			if err := encodeOrdered(buf, entry.Value); err != nil {
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
			if err := encodeOrdered(buf, elem); err != nil {
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
