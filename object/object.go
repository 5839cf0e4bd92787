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

// Package object implements Scout's runtime value model (spec §3 "Runtime
// Object", §4.D). Object is a closed sum type with no inheritance: each
// variant is its own Go type, and dispatch happens through the usual type
// switch rather than virtual methods, following the tagged-variant pattern
// spec.md §9 calls out directly ("a single sum type for Object avoids any
// polymorphism via inheritance").
//
// Shape is grounded on the runtime-value tree-walker pattern in
// other_examples/7e394e31_ardnew-aenv__lang-eval.go.go (an Object-interface
// closed variant set with a Kind tag); List and Map carry their own mutex
// because spec §4.E/§5 requires them to be shared, interior-mutable, and
// lock-protected.
package object

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
)

// Kind tags an Object's variant for fast dispatch (type() builtin, error
// messages) without a full type switch.
type Kind int

const (
	NullKind Kind = iota
	StrKind
	NumberKind
	BooleanKind
	ListKind
	MapKind
	NodeKind
	FnKind
	ReturnKind
	ModuleKind
)

var kindNames = map[Kind]string{
	NullKind:    "Null",
	StrKind:     "Str",
	NumberKind:  "Number",
	BooleanKind: "Boolean",
	ListKind:    "List",
	MapKind:     "Map",
	NodeKind:    "Node",
	FnKind:      "Fn",
	ReturnKind:  "Return",
	ModuleKind:  "Module",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Object is implemented by every Scout runtime value.
type Object interface {
	Kind() Kind
}

// Scope is the subset of sctenv.Environment's behavior the object package
// needs to implement Module iteration (§4.D) without importing sctenv —
// sctenv already imports object to store values, so the reverse import
// would be a cycle. sctenv.Environment implements this interface; eval and
// module pass environments into object.Module by way of it.
type Scope interface {
	Get(name string) (Object, bool)
	Set(name string, v Object)
	Bindings() map[string]Object
}

// ----------------------------------------------------------------------------
// Scalar variants

// Null is Scout's null literal value.
type Null struct{}

func (Null) Kind() Kind { return NullKind }

// Str is a Scout string value.
type Str string

func (Str) Kind() Kind { return StrKind }

// Number is Scout's sole numeric type, always a float64 (spec §3
// Object::Number).
type Number float64

func (Number) Kind() Kind { return NumberKind }

// Boolean is a Scout boolean value.
type Boolean bool

func (Boolean) Kind() Kind { return BooleanKind }

// ----------------------------------------------------------------------------
// Containers

// List is a shared, mutable, ordered sequence of Objects (spec §3
// Object::List). All access goes through its mutex (spec §5).
type List struct {
	mu    sync.Mutex
	elems []Object
}

// NewList wraps elems as a List; ownership of the slice transfers to the
// List.
func NewList(elems []Object) *List {
	return &List{elems: elems}
}

func (*List) Kind() Kind { return ListKind }

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.elems)
}

// Get returns the element at i, or ok=false if out of bounds.
func (l *List) Get(i int) (Object, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elems) {
		return nil, false
	}
	return l.elems[i], true
}

// Set replaces the element at i in place, reporting false if out of bounds
// (spec §4.G Assign: "replaces the element if in-bounds else
// IndexOutOfBounds").
func (l *List) Set(i int, v Object) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.elems) {
		return false
	}
	l.elems[i] = v
	return true
}

// Push appends v in place.
func (l *List) Push(v Object) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.elems = append(l.elems, v)
}

// Snapshot copies the current contents out from under the lock, matching
// spec §5's "list reads snapshot the current contents" for-loop rule.
func (l *List) Snapshot() []Object {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Object, len(l.elems))
	copy(out, l.elems)
	return out
}

// Entry is one key/value pair of a Map, in insertion order.
type Entry struct {
	Key   string
	Value Object
}

// Map is a shared, mutable mapping from Identifier to Object (spec §3
// Object::Map). Insertion order is tracked even though HashLiteral itself
// is insertion-order-irrelevant (§3), because §6 requires the results
// aggregator to serialize "with stable map-insertion order where possible".
type Map struct {
	mu      sync.Mutex
	entries map[string]Object
	order   []string
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string]Object)}
}

func (*Map) Kind() Kind { return MapKind }

func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Get looks up key, reporting ok=false if absent.
func (m *Map) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

// Set inserts or overwrites key. New keys are appended to the insertion
// order; overwriting an existing key keeps its original position.
func (m *Map) Set(key string, v Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string]Object)
	}
	if _, exists := m.entries[key]; !exists {
		m.order = append(m.order, key)
	}
	m.entries[key] = v
}

// Entries returns the Map's contents in insertion order.
func (m *Map) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, Entry{Key: k, Value: m.entries[k]})
	}
	return out
}

// ----------------------------------------------------------------------------
// Node, Fn, Return, Module

// ElementHandle is implemented by a browser driver's element handle type.
// object does not import package browser (which in turn needs object
// values for Call/builtin arguments) to avoid a cycle; Node only needs
// enough of an Element to compare handles by id (spec §4.D "nodes compare
// by element id").
type ElementHandle interface {
	ID() string
}

// Node is an opaque handle to a DOM element owned by the browser client
// (spec §3 Object::Node). Invariant 1: a Node remains valid only as long as
// the underlying page/element is not invalidated by navigation; Scout does
// not detect this itself, so a stale Node surfaces as a driver error on
// next use.
type Node struct {
	Handle ElementHandle
}

func (Node) Kind() Kind { return NodeKind }

// Fn is a user-defined function value: its name, parameter list, and
// body (spec §3 Object::Fn). Scout has no closure-capture environment —
// a call builds its scope from the env in effect at the call site, not
// the env in effect at `def` time — so Fn carries no Env field.
type Fn struct {
	Name   string
	Params []ast.FnParam
	Body   *ast.Block
}

func (*Fn) Kind() Kind { return FnKind }

// Return is a transient sentinel tag wrapping the value of a `return`
// statement; it is never a value a Scout program can otherwise observe
// (spec §3 Object::Return, invariant 3).
type Return struct {
	Value Object
}

func (Return) Kind() Kind { return ReturnKind }

// Module is a reified environment produced by evaluating an imported file
// or directory (spec §3 Object::Module).
type Module struct {
	Env Scope
}

func (Module) Kind() Kind { return ModuleKind }

// ----------------------------------------------------------------------------
// Cross-variant operations (spec §4.D)

// Equal implements spec §4.D's structural, type-equal comparison. Fn and
// Return have no defined equality in the spec (a Return is never
// user-visible, and Fn identity is not discussed) and always compare
// unequal, matching "unlike types compare unequal" extended to "undefined
// equality compares unequal" rather than panicking.
func Equal(a, b Object) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Str:
		return av == b.(Str)
	case Number:
		return av == b.(Number)
	case Boolean:
		return av == b.(Boolean)
	case *List:
		bv := b.(*List)
		as, bs := av.Snapshot(), bv.Snapshot()
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv := b.(*Map)
		ae, be := av.Entries(), bv.Entries()
		if len(ae) != len(be) {
			return false
		}
		bm := make(map[string]Object, len(be))
		for _, e := range be {
			bm[e.Key] = e.Value
		}
		for _, e := range ae {
			other, ok := bm[e.Key]
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case Node:
		bv := b.(Node)
		if av.Handle == nil || bv.Handle == nil {
			return av.Handle == bv.Handle
		}
		return av.Handle.ID() == bv.Handle.ID()
	default:
		return false
	}
}

// Truthy implements spec §4.D's truthiness table.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case Null:
		return false
	case Str:
		return len(v) > 0
	case Boolean:
		return bool(v)
	case Number:
		return float64(v) > 0.0
	case *List:
		return v.Len() > 0
	case *Map:
		return v.Len() > 0
	default:
		// Node, Fn, Module → true (spec §4.D); Return is never observed
		// from a truthiness-test position.
		return true
	}
}

// Iterate implements spec §4.D's into_iterable: List yields its elements,
// Str yields single-character strings, Module yields [name, submodule]
// pairs for each nested Module binding. Other kinds report ok=false
// (NonIterable).
func Iterate(o Object) (elems []Object, ok bool) {
	switch v := o.(type) {
	case *List:
		return v.Snapshot(), true
	case Str:
		s := string(v)
		out := make([]Object, 0, len(s))
		for _, r := range s {
			out = append(out, Str(string(r)))
		}
		return out, true
	case Module:
		bindings := v.Env.Bindings()
		names := make([]string, 0, len(bindings))
		for name, val := range bindings {
			if _, isModule := val.(Module); isModule {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		out := make([]Object, 0, len(names))
		for _, name := range names {
			out = append(out, NewList([]Object{Str(name), bindings[name]}))
		}
		return out, true
	default:
		return nil, false
	}
}

// ToJSON implements spec §4.D's JSON serialization. Fn, Module, and Return
// are not serializable and report an InvalidJSONValue error.
func ToJSON(o Object) (interface{}, error) {
	switch v := o.(type) {
	case Null:
		return nil, nil
	case Str:
		return string(v), nil
	case Number:
		return float64(v), nil
	case Boolean:
		return bool(v), nil
	case *List:
		elems := v.Snapshot()
		out := make([]interface{}, len(elems))
		for i, e := range elems {
			j, err := ToJSON(e)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case *Map:
		entries := v.Entries()
		out := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			j, err := ToJSON(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = j
		}
		return out, nil
	case Node:
		return "Node", nil
	default:
		return nil, serrors.Newf(serrors.InvalidJSONValue, token.NoPos, "value of kind %s is not serializable to JSON", o.Kind())
	}
}

// Display renders o in the user-facing form used by the print builtin
// (spec §4.D "Display form").
func Display(o Object) string {
	switch v := o.(type) {
	case Null:
		return "null"
	case Str:
		return string(v)
	case Number:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Boolean:
		if v {
			return "true"
		}
		return "false"
	case *List:
		elems := v.Snapshot()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = Display(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Map:
		entries := v.Entries()
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = e.Key + ": " + Display(e.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Node:
		return "Node"
	case *Fn:
		return "Fn"
	case Module:
		return "Module"
	case Return:
		return Display(v.Value)
	default:
		return fmt.Sprintf("%v", o)
	}
}

// TypeName returns the value's type tag as used by the type() builtin.
func TypeName(o Object) string {
	return o.Kind().String()
}
