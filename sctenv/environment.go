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

// Package sctenv implements Scout's lexically scoped environment (spec
// §4.E): a name→value store with a link to an enclosing scope and the
// write-through assignment semantics functions rely on for closures.
//
// Shape follows the scope-chain pattern common to tree-walking
// interpreters retrieved in the pack — the cur/store/outer layering in
// other_examples/9a2066d6_polidog-ReverHTTP__internal-parser-parser.go.go
// and the Object-tree evaluator environment in
// other_examples/7e394e31_ardnew-aenv__lang-eval.go.go — generalized to
// spec.md's specific get/set/add_outer/inherit_globals operation set.
package sctenv

import (
	"sync"

	"scout-lang.dev/scout/object"
)

// Environment is one scope: a mutex-guarded binding store plus a link to
// its outer (enclosing) scope.
//
// spec.md describes the outer link as "weak" to avoid a reference cycle
// between a function's captured environment and environments it
// encloses. Go's garbage collector traces reference cycles, so that
// specific leak risk does not apply here; the field is nonetheless a
// plain pointer rather than any kind of weak-reference wrapper — there is
// nothing for a GC'd runtime to protect against, so carrying Rust's
// weak-pointer machinery forward would be pure cargo-culting. This is
// recorded as a deliberate adaptation, not an oversight.
type Environment struct {
	mu      sync.Mutex
	store   map[string]object.Object
	globals map[string]bool
	outer   *Environment
}

// New creates an empty root environment.
func New() *Environment {
	return &Environment{store: make(map[string]object.Object)}
}

// NewChild creates an empty environment whose outer link is outer.
func NewChild(outer *Environment) *Environment {
	e := New()
	e.AddOuter(outer)
	return e
}

// AddOuter sets e's outer link (spec §4.E add_outer).
func (e *Environment) AddOuter(outer *Environment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outer = outer
}

// Get looks up name in e's local store, climbing the outer chain on a miss
// (spec §4.E get).
func (e *Environment) Get(name string) (object.Object, bool) {
	e.mu.Lock()
	v, ok := e.store[name]
	outer := e.outer
	e.mu.Unlock()
	if ok {
		return v, true
	}
	if outer != nil {
		return outer.Get(name)
	}
	return nil, false
}

// definingEnv returns the nearest environment in e's chain (starting at e)
// whose local store already binds name, or nil if none does.
func (e *Environment) definingEnv(name string) *Environment {
	e.mu.Lock()
	_, ok := e.store[name]
	outer := e.outer
	e.mu.Unlock()
	if ok {
		return e
	}
	if outer != nil {
		return outer.definingEnv(name)
	}
	return nil
}

// Set implements spec §4.E's assignment rule: if name is already bound
// somewhere in the outer chain, that binding is updated in place
// ("write-through to the defining scope", spec §9 open question (i));
// otherwise a new local binding is created in e.
func (e *Environment) Set(name string, v object.Object) {
	if def := e.definingEnv(name); def != nil {
		def.mu.Lock()
		def.store[name] = v
		def.mu.Unlock()
		return
	}
	e.Declare(name, v)
}

// Declare always binds name locally in e, regardless of any same-named
// binding further out. Used where the spec calls for a fresh binding
// rather than an assignment — function parameter binding, for-loop
// iteration variables, crawl's link/depth bindings.
func (e *Environment) Declare(name string, v object.Object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store == nil {
		e.store = make(map[string]object.Object)
	}
	e.store[name] = v
}

// MarkGlobal flags name as a global binding for later InheritGlobals
// propagation (spec §4.E "Identifier list (optional, for propagation
// across module loads)").
func (e *Environment) MarkGlobal(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.globals == nil {
		e.globals = make(map[string]bool)
	}
	e.globals[name] = true
}

// InheritGlobals copies every binding other has flagged global into e
// (spec §4.E inherit_globals). The evaluator's module loading does not
// call it: each loaded module starts from an empty environment.
func (e *Environment) InheritGlobals(other *Environment) {
	other.mu.Lock()
	names := make([]string, 0, len(other.globals))
	for name := range other.globals {
		names = append(names, name)
	}
	other.mu.Unlock()

	for _, name := range names {
		if v, ok := other.Get(name); ok {
			e.Declare(name, v)
			e.MarkGlobal(name)
		}
	}
}

// Bindings returns a snapshot of e's local store, satisfying
// object.Scope — used by object.Iterate to enumerate a Module's nested
// submodules.
func (e *Environment) Bindings() map[string]object.Object {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]object.Object, len(e.store))
	for k, v := range e.store {
		out[k] = v
	}
	return out
}

var _ object.Scope = (*Environment)(nil)
