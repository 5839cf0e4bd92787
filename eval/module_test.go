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
	"context"
	"os"
	"path/filepath"
	"testing"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

// TestModuleUseAndDoubleColonAccessCallsExportedFn exercises spec §4.F's
// `use`/`::` path: a sibling lib.sct is resolved relative to the
// resolver's WorkDir, its top-level def is evaluated into a module scope,
// and lib::greet("World") runs that def with the module's own environment
// substituted in, not a plain name lookup.
func TestModuleUseAndDoubleColonAccessCallsExportedFn(t *testing.T) {
	dir := t.TempDir()
	lib := `
def greet(name) do
  return "Hello, " + name
end
`
	if err := os.WriteFile(filepath.Join(dir, "lib.sct"), []byte(lib), 0o644); err != nil {
		t.Fatalf("writing lib.sct: %v", err)
	}

	src := `
use lib
result = lib::greet("World")
`
	block, err := parser.Parse("main.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(dir)
	ev := New(browser.NewNullDriver(), res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	if v != object.Str("Hello, World") {
		t.Fatalf("result = %v, want %q", v, "Hello, World")
	}
}

// TestModuleLoadIsCachedAcrossRepeatedUse checks that importing the same
// module twice does not re-evaluate its file (spec §5's "resolution
// caches modules to avoid re-evaluating the same file twice"): a second
// `use` of a module whose top level mutates shared state must not double
// that mutation.
func TestModuleLoadIsCachedAcrossRepeatedUse(t *testing.T) {
	dir := t.TempDir()
	lib := `
counter = 0
def bump() do
  counter = counter + 1
  return counter
end
bump()
`
	if err := os.WriteFile(filepath.Join(dir, "lib.sct"), []byte(lib), 0o644); err != nil {
		t.Fatalf("writing lib.sct: %v", err)
	}

	src := `
use lib
use lib
result = lib::counter
`
	block, err := parser.Parse("main.sct", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	res := results.New()
	resolver := module.NewResolver(dir)
	ev := New(browser.NewNullDriver(), res, resolver, nil, nil)
	env := sctenv.New()
	if _, err := ev.Run(context.Background(), env, block); err != nil {
		t.Fatalf("eval error: %v", err)
	}

	v, ok := env.Get("result")
	if !ok {
		t.Fatal("result not bound")
	}
	if v != object.Number(1) {
		t.Fatalf("result = %v, want 1 (lib.sct must evaluate exactly once)", v)
	}
}
