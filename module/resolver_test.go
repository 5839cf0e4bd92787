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

package module

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func member(lhs ast.Expr, name string) *ast.InfixExpr {
	return &ast.InfixExpr{Op: token.DbColon, Lhs: lhs, Rhs: ident(name)}
}

func TestSegmentsBareIdent(t *testing.T) {
	got, err := Segments(ident("foo"))
	if err != nil {
		t.Fatalf("Segments error: %v", err)
	}
	if len(got) != 1 || got[0] != "foo" {
		t.Fatalf("Segments = %v, want [foo]", got)
	}
}

func TestSegmentsDbColonChain(t *testing.T) {
	expr := member(member(ident("std"), "http"), "client")
	got, err := Segments(expr)
	if err != nil {
		t.Fatalf("Segments error: %v", err)
	}
	want := []string{"std", "http", "client"}
	if len(got) != len(want) {
		t.Fatalf("Segments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Segments = %v, want %v", got, want)
		}
	}
}

func TestSegmentsRejectsNonDbColonInfix(t *testing.T) {
	expr := &ast.InfixExpr{Op: token.Plus, Lhs: ident("a"), Rhs: ident("b")}
	if _, err := Segments(expr); err == nil {
		t.Fatal("expected an error for a + infix import path")
	}
}

func TestSegmentsRejectsNonIdentShape(t *testing.T) {
	if _, err := Segments(&ast.NumberLit{Value: 1}); err == nil {
		t.Fatal("expected an error for a non-ident import expression")
	}
}

func TestResolvePathNonStdIsRelativeToWorkDir(t *testing.T) {
	r := NewResolver("/work")
	got, err := r.ResolvePath([]string{"local", "helpers"})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	want := filepath.Join("/work", "local", "helpers")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathStdUsesScoutPath(t *testing.T) {
	t.Setenv("SCOUT_PATH", "/opt/scout")
	r := NewResolver("/work")
	got, err := r.ResolvePath([]string{"std", "http"})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	want := filepath.Join("/opt/scout", "scout-lib", "http")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathStdFallsBackToHome(t *testing.T) {
	t.Setenv("SCOUT_PATH", "")
	t.Setenv("HOME", "/home/scout")
	r := NewResolver("/work")
	got, err := r.ResolvePath([]string{"std"})
	if err != nil {
		t.Fatalf("ResolvePath error: %v", err)
	}
	want := filepath.Join("/home/scout", "scout-lang", "scout-lib")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestResolvePathStdWithNoEnvIsOSError(t *testing.T) {
	t.Setenv("SCOUT_PATH", "")
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	r := NewResolver("/work")
	if _, err := r.ResolvePath([]string{"std"}); err == nil {
		t.Fatal("expected an OSError when SCOUT_PATH, HOME, and USERPROFILE are all unset")
	}
}

func TestLoadFileCoalescesAndCaches(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lib.sct")
	if err := os.WriteFile(file, []byte("# empty module"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := NewResolver(dir)
	var calls int32
	load := func(ctx context.Context, path string) (object.Scope, error) {
		atomic.AddInt32(&calls, 1)
		env := sctenv.New()
		env.Declare("loadedFrom", object.Str(path))
		return env, nil
	}

	scope1, err := r.Load(context.Background(), []string{"lib"}, load)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	scope2, err := r.Load(context.Background(), []string{"lib"}, load)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if scope1 != scope2 {
		t.Fatal("second Load returned a different scope, want the cached one")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("load called %d times, want 1 (cache hit on second call)", calls)
	}
}

func TestLoadDirectoryBuildsSubmoduleScope(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.sct", "b.sct"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# empty"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	r := NewResolver(filepath.Dir(dir))
	load := func(ctx context.Context, path string) (object.Scope, error) {
		env := sctenv.New()
		env.Declare("path", object.Str(path))
		return env, nil
	}

	scope, err := r.Load(context.Background(), []string{filepath.Base(dir)}, load)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	for _, stem := range []string{"a", "b"} {
		v, ok := scope.Get(stem)
		if !ok {
			t.Fatalf("scope has no submodule %q", stem)
		}
		if _, ok := v.(object.Module); !ok {
			t.Fatalf("scope[%q] = %T, want object.Module", stem, v)
		}
	}
}

func TestLoadMissingPathIsPathError(t *testing.T) {
	r := NewResolver(t.TempDir())
	load := func(ctx context.Context, path string) (object.Scope, error) {
		t.Fatal("load should not be called for a nonexistent path")
		return nil, nil
	}
	if _, err := r.Load(context.Background(), []string{"nope"}, load); err == nil {
		t.Fatal("expected an error for a nonexistent module path")
	}
}
