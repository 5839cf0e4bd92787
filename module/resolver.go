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

// Package module resolves Scout `use` import specifiers to filesystem
// paths and loads the resulting modules (spec §4.F).
//
// The load side is kept separate from path resolution by a LoadFunc
// callback: module must not import eval (which needs module to resolve
// `use` statements), so the caller — eval — supplies the parse-and-run
// step itself, following the same dependency-inversion shape
// cuelang.org/go/cue/load uses to hand a loaded *build.Instance back to
// cuelang.org/go/cmd/cue/cmd without cmd importing internal parse/eval
// packages directly.
package module

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// LoadFunc parses and evaluates the Scout source at path (a single .sct
// file), returning the resulting module scope. Supplied by eval, which
// owns the parser and evaluator; module only orchestrates path
// resolution and caching.
type LoadFunc func(ctx context.Context, path string) (object.Scope, error)

// Resolver resolves and caches Scout modules (spec §4.F, §5's "resolution
// caches modules to avoid re-evaluating the same file twice" invariant).
type Resolver struct {
	// WorkDir is the base for non-std import paths (spec rule 2): the
	// directory containing the top-level script being run, not the
	// process's os.Getwd — a script run from elsewhere must still resolve
	// sibling imports relative to itself.
	WorkDir string

	group singleflight.Group

	mu    chan struct{} // binary semaphore guarding cache
	cache map[string]object.Scope
}

// NewResolver creates a Resolver rooted at workDir.
func NewResolver(workDir string) *Resolver {
	r := &Resolver{
		WorkDir: workDir,
		mu:      make(chan struct{}, 1),
		cache:   make(map[string]object.Scope),
	}
	r.mu <- struct{}{}
	return r
}

// Segments extracts the dotted path segments of an import specifier:
// either a bare *ast.Ident, or a left-associative Infix(_, ::, Ident)
// chain (spec §4.F). Any other shape is InvalidImport(UnknownModule).
func Segments(expr ast.Expr) ([]string, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return []string{e.Name}, nil
	case *ast.InfixExpr:
		if e.Op.String() != "::" {
			return nil, serrors.Newf(serrors.UnknownModule, expr.Pos(), "invalid import expression: operator %s is not ::", e.Op)
		}
		rhs, ok := e.Rhs.(*ast.Ident)
		if !ok {
			return nil, serrors.Newf(serrors.UnknownModule, expr.Pos(), "invalid import expression: :: segment is not an identifier")
		}
		lhs, err := Segments(e.Lhs)
		if err != nil {
			return nil, err
		}
		return append(lhs, rhs.Name), nil
	default:
		return nil, serrors.Newf(serrors.UnknownModule, expr.Pos(), "invalid import expression: %T", expr)
	}
}

// ResolvePath turns segments into a logical, extension-less filesystem
// path (spec §4.F rules 1-3). The SCOUT_PATH/HOME/USERPROFILE lookups are
// made fresh on every call — spec §5 explicitly requires this, since the
// process environment may change between module resolutions within a
// single long-running run.
func (r *Resolver) ResolvePath(segments []string) (string, error) {
	if len(segments) == 0 {
		return "", serrors.Newf(serrors.UnknownModule, token.NoPos, "empty import path")
	}

	var root string
	rest := segments[1:]
	if segments[0] == "std" {
		libRoot, err := stdLibRoot()
		if err != nil {
			return "", err
		}
		root = libRoot
	} else {
		root = r.WorkDir
		rest = segments
	}

	parts := append([]string{root}, rest...)
	return filepath.Join(parts...), nil
}

// stdLibRoot implements spec §4.F rule 1's fallback chain.
func stdLibRoot() (string, error) {
	if p := os.Getenv("SCOUT_PATH"); p != "" {
		return filepath.Join(p, "scout-lib"), nil
	}
	if h := os.Getenv("HOME"); h != "" {
		return filepath.Join(h, "scout-lang", "scout-lib"), nil
	}
	if h := os.Getenv("USERPROFILE"); h != "" {
		return filepath.Join(h, "scout-lang", "scout-lib"), nil
	}
	return "", serrors.Newf(serrors.OSError, token.NoPos, "cannot resolve std module root: SCOUT_PATH, HOME, and USERPROFILE are all unset")
}

// Load resolves segments to a path and loads the module there, coalescing
// concurrent requests for the same path via singleflight and caching the
// result for the lifetime of the Resolver (spec §5).
func (r *Resolver) Load(ctx context.Context, segments []string, load LoadFunc) (object.Scope, error) {
	path, err := r.ResolvePath(segments)
	if err != nil {
		return nil, err
	}

	v, err, _ := r.group.Do(path, func() (interface{}, error) {
		if scope, ok := r.cacheGet(path); ok {
			return scope, nil
		}
		scope, err := r.loadUncached(ctx, path, load)
		if err != nil {
			return nil, err
		}
		r.cacheSet(path, scope)
		return scope, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(object.Scope), nil
}

func (r *Resolver) cacheGet(path string) (object.Scope, bool) {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	scope, ok := r.cache[path]
	return scope, ok
}

func (r *Resolver) cacheSet(path string, scope object.Scope) {
	<-r.mu
	defer func() { r.mu <- struct{}{} }()
	r.cache[path] = scope
}

// loadUncached implements the three-way resolution order from spec §4.F:
// <path>.sct as a file, <path> as a directory of submodules, or
// parent-of-<path>-as-file with the item loaded from the parent's env.
func (r *Resolver) loadUncached(ctx context.Context, path string, load LoadFunc) (object.Scope, error) {
	file := path + ".sct"
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		return load(ctx, file)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return r.loadDirectory(ctx, path, load)
	}

	parent := filepath.Dir(path)
	leaf := filepath.Base(path)
	parentFile := parent + ".sct"
	if info, err := os.Stat(parentFile); err == nil && !info.IsDir() {
		parentScope, err := load(ctx, parentFile)
		if err != nil {
			return nil, err
		}
		item, ok := parentScope.Get(leaf)
		if !ok {
			return nil, serrors.Newf(serrors.UnknownModule, token.NoPos, "module %q has no member %q", parentFile, leaf)
		}
		mod, ok := item.(object.Module)
		if !ok {
			return nil, serrors.Newf(serrors.UnknownModule, token.NoPos, "%q::%q is not a module", parentFile, leaf)
		}
		return mod.Env, nil
	}

	return nil, serrors.Newf(serrors.PathError, token.NoPos, "no module found at %q", path)
}

// loadDirectory recursively loads every .sct file directly under dir as a
// submodule keyed by its file stem (spec §4.F).
func (r *Resolver) loadDirectory(ctx context.Context, dir string, load LoadFunc) (object.Scope, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, serrors.Newf(serrors.PathError, token.NoPos, "reading module directory %q: %v", dir, err)
	}

	env := sctenv.New()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".sct" {
			continue
		}
		stem := name[:len(name)-len(".sct")]
		childScope, err := load(ctx, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		env.Declare(stem, object.Module{Env: childScope})
	}
	return env, nil
}
