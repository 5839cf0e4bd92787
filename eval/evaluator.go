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

// Package eval implements Scout's tree-walking evaluator (spec §4.G): it
// interprets an *ast.Block against a browser.Driver, a results.Aggregator,
// and a module.Resolver, producing object.Object values or *serrors.Error
// diagnostics.
//
// spec.md models every evaluator operation as an async function, since in
// the original Rust every DOM read, navigation, and even a nested
// container lock is an await point. Go has no colored functions, and
// there is no intentional concurrency between evaluator frames within one
// script (spec §5: "statements in a block execute strictly in order"), so
// this evaluator calls straight through with plain synchronous functions
// and a context.Context threaded in for cancellation and for browser/HTTP
// I/O, the way cuelang.org/go/internal/core/adt's tree-walking evaluator
// is itself a synchronous call graph despite CUE's own evaluation being
// logically lazy. Crawling (crawl.go) is sequential as well: each link's
// tab is opened, evaluated, closed and left before the next link is
// visited.
package eval

import (
	"context"
	"log/slog"
	"time"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

// MaxCrawlDepth bounds crawl recursion (spec §4.G step 6d).
const MaxCrawlDepth = 10

// postNavigationSettle is how long Goto waits after a successful
// navigation for the page to settle before returning control (spec §5
// "an internal ~50 ms post-navigation settle delay").
const postNavigationSettle = 50 * time.Millisecond

// Evaluator holds everything a running script shares by reference (spec
// §5 "Shared resources"): the browser client, the results aggregator, and
// the module resolver. Unlike those, the current Environment is not
// stored here — it is threaded explicitly through every call, since each
// nested block/function/crawl frame has its own.
type Evaluator struct {
	Driver   browser.Driver
	Results  *results.Aggregator
	Resolver *module.Resolver
	Args     []string
	Log      *slog.Logger
}

// New creates an Evaluator. log may be nil, in which case slog.Default()
// is used.
func New(driver browser.Driver, res *results.Aggregator, resolver *module.Resolver, args []string, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{Driver: driver, Results: res, Resolver: resolver, Args: args, Log: log}
}

// Run evaluates prog as the top-level program and unwraps a bare top-level
// Return, per spec §4.G: "A Return tag is unwrapped exactly once by the
// nearest enclosing call frame or by the top-level program driver."
func (ev *Evaluator) Run(ctx context.Context, env *sctenv.Environment, prog *ast.Block) (object.Object, error) {
	v, err := ev.evalBlock(ctx, env, prog)
	if err != nil {
		return nil, err
	}
	if ret, ok := v.(*object.Return); ok {
		return ret.Value, nil
	}
	return v, nil
}

// evalBlock evaluates stmts in order; the block's value is its last
// statement's value, except that a Return-tagged result short-circuits
// the remaining statements and bubbles straight back to the caller (spec
// §4.G "Program & Block").
func (ev *Evaluator) evalBlock(ctx context.Context, env *sctenv.Environment, block *ast.Block) (object.Object, error) {
	var result object.Object = object.Null{}
	for _, stmt := range block.Stmts {
		v, err := ev.evalStmt(ctx, env, stmt)
		if err != nil {
			return nil, err
		}
		result = v
		if _, ok := result.(*object.Return); ok {
			return result, nil
		}
	}
	return result, nil
}

func (ev *Evaluator) evalStmt(ctx context.Context, env *sctenv.Environment, stmt ast.Stmt) (object.Object, error) {
	switch s := stmt.(type) {
	case *ast.GotoStmt:
		return ev.evalGoto(ctx, env, s)
	case *ast.ScrapeStmt:
		return ev.evalScrape(ctx, env, s)
	case *ast.ScreenshotStmt:
		return ev.evalScreenshot(ctx, env, s)
	case *ast.ExprStmt:
		return ev.evalExpr(ctx, env, s.X)
	case *ast.ForStmt:
		return ev.evalFor(ctx, env, s)
	case *ast.WhileStmt:
		return ev.evalWhile(ctx, env, s)
	case *ast.IfStmt:
		return ev.evalIf(ctx, env, s)
	case *ast.AssignStmt:
		return ev.evalAssign(ctx, env, s)
	case *ast.FuncStmt:
		fn := &object.Fn{Name: s.Def.Ident.Name, Params: s.Def.Params, Body: s.Def.Body}
		env.Declare(s.Def.Ident.Name, fn)
		return object.Null{}, nil
	case *ast.ReturnStmt:
		if s.Value == nil {
			return &object.Return{Value: object.Null{}}, nil
		}
		v, err := ev.evalExpr(ctx, env, s.Value)
		if err != nil {
			return nil, err
		}
		return &object.Return{Value: v}, nil
	case *ast.UseStmt:
		return ev.evalUse(ctx, env, s)
	case *ast.TryStmt:
		return ev.evalTry(ctx, env, s)
	case *ast.CrawlStmt:
		return ev.evalCrawl(ctx, env, s)
	default:
		return nil, serrors.Newf(serrors.InvalidExpr, stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (ev *Evaluator) evalGoto(ctx context.Context, env *sctenv.Environment, s *ast.GotoStmt) (object.Object, error) {
	v, err := ev.evalExpr(ctx, env, s.Target)
	if err != nil {
		return nil, err
	}
	url, ok := v.(object.Str)
	if !ok {
		return nil, serrors.Newf(serrors.InvalidFnParams, s.Pos(), "goto requires a Str, got %s", object.TypeName(v))
	}
	if err := ev.Driver.Goto(ctx, string(url)); err != nil {
		return nil, serrors.Wrap(serrors.InvalidURL, s.Pos(), err)
	}
	select {
	case <-time.After(postNavigationSettle):
	case <-ctx.Done():
	}
	return object.Null{}, nil
}

func (ev *Evaluator) evalScrape(ctx context.Context, env *sctenv.Environment, s *ast.ScrapeStmt) (object.Object, error) {
	record := object.NewMap()
	for _, entry := range s.Fields.Entries {
		v, err := ev.evalExpr(ctx, env, entry.Value)
		if err != nil {
			return nil, err
		}
		record.Set(entry.Key.Name, v)
	}
	url, err := ev.Driver.CurrentURL(ctx)
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, s.Pos(), err)
	}
	ev.Results.Append(url, record)
	return object.Null{}, nil
}

func (ev *Evaluator) evalFor(ctx context.Context, env *sctenv.Environment, s *ast.ForStmt) (object.Object, error) {
	iterable, err := ev.evalExpr(ctx, env, s.Iterable)
	if err != nil {
		return nil, err
	}
	elems, ok := object.Iterate(iterable)
	if !ok {
		return nil, serrors.Newf(serrors.NonIterable, s.Pos(), "cannot iterate over %s", object.TypeName(iterable))
	}
	for _, elem := range elems {
		child := sctenv.NewChild(env)
		child.Declare(s.Ident.Name, elem)
		v, err := ev.evalBlock(ctx, child, s.Body)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(*object.Return); ok {
			return v, nil
		}
	}
	return object.Null{}, nil
}

func (ev *Evaluator) evalWhile(ctx context.Context, env *sctenv.Environment, s *ast.WhileStmt) (object.Object, error) {
	for {
		cond, err := ev.evalExpr(ctx, env, s.Cond)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(cond) {
			return object.Null{}, nil
		}
		v, err := ev.evalBlock(ctx, env, s.Body)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(*object.Return); ok {
			return v, nil
		}
	}
}

func (ev *Evaluator) evalIf(ctx context.Context, env *sctenv.Environment, s *ast.IfStmt) (object.Object, error) {
	clauses := append([]ast.IfClause{s.If}, s.Elifs...)
	for _, clause := range clauses {
		cond, err := ev.evalExpr(ctx, env, clause.Cond)
		if err != nil {
			return nil, err
		}
		if object.Truthy(cond) {
			return ev.evalBlock(ctx, env, clause.Body)
		}
	}
	if s.Else != nil {
		return ev.evalBlock(ctx, env, s.Else)
	}
	return object.Null{}, nil
}

func (ev *Evaluator) evalAssign(ctx context.Context, env *sctenv.Environment, s *ast.AssignStmt) (object.Object, error) {
	rhs, err := ev.evalExpr(ctx, env, s.Rhs)
	if err != nil {
		return nil, err
	}

	switch lhs := s.Lhs.(type) {
	case *ast.Ident:
		env.Set(lhs.Name, rhs)
		return rhs, nil
	case *ast.InfixExpr:
		if lhs.Op != token.LBracket {
			return nil, serrors.Newf(serrors.InvalidAssign, s.Pos(), "invalid assignment target")
		}
		target, err := ev.evalExpr(ctx, env, lhs.Lhs)
		if err != nil {
			return nil, err
		}
		idx, err := ev.evalExpr(ctx, env, lhs.Rhs)
		if err != nil {
			return nil, err
		}
		switch t := target.(type) {
		case *object.List:
			n, ok := idx.(object.Number)
			if !ok {
				return nil, serrors.Newf(serrors.InvalidIndex, s.Pos(), "list index must be a Number")
			}
			if !t.Set(int(n), rhs) {
				return nil, serrors.Newf(serrors.IndexOutOfBounds, s.Pos(), "list index %v out of bounds", n)
			}
			return rhs, nil
		case *object.Map:
			key, ok := idx.(object.Str)
			if !ok {
				return nil, serrors.Newf(serrors.InvalidIndex, s.Pos(), "map key must be a Str")
			}
			t.Set(string(key), rhs)
			return rhs, nil
		default:
			return nil, serrors.Newf(serrors.InvalidIndex, s.Pos(), "cannot index into %s", object.TypeName(target))
		}
	default:
		return nil, serrors.Newf(serrors.InvalidAssign, s.Pos(), "invalid assignment target %T", s.Lhs)
	}
}

func (ev *Evaluator) evalUse(ctx context.Context, env *sctenv.Environment, s *ast.UseStmt) (object.Object, error) {
	segments, err := module.Segments(s.Import)
	if err != nil {
		return nil, err
	}
	scope, err := ev.Resolver.Load(ctx, segments, ev.loadModuleFile)
	if err != nil {
		return nil, err
	}
	leaf := segments[len(segments)-1]
	env.Declare(leaf, object.Module{Env: scope})
	return object.Null{}, nil
}

func (ev *Evaluator) evalTry(ctx context.Context, env *sctenv.Environment, s *ast.TryStmt) (object.Object, error) {
	v, err := ev.evalBlock(ctx, env, s.Try)
	if err == nil {
		return v, nil
	}
	if s.Catch == nil {
		return nil, serrors.Newf(serrors.UncaughtException, s.Pos(), "uncaught exception: %v", err)
	}
	return ev.evalBlock(ctx, env, s.Catch)
}
