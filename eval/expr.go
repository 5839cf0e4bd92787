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

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

func (ev *Evaluator) evalExpr(ctx context.Context, env *sctenv.Environment, expr ast.Expr) (object.Object, error) {
	switch e := expr.(type) {
	case *preEvaluated:
		return e.value, nil
	case *ast.StringLit:
		return object.Str(e.Value), nil
	case *ast.NumberLit:
		return object.Number(e.Value), nil
	case *ast.BooleanLit:
		return object.Boolean(e.Value), nil
	case *ast.NullLit:
		return object.Null{}, nil
	case *ast.Ident:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, serrors.Newf(serrors.UnknownIdent, e.Pos(), "unknown identifier %q", e.Name)
		}
		return v, nil
	case *ast.ListLit:
		elems := make([]object.Object, len(e.Elts))
		for i, elt := range e.Elts {
			v, err := ev.evalExpr(ctx, env, elt)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return object.NewList(elems), nil
	case *ast.HashLiteral:
		m := object.NewMap()
		for _, entry := range e.Entries {
			v, err := ev.evalExpr(ctx, env, entry.Value)
			if err != nil {
				return nil, err
			}
			m.Set(entry.Key.Name, v)
		}
		return m, nil
	case *ast.Select:
		return ev.evalSelect(ctx, env, e.Css, e.Scope, e.TokPos, false)
	case *ast.SelectAll:
		return ev.evalSelect(ctx, env, e.Css, e.Scope, e.TokPos, true)
	case *ast.CallExpr:
		return ev.evalCall(ctx, env, e)
	case *ast.Chain:
		return ev.evalChain(ctx, env, e)
	case *ast.InfixExpr:
		return ev.evalInfix(ctx, env, e)
	case *ast.PrefixExpr:
		return ev.evalPrefix(ctx, env, e)
	default:
		return nil, serrors.Newf(serrors.InvalidExpr, expr.Pos(), "unsupported expression %T", expr)
	}
}

// elementFinder is the query surface shared by browser.Driver (page-scoped)
// and browser.Element (node-scoped): both already declare Find/FindAll with
// this exact signature, so either satisfies it without any adapter type.
type elementFinder interface {
	Find(ctx context.Context, css string) (browser.Element, bool, error)
	FindAll(ctx context.Context, css string) ([]browser.Element, error)
}

// scopeFinder resolves Select/SelectAll's optional Scope Ident to the
// query surface it should run against: the page itself if Scope is nil, or
// the Node it names (spec §3 "scope is an optional Ident naming a Node
// value against which to query").
func (ev *Evaluator) scopeFinder(ctx context.Context, env *sctenv.Environment, scope *ast.Ident, pos token.Position) (elementFinder, error) {
	if scope == nil {
		return ev.Driver, nil
	}
	v, ok := env.Get(scope.Name)
	if !ok {
		return nil, serrors.Newf(serrors.UnknownIdent, pos, "unknown identifier %q", scope.Name)
	}
	node, ok := v.(object.Node)
	if !ok {
		return nil, serrors.Newf(serrors.InvalidUsage, pos, "scope %q is a %s, not a Node", scope.Name, object.TypeName(v))
	}
	el, ok := node.Handle.(browser.Element)
	if !ok {
		return nil, serrors.Newf(serrors.InvalidUsage, pos, "scope %q is not a browser-backed Node", scope.Name)
	}
	return el, nil
}

// evalSelect implements spec §3/§4.G Select/SelectAll: a missing selector
// result is Null, not an error.
func (ev *Evaluator) evalSelect(ctx context.Context, env *sctenv.Environment, css string, scope *ast.Ident, pos token.Position, all bool) (object.Object, error) {
	finder, err := ev.scopeFinder(ctx, env, scope, pos)
	if err != nil {
		return nil, err
	}

	if all {
		els, err := finder.FindAll(ctx, css)
		if err != nil {
			return nil, serrors.Wrap(serrors.BrowserError, pos, err)
		}
		if len(els) == 0 {
			return object.Null{}, nil
		}
		out := make([]object.Object, len(els))
		for i, el := range els {
			out[i] = object.Node{Handle: el}
		}
		return object.NewList(out), nil
	}

	el, ok, err := finder.Find(ctx, css)
	if err != nil {
		return nil, serrors.Wrap(serrors.BrowserError, pos, err)
	}
	if !ok {
		return object.Null{}, nil
	}
	return object.Node{Handle: el}, nil
}

func (ev *Evaluator) evalPrefix(ctx context.Context, env *sctenv.Environment, e *ast.PrefixExpr) (object.Object, error) {
	v, err := ev.evalExpr(ctx, env, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case token.Bang:
		return object.Boolean(!object.Truthy(v)), nil
	default:
		return nil, serrors.Newf(serrors.UnknownPrefixOp, e.Pos(), "unknown prefix operator %s", e.Op)
	}
}

// evalChain implements the `|>` pipeline (spec §3 Chain, §9 open question
// (ii)): each Call step after the first gets the previous result spliced
// in as its first positional argument; a non-Call step is
// evaluated as an ordinary expression whose value shadows the piped value.
func (ev *Evaluator) evalChain(ctx context.Context, env *sctenv.Environment, c *ast.Chain) (object.Object, error) {
	result, err := ev.evalExpr(ctx, env, c.Elts[0])
	if err != nil {
		return nil, err
	}
	for _, step := range c.Elts[1:] {
		call, ok := step.(*ast.CallExpr)
		if !ok {
			v, err := ev.evalExpr(ctx, env, step)
			if err != nil {
				return nil, err
			}
			result = v
			continue
		}
		args := make([]ast.Expr, 0, len(call.Args)+1)
		args = append(args, &preEvaluated{value: result, at: call.Pos()})
		args = append(args, call.Args...)
		piped := &ast.CallExpr{Fn: call.Fn, Lparen: call.Lparen, Args: args, Kwargs: call.Kwargs, Rparen: call.Rparen}
		v, err := ev.evalCall(ctx, env, piped)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// preEvaluated lets evalChain splice an already-computed object.Object into
// an argument list built from ast.Expr without re-evaluating anything.
type preEvaluated struct {
	value object.Object
	at    token.Position
}

func (p *preEvaluated) Pos() token.Position { return p.at }
func (p *preEvaluated) End() token.Position { return p.at }
func (*preEvaluated) exprNode()             {}
