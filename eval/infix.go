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

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// evalInfix dispatches a binary expression to arithmetic, comparison,
// indexing, boolean short-circuit, or module-member-access semantics (spec
// §4.G "Infix").
func (ev *Evaluator) evalInfix(ctx context.Context, env *sctenv.Environment, e *ast.InfixExpr) (object.Object, error) {
	// `and`/`or` short-circuit, so Rhs must not be evaluated eagerly.
	switch e.Op {
	case token.And:
		lhs, err := ev.evalExpr(ctx, env, e.Lhs)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(lhs) {
			return object.Boolean(false), nil
		}
		rhs, err := ev.evalExpr(ctx, env, e.Rhs)
		if err != nil {
			return nil, err
		}
		return object.Boolean(object.Truthy(rhs)), nil
	case token.Or:
		lhs, err := ev.evalExpr(ctx, env, e.Lhs)
		if err != nil {
			return nil, err
		}
		if object.Truthy(lhs) {
			return object.Boolean(true), nil
		}
		rhs, err := ev.evalExpr(ctx, env, e.Rhs)
		if err != nil {
			return nil, err
		}
		return object.Boolean(object.Truthy(rhs)), nil
	case token.DbColon:
		return ev.evalModuleAccess(ctx, env, e)
	}

	lhs, err := ev.evalExpr(ctx, env, e.Lhs)
	if err != nil {
		return nil, err
	}

	if e.Op == token.LBracket {
		idx, err := ev.evalExpr(ctx, env, e.Rhs)
		if err != nil {
			return nil, err
		}
		return evalIndex(lhs, idx, e.Pos())
	}

	rhs, err := ev.evalExpr(ctx, env, e.Rhs)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case token.EQ:
		return object.Boolean(object.Equal(lhs, rhs)), nil
	case token.NEQ:
		return object.Boolean(!object.Equal(lhs, rhs)), nil
	case token.Plus:
		if ls, ok := lhs.(object.Str); ok {
			rs, ok := rhs.(object.Str)
			if !ok {
				return nil, serrors.Newf(serrors.TypeMismatch, e.Pos(), "cannot add %s to Str", object.TypeName(rhs))
			}
			return ls + rs, nil
		}
		ln, lok := lhs.(object.Number)
		rn, rok := rhs.(object.Number)
		if !lok || !rok {
			return nil, serrors.Newf(serrors.TypeMismatch, e.Pos(), "+ requires two Numbers or two Strs, got %s and %s", object.TypeName(lhs), object.TypeName(rhs))
		}
		return ln + rn, nil
	case token.Minus, token.Asterisk, token.Slash, token.GT, token.LT, token.GTE, token.LTE:
		ln, lok := lhs.(object.Number)
		rn, rok := rhs.(object.Number)
		if !lok || !rok {
			return nil, serrors.Newf(serrors.TypeMismatch, e.Pos(), "%s requires two Numbers, got %s and %s", e.Op, object.TypeName(lhs), object.TypeName(rhs))
		}
		switch e.Op {
		case token.Minus:
			return ln - rn, nil
		case token.Asterisk:
			return ln * rn, nil
		case token.Slash:
			if rn == 0 {
				return nil, serrors.Newf(serrors.InvalidUsage, e.Pos(), "division by zero")
			}
			return ln / rn, nil
		case token.GT:
			return object.Boolean(ln > rn), nil
		case token.LT:
			return object.Boolean(ln < rn), nil
		case token.GTE:
			return object.Boolean(ln >= rn), nil
		case token.LTE:
			return object.Boolean(ln <= rn), nil
		}
	}
	return nil, serrors.Newf(serrors.UnknownInfixOp, e.Pos(), "unknown infix operator %s", e.Op)
}

// evalIndex implements `[` indexing across List, Map, and Str (spec §4.G).
func evalIndex(target, idx object.Object, pos token.Position) (object.Object, error) {
	switch t := target.(type) {
	case *object.List:
		n, ok := idx.(object.Number)
		if !ok {
			return nil, serrors.Newf(serrors.InvalidIndex, pos, "list index must be a Number, got %s", object.TypeName(idx))
		}
		v, ok := t.Get(int(n))
		if !ok {
			return nil, serrors.Newf(serrors.IndexOutOfBounds, pos, "list index %v out of bounds", n)
		}
		return v, nil
	case *object.Map:
		key, ok := idx.(object.Str)
		if !ok {
			return nil, serrors.Newf(serrors.InvalidIndex, pos, "map key must be a Str, got %s", object.TypeName(idx))
		}
		v, ok := t.Get(string(key))
		if !ok {
			return nil, serrors.Newf(serrors.UnknownKey, pos, "map has no key %q", string(key))
		}
		return v, nil
	case object.Str:
		n, ok := idx.(object.Number)
		if !ok {
			return nil, serrors.Newf(serrors.InvalidIndex, pos, "str index must be a Number, got %s", object.TypeName(idx))
		}
		runes := []rune(string(t))
		i := int(n)
		if i < 0 || i >= len(runes) {
			return nil, serrors.Newf(serrors.IndexOutOfBounds, pos, "str index %v out of bounds", n)
		}
		return object.Str(string(runes[i])), nil
	default:
		return nil, serrors.Newf(serrors.InvalidIndex, pos, "cannot index into %s", object.TypeName(target))
	}
}

// evalModuleAccess implements `lib::member` (spec §4.G): lhs must evaluate
// to a Module, and rhs (almost always a bare Ident or a CallExpr whose Fn is
// a bare Ident — the parser's precedence rules never produce `::` nested
// inside a CallExpr.Fn, only wrapped around one) is evaluated with that
// module's own environment substituted in as the current environment,
// rather than merely looking rhs's name up inside it. This makes a module
// member behave exactly as if its defining file's top-level bindings were
// in scope for that one nested evaluation.
func (ev *Evaluator) evalModuleAccess(ctx context.Context, env *sctenv.Environment, e *ast.InfixExpr) (object.Object, error) {
	lhs, err := ev.evalExpr(ctx, env, e.Lhs)
	if err != nil {
		return nil, err
	}
	mod, ok := lhs.(object.Module)
	if !ok {
		return nil, serrors.Newf(serrors.TypeMismatch, e.Pos(), ":: requires a Module on its left, got %s", object.TypeName(lhs))
	}
	modEnv, ok := mod.Env.(*sctenv.Environment)
	if !ok {
		return nil, serrors.Newf(serrors.TypeMismatch, e.Pos(), "module environment is not evaluable")
	}
	return ev.evalExpr(ctx, modEnv, e.Rhs)
}
