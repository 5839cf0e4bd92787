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
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// evalCall implements spec §4.G Call semantics. The parser only ever
// produces a bare *ast.Ident in the callee position — `::` always wraps
// around a CallExpr rather than appearing inside one (see infix.go's
// evalModuleAccess doc comment) — so the Ident branch below is the call
// path every real program takes; the fallback branch exists only for
// defensive completeness against a hand-built AST.
func (ev *Evaluator) evalCall(ctx context.Context, env *sctenv.Environment, call *ast.CallExpr) (object.Object, error) {
	ident, ok := call.Fn.(*ast.Ident)
	if !ok {
		v, err := ev.evalExpr(ctx, env, call.Fn)
		if err != nil {
			return nil, err
		}
		fn, ok := v.(*object.Fn)
		if !ok {
			return nil, serrors.Newf(serrors.NonFunction, call.Pos(), "callee is not callable (got %s)", object.TypeName(v))
		}
		return ev.callFn(ctx, env, fn, call)
	}

	if v, ok := env.Get(ident.Name); ok {
		fn, ok := v.(*object.Fn)
		if !ok {
			return nil, serrors.Newf(serrors.NonFunction, call.Pos(), "%q is not callable (got %s)", ident.Name, object.TypeName(v))
		}
		return ev.callFn(ctx, env, fn, call)
	}

	builtin, ok := builtins[ident.Name]
	if !ok {
		return nil, serrors.Newf(serrors.UnknownIdent, call.Pos(), "unknown identifier %q", ident.Name)
	}
	args, kwargs, err := ev.evalArgs(ctx, env, call)
	if err != nil {
		return nil, err
	}
	return builtin(ctx, ev, env, call, args, kwargs)
}

// evalArgs evaluates a call's positional and keyword arguments in the
// caller's environment.
func (ev *Evaluator) evalArgs(ctx context.Context, env *sctenv.Environment, call *ast.CallExpr) ([]object.Object, map[string]object.Object, error) {
	args := make([]object.Object, len(call.Args))
	for i, a := range call.Args {
		v, err := ev.evalExpr(ctx, env, a)
		if err != nil {
			return nil, nil, err
		}
		args[i] = v
	}
	kwargs := make(map[string]object.Object, len(call.Kwargs))
	for _, kw := range call.Kwargs {
		v, err := ev.evalExpr(ctx, env, kw.Value)
		if err != nil {
			return nil, nil, err
		}
		kwargs[kw.Name.Name] = v
	}
	return args, kwargs, nil
}

// callFn binds call's arguments into a fresh child of the caller's own
// environment and evaluates its body, unwrapping a Return exactly once
// (spec §4.G, §3 Object::Fn). Scout has no separate closure-capture
// environment: a function body outer-links to whatever env is in effect
// at the call site, not the env in effect at `def` time, so a function
// referring to a name it doesn't bind itself sees that name's current
// value at the moment it's called. Parameters with a Default may be
// omitted; the default is re-evaluated in the caller's env, same as a
// positional argument expression would be.
func (ev *Evaluator) callFn(ctx context.Context, callerEnv *sctenv.Environment, fn *object.Fn, call *ast.CallExpr) (object.Object, error) {
	if len(call.Args) > len(fn.Params) {
		return nil, serrors.Newf(serrors.InvalidFnParams, call.Pos(), "%s expects at most %d argument(s), got %d", fn.Name, len(fn.Params), len(call.Args))
	}

	child := sctenv.NewChild(callerEnv)
	bound := make(map[string]bool, len(fn.Params))

	for i, param := range fn.Params {
		if i >= len(call.Args) {
			break
		}
		v, err := ev.evalExpr(ctx, callerEnv, call.Args[i])
		if err != nil {
			return nil, err
		}
		child.Declare(param.Ident.Name, v)
		bound[param.Ident.Name] = true
	}

	paramByName := make(map[string]ast.FnParam, len(fn.Params))
	for _, param := range fn.Params {
		paramByName[param.Ident.Name] = param
	}
	for _, kw := range call.Kwargs {
		if _, known := paramByName[kw.Name.Name]; !known {
			return nil, serrors.Newf(serrors.InvalidFnParams, call.Pos(), "%s has no parameter %q", fn.Name, kw.Name.Name)
		}
		if bound[kw.Name.Name] {
			return nil, serrors.Newf(serrors.InvalidFnParams, call.Pos(), "parameter %q already bound positionally", kw.Name.Name)
		}
		v, err := ev.evalExpr(ctx, callerEnv, kw.Value)
		if err != nil {
			return nil, err
		}
		child.Declare(kw.Name.Name, v)
		bound[kw.Name.Name] = true
	}

	for _, param := range fn.Params {
		if bound[param.Ident.Name] {
			continue
		}
		if param.Default == nil {
			return nil, serrors.Newf(serrors.InvalidFnParams, call.Pos(), "%s missing required parameter %q", fn.Name, param.Ident.Name)
		}
		v, err := ev.evalExpr(ctx, callerEnv, param.Default)
		if err != nil {
			return nil, err
		}
		child.Declare(param.Ident.Name, v)
	}

	result, err := ev.evalBlock(ctx, child, fn.Body)
	if err != nil {
		return nil, err
	}
	if ret, ok := result.(*object.Return); ok {
		return ret.Value, nil
	}
	return result, nil
}
