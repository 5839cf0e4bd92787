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

	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/object"
	"scout-lang.dev/scout/sctenv"
)

// loadModuleFile is the module.LoadFunc this Evaluator hands to its
// Resolver: it parses and evaluates one .sct file's top-level block into a
// fresh Environment, returning that environment as the module's scope
// (spec §4.F/§4.G Use).
func (ev *Evaluator) loadModuleFile(ctx context.Context, path string) (object.Scope, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.PathError, token.NoPos, err)
	}
	block, err := parser.Parse(path, src)
	if err != nil {
		return nil, serrors.Wrap(serrors.ParseError, token.NoPos, err)
	}

	env := sctenv.New()
	if _, err := ev.evalBlock(ctx, env, block); err != nil {
		return nil, err
	}
	return env, nil
}
