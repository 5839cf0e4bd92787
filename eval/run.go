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
	"log/slog"
	"os"
	"path/filepath"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

// RunFile parses and evaluates the Scout script at path to completion,
// wiring a fresh module.Resolver rooted at the script's own directory
// (spec §4.F rule 2) and a fresh results.Aggregator, and returns the
// aggregator so the caller can print or save its JSON form.
func RunFile(ctx context.Context, driver browser.Driver, path string, args []string, log *slog.Logger) (*results.Aggregator, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.Wrap(serrors.PathError, token.NoPos, err)
	}
	block, err := parser.Parse(path, src)
	if err != nil {
		return nil, serrors.Wrap(serrors.ParseError, token.NoPos, err)
	}

	res := results.New()
	resolver := module.NewResolver(filepath.Dir(path))
	ev := New(driver, res, resolver, args, log)

	env := sctenv.New()
	if _, err := ev.Run(ctx, env, block); err != nil {
		return res, err
	}
	return res, nil
}
