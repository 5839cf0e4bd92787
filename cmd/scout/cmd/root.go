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

// Package cmd implements the scout command-line front end: a single
// `scout <script.sct>` command that drives eval.Evaluator against a
// browser.NullDriver and prints the resulting scrape records as JSON.
//
// Scout has no sibling subcommands the way cmd/cue's root wires eval,
// export, fmt, get, trim, and the rest — spec.md §1 places everything but
// running a script out of scope — so this stays a single cobra.Command
// rather than the teacher's dispatch-to-many-subcommands root, but keeps
// the teacher's ErrPrintedError/SilenceErrors/SilenceUsage wiring and its
// ctx-carrying Main/Run split.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scout-lang.dev/scout/browser"
	"scout-lang.dev/scout/eval"
	"scout-lang.dev/scout/lang/parser"
	"scout-lang.dev/scout/module"
	"scout-lang.dev/scout/results"
	"scout-lang.dev/scout/sctenv"
)

// ErrPrintedError indicates the error has already been reported to stderr,
// so Main should not print it again (mirrors cmd/cue's
// ErrPrintedError/errWriter split).
var ErrPrintedError = errors.New("terminating because of errors")

// Command wraps the root cobra.Command the way cmd/cue's Command does,
// trimmed to the two flags scout's CLI needs (--arg and --verbose).
type Command struct {
	*cobra.Command

	scriptArgs []string
	verbose    bool
}

// New creates the root command. args is the program's argv[1:], mirroring
// cmd/cue's New(args []string).
func New(args []string) *Command {
	c := &Command{}
	root := &cobra.Command{
		Use:   "scout <script.sct>",
		Short: "scout runs a Scout scraping script against a browser driver",

		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScript(cmd.Context(), args[0])
		},
	}
	root.Flags().StringArrayVarP(&c.scriptArgs, "arg", "a", nil, "pass a string through to the script's args() builtin (repeatable)")
	root.Flags().BoolVarP(&c.verbose, "verbose", "v", false, "log evaluator diagnostics at debug level")
	root.SetArgs(args)
	c.Command = root
	return c
}

func (c *Command) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// runScript parses path, evaluates it against a browser.NullDriver (no CDP
// transport is in scope for this module — see browser.NullDriver's doc
// comment), and prints the results aggregator's JSON form to stdout.
func (c *Command) runScript(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	block, err := parser.Parse(path, src)
	if err != nil {
		return err
	}

	res := results.New()
	resolver := module.NewResolver(filepath.Dir(path))
	log := c.logger()
	ev := eval.New(browser.NewNullDriver(), res, resolver, c.scriptArgs, log)
	env := sctenv.New()

	if _, err := ev.Run(ctx, env, block); err != nil {
		return err
	}

	out, err := res.JSON()
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	fmt.Fprintln(c.OutOrStdout(), string(out))
	return nil
}

// Main runs scout and returns the code for os.Exit, mirroring cmd/cue's
// Main/ErrPrintedError split: errors already printed by a nested command
// are not printed twice.
func Main() int {
	cmd := New(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, ErrPrintedError) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
