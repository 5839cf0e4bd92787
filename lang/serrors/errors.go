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

// Package serrors defines the error taxonomy shared by the Scout lexer,
// parser, module resolver, and evaluator (spec §7). It is named serrors,
// not errors, so that files needing both the stdlib errors package and this
// one can import both without an alias.
package serrors

import (
	"fmt"

	"scout-lang.dev/scout/lang/token"
)

// Kind identifies a member of spec §7's error taxonomy.
type Kind int

const (
	// Parse errors.
	UnexpectedToken Kind = iota
	InvalidToken
	InvalidNumber
	InvalidFnCall
	DefaultFnParamBefore
	UnknownPrefix

	// Import errors.
	UnknownModule
	PathError
	ParseError
	OSError

	// Type/usage errors.
	TypeMismatch
	InvalidUsage
	InvalidFnParams
	InvalidExpr
	InvalidAssign
	InvalidIndex
	IndexOutOfBounds
	NonIterable
	NonFunction
	UnknownIdent
	UnknownKey
	UnknownInfixOp
	UnknownPrefixOp
	DuplicateDeclare

	// I/O / driver errors.
	InvalidURL
	URLParseError
	BrowserError
	ScreenshotError
	HTTPError
	InvalidHTTPMethod
	InvalidHeaderKey
	InvalidHeaderValue
	InvalidJSONValue

	// Control.
	UncaughtException
)

var kindNames = map[Kind]string{
	UnexpectedToken:      "UnexpectedToken",
	InvalidToken:         "InvalidToken",
	InvalidNumber:        "InvalidNumber",
	InvalidFnCall:        "InvalidFnCall",
	DefaultFnParamBefore: "DefaultFnParamBefore",
	UnknownPrefix:        "UnknownPrefix",
	UnknownModule:        "UnknownModule",
	PathError:            "PathError",
	ParseError:           "ParseError",
	OSError:              "OSError",
	TypeMismatch:         "TypeMismatch",
	InvalidUsage:         "InvalidUsage",
	InvalidFnParams:      "InvalidFnParams",
	InvalidExpr:          "InvalidExpr",
	InvalidAssign:        "InvalidAssign",
	InvalidIndex:         "InvalidIndex",
	IndexOutOfBounds:     "IndexOutOfBounds",
	NonIterable:          "NonIterable",
	NonFunction:          "NonFunction",
	UnknownIdent:         "UnknownIdent",
	UnknownKey:           "UnknownKey",
	UnknownInfixOp:       "UnknownInfixOp",
	UnknownPrefixOp:      "UnknownPrefixOp",
	DuplicateDeclare:     "DuplicateDeclare",
	InvalidURL:           "InvalidUrl",
	URLParseError:        "URLParseError",
	BrowserError:         "BrowserError",
	ScreenshotError:      "ScreenshotError",
	HTTPError:            "HTTPError",
	InvalidHTTPMethod:    "InvalidHTTPMethod",
	InvalidHeaderKey:     "InvalidHeaderKey",
	InvalidHeaderValue:   "InvalidHeaderValue",
	InvalidJSONValue:     "InvalidJSONValue",
	UncaughtException:    "UncaughtException",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Error is a single Scout diagnostic: a Kind, a position, and a message.
// Modeled on cuelang.org/go/cue/errors.Error, trimmed to Scout's flat
// taxonomy — Scout has no constraint-path concept to report.
type Error struct {
	ErrKind Kind
	Pos     token.Position
	format  string
	args    []interface{}
	wrapped error
}

// Newf creates an Error of the given kind at pos with a formatted message.
func Newf(kind Kind, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{ErrKind: kind, Pos: pos, format: format, args: args}
}

// Wrap creates a Kind-tagged Error that wraps an underlying driver/HTTP/image
// error, per spec §7's BrowserError(inner)/HTTPError(inner)/ScreenshotError.
func Wrap(kind Kind, pos token.Position, err error) *Error {
	return &Error{ErrKind: kind, Pos: pos, format: "%s", args: []interface{}{err}, wrapped: err}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf(e.format, e.args...)
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.ErrKind, msg)
	}
	return fmt.Sprintf("%s: %s", e.ErrKind, msg)
}

// Unwrap exposes a wrapped driver/HTTP/image error for errors.Is/As.
func (e *Error) Unwrap() error { return e.wrapped }

// Msg returns the unformatted message and its arguments, for callers that
// want to localize or re-render it (mirrors cue/errors.Error.Msg).
func (e *Error) Msg() (string, []interface{}) { return e.format, e.args }

// Is reports whether target carries the same error Kind, so callers can
// write errors.Is(err, someSentinel) against a Kind-tagged sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.ErrKind == e.ErrKind
}

// Handler is invoked by the scanner and parser to report a diagnostic
// without halting the scan, matching cuelang.org/go/cue/scanner's
// errors.Handler hook.
type Handler func(pos token.Position, msg string)

// List accumulates zero or more parse-time Errors (spec §7: "parse errors
// are reported and halt evaluation of the source" — a caller typically
// reports every entry in the List and then stops).
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Add appends a new Error built from kind/pos/format/args to the list. Its
// signature is not a Handler's; the parser calls it from Parser.errf and
// from the Handler it gives the scanner.
func (l *List) Add(kind Kind, pos token.Position, format string, args ...interface{}) {
	*l = append(*l, Newf(kind, pos, format, args...))
}
