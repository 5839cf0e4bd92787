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

// Package token defines the token kinds and source positions shared by the
// Scout scanner, parser, and evaluator.
package token

import "fmt"

// Position describes a printable source location: a filename plus a
// 1-based line and column and a 0-based byte offset.
//
// Unlike cuelang.org/go/cue/token.Pos, a Scout Position is not interned in a
// shared FileSet: a Scout evaluation never cross-references offsets between
// multiple files being edited concurrently, so each Position simply carries
// its own filename and line/column, computed once by the scanner.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// NoPos is the zero value of Position; it is invalid.
var NoPos = Position{}

// IsValid reports whether the position is valid (has a known line).
func (pos Position) IsValid() bool { return pos.Line > 0 }

// String renders the position as "file:line:column", "line:column", "file",
// or "-" depending on which parts are known.
func (pos Position) String() string {
	s := pos.Filename
	if pos.IsValid() {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	if s == "" {
		s = "-"
	}
	return s
}
