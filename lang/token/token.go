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

package token

// Kind enumerates the lexical token kinds produced by the Scout scanner, per
// spec §3 Token.
type Kind int

const (
	Illegal Kind = iota
	EOF

	literalBeg
	Ident
	Int
	Float
	Str
	literalEnd

	operatorBeg
	Comma
	Colon
	Pipe // |>
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Select    // $"…"
	SelectAll // $$"…"
	Assign    // =
	EQ        // ==
	NEQ       // !=
	Plus
	Minus
	Asterisk
	Slash
	GT
	LT
	GTE
	LTE
	Bang
	DbColon // ::
	operatorEnd

	keywordBeg
	If
	Elif
	Else
	For
	While
	In
	Do
	End
	Goto
	Scrape
	Screenshot
	True
	False
	Def
	Null
	Return
	Use
	Try
	Catch
	Throw
	Crawl
	Where
	And
	Or
	keywordEnd
)

var kindNames = map[Kind]string{
	Illegal:    "ILLEGAL",
	EOF:        "EOF",
	Ident:      "IDENT",
	Int:        "INT",
	Float:      "FLOAT",
	Str:        "STRING",
	Comma:      ",",
	Colon:      ":",
	Pipe:       "|>",
	LParen:     "(",
	RParen:     ")",
	LBrace:     "{",
	RBrace:     "}",
	LBracket:   "[",
	RBracket:   "]",
	Select:     "SELECT",
	SelectAll:  "SELECTALL",
	Assign:     "=",
	EQ:         "==",
	NEQ:        "!=",
	Plus:       "+",
	Minus:      "-",
	Asterisk:   "*",
	Slash:      "/",
	GT:         ">",
	LT:         "<",
	GTE:        ">=",
	LTE:        "<=",
	Bang:       "!",
	DbColon:    "::",
	If:         "if",
	Elif:       "elif",
	Else:       "else",
	For:        "for",
	While:      "while",
	In:         "in",
	Do:         "do",
	End:        "end",
	Goto:       "goto",
	Scrape:     "scrape",
	Screenshot: "screenshot",
	True:       "true",
	False:      "false",
	Def:        "def",
	Null:       "null",
	Return:     "return",
	Use:        "use",
	Try:        "try",
	Catch:      "catch",
	Throw:      "throw",
	Crawl:      "crawl",
	Where:      "where",
	And:        "and",
	Or:         "or",
}

// String returns a human-readable rendering of the kind, for diagnostics.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsLiteral reports whether k is one of Ident, Int, Float, Str.
func (k Kind) IsLiteral() bool { return literalBeg < k && k < literalEnd }

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return keywordBeg < k && k < keywordEnd }

// keywords maps the literal spelling of every reserved word to its Kind, per
// spec §3 Token (the fixed keyword table applied by the scanner when
// reclassifying an identifier).
var keywords = map[string]Kind{
	"if":         If,
	"elif":       Elif,
	"else":       Else,
	"for":        For,
	"while":      While,
	"in":         In,
	"do":         Do,
	"end":        End,
	"goto":       Goto,
	"scrape":     Scrape,
	"screenshot": Screenshot,
	"true":       True,
	"false":      False,
	"def":        Def,
	"null":       Null,
	"return":     Return,
	"use":        Use,
	"try":        Try,
	"catch":      Catch,
	"throw":      Throw,
	"crawl":      Crawl,
	"where":      Where,
	"and":        And,
	"or":         Or,
}

// Lookup reclassifies an identifier string as its keyword Kind, or returns
// Ident if the string is not a reserved word.
func Lookup(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Ident
}

// Token is a single lexeme produced by the scanner: a Kind, its literal
// source text, and the Position it started at.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

// precedence levels, ascending, per spec §4.C.
const (
	LowestPrec = iota
	EqualsPrec
	LessGreaterPrec
	SumPrec
	ProductPrec
	CallPrec
	IndexPrec
)

// Precedence returns the infix binding power of k, or LowestPrec if k is
// never infix.
func (k Kind) Precedence() int {
	switch k {
	case EQ, NEQ, And, Or:
		return EqualsPrec
	case GT, LT, GTE, LTE:
		return LessGreaterPrec
	case Plus, Minus:
		return SumPrec
	case Asterisk, Slash, DbColon:
		return ProductPrec
	case LParen:
		return CallPrec
	case LBracket, Pipe:
		return IndexPrec
	default:
		return LowestPrec
	}
}
