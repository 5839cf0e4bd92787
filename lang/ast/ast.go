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

// Package ast declares the typed syntax tree produced by the Scout parser
// (spec §3 AST). Node shapes are modeled on cuelang.org/go/cue/ast.Node,
// trimmed of comment-attachment (Scout has no comment-preserving printer
// requirement) and retargeted from CUE's struct/comprehension grammar to
// Scout's statement/expression set.
package ast

import "scout-lang.dev/scout/lang/token"

// Node is implemented by every statement and expression in the tree.
type Node interface {
	Pos() token.Position // position of the first token belonging to the node
	End() token.Position // position immediately after the node
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Ident is an identifier: a non-empty name string, compared by string
// equality (spec §3 Identifier).
type Ident struct {
	NamePos token.Position
	Name    string
}

func (i *Ident) Pos() token.Position { return i.NamePos }
func (i *Ident) End() token.Position {
	p := i.NamePos
	p.Offset += len(i.Name)
	p.Column += len(i.Name)
	return p
}
func (*Ident) exprNode() {}

// ----------------------------------------------------------------------------
// Expressions

// StringLit is a "…" literal.
type StringLit struct {
	ValuePos token.Position
	Value    string
}

func (l *StringLit) Pos() token.Position { return l.ValuePos }
func (l *StringLit) End() token.Position { return l.ValuePos }
func (*StringLit) exprNode()             {}

// NumberLit is an Int or Float literal, always represented as a float64 at
// parse time per spec §3 Object::Number.
type NumberLit struct {
	ValuePos token.Position
	Value    float64
}

func (l *NumberLit) Pos() token.Position { return l.ValuePos }
func (l *NumberLit) End() token.Position { return l.ValuePos }
func (*NumberLit) exprNode()             {}

// BooleanLit is true or false.
type BooleanLit struct {
	ValuePos token.Position
	Value    bool
}

func (l *BooleanLit) Pos() token.Position { return l.ValuePos }
func (l *BooleanLit) End() token.Position { return l.ValuePos }
func (*BooleanLit) exprNode()             {}

// NullLit is the null literal.
type NullLit struct {
	ValuePos token.Position
}

func (l *NullLit) Pos() token.Position { return l.ValuePos }
func (l *NullLit) End() token.Position { return l.ValuePos }
func (*NullLit) exprNode()             {}

// ListLit is a [e0, e1, …] literal.
type ListLit struct {
	Lbrack token.Position
	Elts   []Expr
	Rbrack token.Position
}

func (l *ListLit) Pos() token.Position { return l.Lbrack }
func (l *ListLit) End() token.Position { return l.Rbrack }
func (*ListLit) exprNode()             {}

// HashEntry is one `key: expr` pair of a HashLiteral.
type HashEntry struct {
	Key   *Ident
	Value Expr
}

// HashLiteral is an insertion-order-irrelevant `{ k: expr, … }` mapping from
// Identifier to Expr (spec §3 HashLiteral), used by both the Map expression
// and the Scrape statement's operand.
type HashLiteral struct {
	Lbrace  token.Position
	Entries []HashEntry
	Rbrace  token.Position
}

func (h *HashLiteral) Pos() token.Position { return h.Lbrace }
func (h *HashLiteral) End() token.Position { return h.Rbrace }
func (*HashLiteral) exprNode()             {}

// Select is a `$"css"` single-element query, optionally scoped to a bound
// Node (spec §3 "scope is an optional Ident naming a Node value against
// which to query").
type Select struct {
	TokPos token.Position
	Css    string
	Scope  *Ident
}

func (s *Select) Pos() token.Position { return s.TokPos }
func (s *Select) End() token.Position { return s.TokPos }
func (*Select) exprNode()             {}

// SelectAll is a `$$"css"` multi-element query. See Select for Scope.
type SelectAll struct {
	TokPos token.Position
	Css    string
	Scope  *Ident
}

func (s *SelectAll) Pos() token.Position { return s.TokPos }
func (s *SelectAll) End() token.Position { return s.TokPos }
func (*SelectAll) exprNode()             {}

// KwArg is one `name: expr` keyword argument of a Call.
type KwArg struct {
	Name  *Ident
	Value Expr
}

// CallExpr is a function/builtin invocation. Fn is the callee expression:
// usually an Ident, but any expression the parser accepts before `(`, such
// as an index (`fns[0](x)`), so Fn is typed as Expr rather than *Ident
// (spec §3 describes the common case as `Call{ident, args, kwargs}`). A
// module path is never the callee: `::` binds looser than a call, so
// `lib::greet(x)` parses as Infix(lib, ::, Call(greet, x)) and the
// evaluator's `::` rule makes that call inside the module.
type CallExpr struct {
	Fn     Expr
	Lparen token.Position
	Args   []Expr
	Kwargs []KwArg
	Rparen token.Position
}

func (c *CallExpr) Pos() token.Position { return c.Fn.Pos() }
func (c *CallExpr) End() token.Position { return c.Rparen }
func (*CallExpr) exprNode()             {}

// Chain is a `a |> b(args) |> c(args)` pipeline: a left-to-right sequence of
// expressions where each step after the first threads the previous result
// in as the first positional argument of a Call (spec §3 Chain; spec §9
// open question (ii): non-Call steps are accepted as ordinary
// value-producing expressions).
type Chain struct {
	Elts []Expr
}

func (c *Chain) Pos() token.Position { return c.Elts[0].Pos() }
func (c *Chain) End() token.Position { return c.Elts[len(c.Elts)-1].End() }
func (*Chain) exprNode()             {}

// InfixExpr is a binary operator expression, including indexing (`[`) and
// module member access (`::`), per spec §3.
type InfixExpr struct {
	Lhs   Expr
	Op    token.Kind
	OpPos token.Position
	Rhs   Expr
}

func (e *InfixExpr) Pos() token.Position { return e.Lhs.Pos() }
func (e *InfixExpr) End() token.Position { return e.Rhs.End() }
func (*InfixExpr) exprNode()             {}

// PrefixExpr is a unary `!expr` negation.
type PrefixExpr struct {
	OpPos token.Position
	Op    token.Kind
	Right Expr
}

func (e *PrefixExpr) Pos() token.Position { return e.OpPos }
func (e *PrefixExpr) End() token.Position { return e.Right.End() }
func (*PrefixExpr) exprNode()             {}

// FnParam is one parameter of a FuncDef; Default is nil for a required
// parameter.
type FnParam struct {
	Ident   *Ident
	Default Expr
}

// FuncDef is the signature and body shared by a `def` statement.
// Parameters with a Default must all appear after every parameter without
// one (spec §4.C; violation yields DefaultFnParamBefore).
type FuncDef struct {
	DefPos token.Position
	Ident  *Ident
	Params []FnParam
	Body   *Block
}

func (f *FuncDef) Pos() token.Position { return f.DefPos }
func (f *FuncDef) End() token.Position { return f.Body.End() }

// ----------------------------------------------------------------------------
// Statements

// Block is an ordered sequence of statements; a program is itself a Block
// (spec §4.G "A program is a block").
type Block struct {
	Lpos  token.Position
	Stmts []Stmt
	Rpos  token.Position
}

func (b *Block) Pos() token.Position { return b.Lpos }
func (b *Block) End() token.Position { return b.Rpos }

// GotoStmt navigates the browser to the URL produced by evaluating Target.
type GotoStmt struct {
	GotoPos token.Position
	Target  Expr
}

func (s *GotoStmt) Pos() token.Position { return s.GotoPos }
func (s *GotoStmt) End() token.Position { return s.Target.End() }
func (*GotoStmt) stmtNode()             {}

// ScrapeStmt materializes Fields into the shared results aggregator.
type ScrapeStmt struct {
	ScrapePos token.Position
	Fields    *HashLiteral
}

func (s *ScrapeStmt) Pos() token.Position { return s.ScrapePos }
func (s *ScrapeStmt) End() token.Position { return s.Fields.End() }
func (*ScrapeStmt) stmtNode()             {}

// ScreenshotStmt saves a whole-page screenshot to Path.
type ScreenshotStmt struct {
	ShotPos token.Position
	Path    string
}

func (s *ScreenshotStmt) Pos() token.Position { return s.ShotPos }
func (s *ScreenshotStmt) End() token.Position { return s.ShotPos }
func (*ScreenshotStmt) stmtNode()             {}

// ExprStmt wraps an expression evaluated for side effect/value.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Pos() token.Position { return s.X.Pos() }
func (s *ExprStmt) End() token.Position { return s.X.End() }
func (*ExprStmt) stmtNode()             {}

// ForStmt is `for Ident in Iterable do Block end`.
type ForStmt struct {
	ForPos   token.Position
	Ident    *Ident
	Iterable Expr
	Body     *Block
}

func (s *ForStmt) Pos() token.Position { return s.ForPos }
func (s *ForStmt) End() token.Position { return s.Body.End() }
func (*ForStmt) stmtNode()             {}

// WhileStmt is `while Cond do Block end`.
type WhileStmt struct {
	WhilePos token.Position
	Cond     Expr
	Body     *Block
}

func (s *WhileStmt) Pos() token.Position { return s.WhilePos }
func (s *WhileStmt) End() token.Position { return s.Body.End() }
func (*WhileStmt) stmtNode()             {}

// IfClause is one `if`/`elif` branch: a condition and the block to run when
// it is true.
type IfClause struct {
	Cond Expr
	Body *Block
}

// IfStmt is `if … elif … else … end`; at most one branch runs.
type IfStmt struct {
	IfPos token.Position
	If    IfClause
	Elifs []IfClause
	Else  *Block // nil if no else branch
}

func (s *IfStmt) Pos() token.Position { return s.IfPos }
func (s *IfStmt) End() token.Position {
	if s.Else != nil {
		return s.Else.End()
	}
	if n := len(s.Elifs); n > 0 {
		return s.Elifs[n-1].Body.End()
	}
	return s.If.Body.End()
}
func (*IfStmt) stmtNode() {}

// AssignStmt is `lhs = rhs`; Lhs is either an *Ident or an *InfixExpr whose
// Op is token.LBracket (i.e. `a[k] = v`), per spec §4.C.
type AssignStmt struct {
	Lhs Expr
	Rhs Expr
}

func (s *AssignStmt) Pos() token.Position { return s.Lhs.Pos() }
func (s *AssignStmt) End() token.Position { return s.Rhs.End() }
func (*AssignStmt) stmtNode()             {}

// FuncStmt binds a FuncDef's name to a Fn object in the current scope.
type FuncStmt struct {
	Def *FuncDef
}

func (s *FuncStmt) Pos() token.Position { return s.Def.Pos() }
func (s *FuncStmt) End() token.Position { return s.Def.End() }
func (*FuncStmt) stmtNode()             {}

// ReturnStmt is `return` or `return expr`; Value is nil in the former case.
type ReturnStmt struct {
	ReturnPos token.Position
	Value     Expr
}

func (s *ReturnStmt) Pos() token.Position { return s.ReturnPos }
func (s *ReturnStmt) End() token.Position {
	if s.Value != nil {
		return s.Value.End()
	}
	return s.ReturnPos
}
func (*ReturnStmt) stmtNode() {}

// UseStmt is `use <import-path>`; Import is a bare *Ident or a
// left-associative Infix(::) chain (spec §4.F).
type UseStmt struct {
	UsePos token.Position
	Import Expr
}

func (s *UseStmt) Pos() token.Position { return s.UsePos }
func (s *UseStmt) End() token.Position { return s.Import.End() }
func (*UseStmt) stmtNode()             {}

// TryStmt is `try Block [catch Block] end`.
type TryStmt struct {
	TryPos token.Position
	Try    *Block
	Catch  *Block // nil if no catch clause
}

func (s *TryStmt) Pos() token.Position { return s.TryPos }
func (s *TryStmt) End() token.Position {
	if s.Catch != nil {
		return s.Catch.End()
	}
	return s.Try.End()
}
func (*TryStmt) stmtNode() {}

// CrawlBindings names the two identifiers bound per link in a CrawlStmt's
// body: `crawl link, depth where … do … end`.
type CrawlBindings struct {
	Link  *Ident
	Depth *Ident
}

// CrawlStmt is a bounded depth-first link traversal (spec §4.G Crawl
// algorithm). Bindings and Filter are nil/optional.
type CrawlStmt struct {
	CrawlPos token.Position
	Bindings *CrawlBindings
	Filter   Expr
	Body     *Block
}

func (s *CrawlStmt) Pos() token.Position { return s.CrawlPos }
func (s *CrawlStmt) End() token.Position { return s.Body.End() }
func (*CrawlStmt) stmtNode()             {}
