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

// Package parser implements a Pratt (precedence-climbing) recursive-descent
// parser that turns Scout source text into an *ast.Block (spec §4.C).
//
// The overall shape — a Parser holding cur/peek *token.Token lookahead, a
// next() advance method, and an expect(kind) helper that records a
// diagnostic and keeps going rather than aborting — is carried over from
// cuelang.org/go/cue/parser.parser. What changed is the grammar itself:
// CUE's struct/comprehension productions are replaced by Scout's statement
// and expression set, and binary-expression precedence climbing
// (parseBinary, mirroring cue/parser's parseBinaryExpr/tokPrec) is extended
// with Pratt-style prefix parselets for Scout's `$"…"`/`$$"…"` selection
// syntax, hash literals, and `|>` pipelines, none of which have a CUE
// analogue.
package parser

import (
	"strconv"

	"scout-lang.dev/scout/lang/ast"
	"scout-lang.dev/scout/lang/scanner"
	"scout-lang.dev/scout/lang/serrors"
	"scout-lang.dev/scout/lang/token"
)

// Parser holds one-token lookahead parsing state for a single source file.
type Parser struct {
	sc   scanner.Scanner
	errs serrors.List

	cur  token.Token
	peek token.Token
}

// New creates a Parser over src, attributing diagnostics to filename.
func New(filename string, src []byte) *Parser {
	p := &Parser{}
	p.sc.Init(filename, src, func(pos token.Position, msg string) {
		p.errs.Add(serrors.InvalidToken, pos, "%s", msg)
	})
	p.next()
	p.next()
	return p
}

// Parse is the package-level convenience entry point: it parses src as a
// complete program and returns the resulting block, or a serrors.List error
// if any diagnostics were recorded (spec §7: "parse errors are reported and
// halt evaluation of the source").
func Parse(filename string, src []byte) (*ast.Block, error) {
	p := New(filename, src)
	prog := p.ParseProgram()
	if len(p.errs) > 0 {
		return prog, p.errs
	}
	return prog, nil
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.sc.Scan()
}

func (p *Parser) errf(kind serrors.Kind, pos token.Position, format string, args ...interface{}) {
	p.errs.Add(kind, pos, format, args...)
}

// expect requires cur to have the given kind, records UnexpectedToken if
// not, and always advances — Scout scripts are short enough that
// best-effort error recovery (keep going, report everything) is preferable
// to aborting on the first syntax error.
func (p *Parser) expect(kind token.Kind) token.Token {
	tok := p.cur
	if tok.Kind != kind {
		p.errf(serrors.UnexpectedToken, tok.Pos, "expected %s, found %s %q", kind, tok.Kind, tok.Literal)
	}
	p.next()
	return tok
}

// atBlockEnd reports whether cur is one of the given block-terminating
// keywords or EOF — spec §4.C's "contextual finalizer sets" ({end},
// {end, elif, else}, {catch, end}).
func atBlockEnd(cur token.Kind, terminators []token.Kind) bool {
	if cur == token.EOF {
		return true
	}
	for _, t := range terminators {
		if cur == t {
			return true
		}
	}
	return false
}

// ParseProgram parses the whole input as a Block (spec §4.G: "A program is
// a block").
func (p *Parser) ParseProgram() *ast.Block {
	return p.parseBlock(nil)
}

func (p *Parser) parseBlock(terminators []token.Kind) *ast.Block {
	b := &ast.Block{Lpos: p.cur.Pos}
	for !atBlockEnd(p.cur.Kind, terminators) {
		start := p.cur
		stmt := p.parseStatement()
		if stmt != nil {
			b.Stmts = append(b.Stmts, stmt)
		}
		// Guard against a statement parser that failed to consume any
		// token, which would otherwise loop forever on malformed input.
		if p.cur == start && !atBlockEnd(p.cur.Kind, terminators) {
			p.next()
		}
	}
	b.Rpos = p.cur.Pos
	return b
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.Def:
		return p.parseFuncStmt()
	case token.Goto:
		return p.parseGoto()
	case token.Scrape:
		return p.parseScrape()
	case token.Screenshot:
		return p.parseScreenshot()
	case token.For:
		return p.parseFor()
	case token.While:
		return p.parseWhile()
	case token.If:
		return p.parseIf()
	case token.Return:
		return p.parseReturn()
	case token.Use:
		return p.parseUse()
	case token.Try:
		return p.parseTry()
	case token.Crawl:
		return p.parseCrawl()
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses either an assignment (`ident = expr` or
// `a[k] = v`) or a bare expression statement, per spec §4.C: "ident with
// peek==Assign→assignment (also allowed where the LHS is an indexing
// expression, detected by reparsing the LHS as an expression and requiring
// the top-level operator be `[`)". Parsing the LHS as a full expression
// first and then checking whether Assign follows handles both forms with
// one code path.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	expr := p.parseExpr()
	if p.cur.Kind != token.Assign {
		return &ast.ExprStmt{X: expr}
	}
	switch lhs := expr.(type) {
	case *ast.Ident:
		p.next()
		rhs := p.parseExpr()
		return &ast.AssignStmt{Lhs: lhs, Rhs: rhs}
	case *ast.InfixExpr:
		if lhs.Op == token.LBracket {
			p.next()
			rhs := p.parseExpr()
			return &ast.AssignStmt{Lhs: lhs, Rhs: rhs}
		}
	}
	p.errf(serrors.InvalidAssign, expr.Pos(), "invalid assignment target")
	p.next()
	return &ast.ExprStmt{X: expr}
}

func (p *Parser) parseGoto() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	return &ast.GotoStmt{GotoPos: pos, Target: p.parseExpr()}
}

func (p *Parser) parseScrape() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	fields := p.parseHashLiteral()
	return &ast.ScrapeStmt{ScrapePos: pos, Fields: fields}
}

func (p *Parser) parseScreenshot() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	path := p.expect(token.Str)
	return &ast.ScreenshotStmt{ShotPos: pos, Path: path.Literal}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	ident := p.parseIdentTok()
	p.expect(token.In)
	iterable := p.parseExpr()
	p.expect(token.Do)
	body := p.parseBlock([]token.Kind{token.End})
	p.expect(token.End)
	return &ast.ForStmt{ForPos: pos, Ident: ident, Iterable: iterable, Body: body}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	cond := p.parseExpr()
	p.expect(token.Do)
	body := p.parseBlock([]token.Kind{token.End})
	p.expect(token.End)
	return &ast.WhileStmt{WhilePos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	cond := p.parseExpr()
	body := p.parseBlock([]token.Kind{token.End, token.Elif, token.Else})
	stmt := &ast.IfStmt{IfPos: pos, If: ast.IfClause{Cond: cond, Body: body}}
	for p.cur.Kind == token.Elif {
		p.next()
		econd := p.parseExpr()
		ebody := p.parseBlock([]token.Kind{token.End, token.Elif, token.Else})
		stmt.Elifs = append(stmt.Elifs, ast.IfClause{Cond: econd, Body: ebody})
	}
	if p.cur.Kind == token.Else {
		p.next()
		stmt.Else = p.parseBlock([]token.Kind{token.End})
	}
	p.expect(token.End)
	return stmt
}

// returnStarters are the tokens that can never begin a return value
// expression, so their presence right after `return` means the statement
// has none.
var returnStarters = map[token.Kind]bool{
	token.End: true, token.Elif: true, token.Else: true, token.Catch: true, token.EOF: true,
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	if returnStarters[p.cur.Kind] {
		return &ast.ReturnStmt{ReturnPos: pos}
	}
	return &ast.ReturnStmt{ReturnPos: pos, Value: p.parseExpr()}
}

func (p *Parser) parseUse() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	return &ast.UseStmt{UsePos: pos, Import: p.parseExpr()}
}

func (p *Parser) parseTry() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	tryBlock := p.parseBlock([]token.Kind{token.Catch, token.End})
	stmt := &ast.TryStmt{TryPos: pos, Try: tryBlock}
	if p.cur.Kind == token.Catch {
		p.next()
		stmt.Catch = p.parseBlock([]token.Kind{token.End})
	}
	p.expect(token.End)
	return stmt
}

func (p *Parser) parseCrawl() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	stmt := &ast.CrawlStmt{CrawlPos: pos}
	if p.cur.Kind == token.Ident && p.peek.Kind == token.Comma {
		link := p.parseIdentTok()
		p.expect(token.Comma)
		depth := p.parseIdentTok()
		stmt.Bindings = &ast.CrawlBindings{Link: link, Depth: depth}
	}
	if p.cur.Kind == token.Where {
		p.next()
		stmt.Filter = p.parseExpr()
	}
	p.expect(token.Do)
	stmt.Body = p.parseBlock([]token.Kind{token.End})
	p.expect(token.End)
	return stmt
}

func (p *Parser) parseFuncStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next()
	name := p.parseIdentTok()
	p.expect(token.LParen)
	var params []ast.FnParam
	seenDefault := false
	for p.cur.Kind != token.RParen && p.cur.Kind != token.EOF {
		pname := p.parseIdentTok()
		var def ast.Expr
		if p.cur.Kind == token.Assign {
			p.next()
			def = p.parseExpr()
			seenDefault = true
		} else if seenDefault {
			p.errf(serrors.DefaultFnParamBefore, pname.Pos(), "parameter %q without a default follows one with a default", pname.Name)
		}
		params = append(params, ast.FnParam{Ident: pname, Default: def})
		if p.cur.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}
	p.expect(token.RParen)
	p.expect(token.Do)
	body := p.parseBlock([]token.Kind{token.End})
	p.expect(token.End)
	return &ast.FuncStmt{Def: &ast.FuncDef{DefPos: pos, Ident: name, Params: params, Body: body}}
}

// ----------------------------------------------------------------------------
// Expressions

func (p *Parser) parseIdentTok() *ast.Ident {
	tok := p.expect(token.Ident)
	return &ast.Ident{NamePos: tok.Pos, Name: tok.Literal}
}

// parseExpr is the top-level expression entry point. Pipe (`|>`) is handled
// here, above parseBinary, rather than folded into the generic infix loop:
// spec §4.C places it "at index level" precedence-wise, but a pipeline's
// right-hand steps need to parse a full binary expression (including their
// own calls) before the parser can tell whether another `|>` follows, so
// treating it as an outermost left-fold is simpler and unambiguous.
func (p *Parser) parseExpr() ast.Expr {
	left := p.parseBinary(token.LowestPrec)
	if p.cur.Kind != token.Pipe {
		return left
	}
	chain := &ast.Chain{Elts: []ast.Expr{left}}
	for p.cur.Kind == token.Pipe {
		p.next()
		chain.Elts = append(chain.Elts, p.parseBinary(token.LowestPrec))
	}
	return chain
}

func (p *Parser) curPrecedence() int {
	if p.cur.Kind == token.Pipe {
		return token.LowestPrec
	}
	return p.cur.Kind.Precedence()
}

// parseBinary implements spec §4.C's precedence table via precedence
// climbing, mirroring cue/parser.parser.parseBinaryExpr(prec1): it loops
// folding in infix operators (including `(` call and `[` index, which bind
// tightest) as long as they bind more tightly than prec.
func (p *Parser) parseBinary(prec int) ast.Expr {
	left := p.parseUnary()
	for prec < p.curPrecedence() {
		switch p.cur.Kind {
		case token.LParen:
			left = p.parseCall(left)
		case token.LBracket:
			left = p.parseIndex(left)
		default:
			left = p.parseInfixOp(left)
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.Bang {
		pos := p.cur.Pos
		p.next()
		return &ast.PrefixExpr{OpPos: pos, Op: token.Bang, Right: p.parseUnary()}
	}
	return p.parsePrefix()
}

func (p *Parser) parseInfixOp(left ast.Expr) ast.Expr {
	op := p.cur.Kind
	opPos := p.cur.Pos
	prec := op.Precedence()
	p.next()
	right := p.parseBinary(prec)
	return &ast.InfixExpr{Lhs: left, Op: op, OpPos: opPos, Rhs: right}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	opPos := p.cur.Pos
	p.next()
	idx := p.parseExpr()
	p.expect(token.RBracket)
	return &ast.InfixExpr{Lhs: left, Op: token.LBracket, OpPos: opPos, Rhs: idx}
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	lparen := p.cur.Pos
	p.next()
	call := &ast.CallExpr{Fn: fn, Lparen: lparen}
	for p.cur.Kind != token.RParen {
		if p.cur.Kind == token.EOF {
			p.errf(serrors.InvalidFnCall, lparen, "unterminated call")
			break
		}
		if p.cur.Kind == token.Ident && p.peek.Kind == token.Colon {
			name := p.parseIdentTok()
			p.expect(token.Colon)
			call.Kwargs = append(call.Kwargs, ast.KwArg{Name: name, Value: p.parseExpr()})
		} else {
			call.Args = append(call.Args, p.parseExpr())
		}
		if p.cur.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}
	call.Rparen = p.cur.Pos
	p.expect(token.RParen)
	return call
}

// parsePrefix dispatches on the current token to one of Scout's prefix
// parselets (spec §4.C: "Prefix parselets map tokens Ident, Int, Float,
// True, False, Str, Null, LBracket, SelectAll, Select, Bang, LBrace to
// literal/constructor parsing").
func (p *Parser) parsePrefix() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.Ident:
		p.next()
		return &ast.Ident{NamePos: tok.Pos, Name: tok.Literal}
	case token.Int, token.Float:
		p.next()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errf(serrors.InvalidNumber, tok.Pos, "invalid number literal %q", tok.Literal)
		}
		return &ast.NumberLit{ValuePos: tok.Pos, Value: v}
	case token.Str:
		p.next()
		return &ast.StringLit{ValuePos: tok.Pos, Value: tok.Literal}
	case token.True, token.False:
		p.next()
		return &ast.BooleanLit{ValuePos: tok.Pos, Value: tok.Kind == token.True}
	case token.Null:
		p.next()
		return &ast.NullLit{ValuePos: tok.Pos}
	case token.LBracket:
		return p.parseListLit()
	case token.LBrace:
		return p.parseHashLiteral()
	case token.Select:
		return p.parseSelect(false)
	case token.SelectAll:
		return p.parseSelect(true)
	case token.LParen:
		p.next()
		inner := p.parseExpr()
		p.expect(token.RParen)
		return inner
	default:
		p.errf(serrors.UnknownPrefix, tok.Pos, "no prefix parse rule for %s", tok.Kind)
		p.next()
		return &ast.NullLit{ValuePos: tok.Pos}
	}
}

func (p *Parser) parseListLit() ast.Expr {
	lbrack := p.cur.Pos
	p.next()
	lit := &ast.ListLit{Lbrack: lbrack}
	for p.cur.Kind != token.RBracket && p.cur.Kind != token.EOF {
		lit.Elts = append(lit.Elts, p.parseExpr())
		if p.cur.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}
	lit.Rbrack = p.cur.Pos
	p.expect(token.RBracket)
	return lit
}

func (p *Parser) parseHashLiteral() *ast.HashLiteral {
	lbrace := p.expect(token.LBrace)
	h := &ast.HashLiteral{Lbrace: lbrace.Pos}
	for p.cur.Kind != token.RBrace && p.cur.Kind != token.EOF {
		key := p.parseIdentTok()
		p.expect(token.Colon)
		value := p.parseExpr()
		h.Entries = append(h.Entries, ast.HashEntry{Key: key, Value: value})
		if p.cur.Kind == token.Comma {
			p.next()
			continue
		}
		break
	}
	h.Rbrace = p.cur.Pos
	p.expect(token.RBrace)
	return h
}

// parseSelect parses `$"css"` / `$$"css"`, with an optional `in <ident>`
// scope clause naming the Node to query against.
//
// spec §3 gives Select/SelectAll an optional Ident scope but, unusually,
// never states its surface syntax. Reusing the `in` keyword already
// reserved for `for`-loops reads naturally ($"a.b" in node) and needs no
// new reserved word; this choice is recorded in DESIGN.md's Open-question
// decisions.
func (p *Parser) parseSelect(all bool) ast.Expr {
	tok := p.cur
	p.next()
	var scope *ast.Ident
	if p.cur.Kind == token.In {
		p.next()
		scope = p.parseIdentTok()
	}
	if all {
		return &ast.SelectAll{TokPos: tok.Pos, Css: tok.Literal, Scope: scope}
	}
	return &ast.Select{TokPos: tok.Pos, Css: tok.Literal, Scope: scope}
}
