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

package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders n back to Scout source text. It exists so that the parser
// round-trip property (spec §8: "printed form re-parses to an equivalent
// AST") is checkable without a separate formatter package — Scout's
// Non-goals explicitly exclude source-map-grade formatting, so this stays a
// direct, unindented renderer rather than a full pretty-printer.
func Print(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Ident:
		b.WriteString(v.Name)
	case *StringLit:
		b.WriteByte('"')
		b.WriteString(v.Value)
		b.WriteByte('"')
	case *NumberLit:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *BooleanLit:
		fmt.Fprintf(b, "%t", v.Value)
	case *NullLit:
		b.WriteString("null")
	case *ListLit:
		b.WriteByte('[')
		for i, e := range v.Elts {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, e)
		}
		b.WriteByte(']')
	case *HashLiteral:
		b.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Key.Name)
			b.WriteString(": ")
			writeNode(b, e.Value)
		}
		b.WriteByte('}')
	case *Select:
		writeSelect(b, "$", v.Css, v.Scope)
	case *SelectAll:
		writeSelect(b, "$$", v.Css, v.Scope)
	case *CallExpr:
		writeNode(b, v.Fn)
		b.WriteByte('(')
		first := true
		for _, a := range v.Args {
			if !first {
				b.WriteString(", ")
			}
			writeNode(b, a)
			first = false
		}
		for _, kw := range v.Kwargs {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(kw.Name.Name)
			b.WriteString(": ")
			writeNode(b, kw.Value)
			first = false
		}
		b.WriteByte(')')
	case *Chain:
		for i, e := range v.Elts {
			if i > 0 {
				b.WriteString(" |> ")
			}
			writeNode(b, e)
		}
	case *InfixExpr:
		if v.Op.String() == "[" {
			writeNode(b, v.Lhs)
			b.WriteByte('[')
			writeNode(b, v.Rhs)
			b.WriteByte(']')
			return
		}
		writeNode(b, v.Lhs)
		b.WriteByte(' ')
		b.WriteString(v.Op.String())
		b.WriteByte(' ')
		writeNode(b, v.Rhs)
	case *PrefixExpr:
		b.WriteString(v.Op.String())
		writeNode(b, v.Right)
	case *Block:
		for i, s := range v.Stmts {
			if i > 0 {
				b.WriteByte('\n')
			}
			writeNode(b, s)
		}
	case *GotoStmt:
		b.WriteString("goto ")
		writeNode(b, v.Target)
	case *ScrapeStmt:
		b.WriteString("scrape ")
		writeNode(b, v.Fields)
	case *ScreenshotStmt:
		fmt.Fprintf(b, "screenshot %q", v.Path)
	case *ExprStmt:
		writeNode(b, v.X)
	case *ForStmt:
		b.WriteString("for ")
		b.WriteString(v.Ident.Name)
		b.WriteString(" in ")
		writeNode(b, v.Iterable)
		b.WriteString(" do\n")
		writeNode(b, v.Body)
		b.WriteString("\nend")
	case *WhileStmt:
		b.WriteString("while ")
		writeNode(b, v.Cond)
		b.WriteString(" do\n")
		writeNode(b, v.Body)
		b.WriteString("\nend")
	case *IfStmt:
		b.WriteString("if ")
		writeNode(b, v.If.Cond)
		b.WriteByte('\n')
		writeNode(b, v.If.Body)
		for _, e := range v.Elifs {
			b.WriteString("\nelif ")
			writeNode(b, e.Cond)
			b.WriteByte('\n')
			writeNode(b, e.Body)
		}
		if v.Else != nil {
			b.WriteString("\nelse\n")
			writeNode(b, v.Else)
		}
		b.WriteString("\nend")
	case *AssignStmt:
		writeNode(b, v.Lhs)
		b.WriteString(" = ")
		writeNode(b, v.Rhs)
	case *FuncStmt:
		writeFuncDef(b, v.Def)
	case *ReturnStmt:
		b.WriteString("return")
		if v.Value != nil {
			b.WriteByte(' ')
			writeNode(b, v.Value)
		}
	case *UseStmt:
		b.WriteString("use ")
		writeNode(b, v.Import)
	case *TryStmt:
		b.WriteString("try\n")
		writeNode(b, v.Try)
		if v.Catch != nil {
			b.WriteString("\ncatch\n")
			writeNode(b, v.Catch)
		}
		b.WriteString("\nend")
	case *CrawlStmt:
		b.WriteString("crawl ")
		if v.Bindings != nil {
			b.WriteString(v.Bindings.Link.Name)
			b.WriteString(", ")
			b.WriteString(v.Bindings.Depth.Name)
			b.WriteByte(' ')
		}
		if v.Filter != nil {
			b.WriteString("where ")
			writeNode(b, v.Filter)
			b.WriteByte(' ')
		}
		b.WriteString("do\n")
		writeNode(b, v.Body)
		b.WriteString("\nend")
	default:
		fmt.Fprintf(b, "<?%T>", n)
	}
}

func writeSelect(b *strings.Builder, prefix, css string, scope *Ident) {
	b.WriteString(prefix)
	b.WriteByte('"')
	b.WriteString(css)
	b.WriteByte('"')
	if scope != nil {
		b.WriteString(" in ")
		b.WriteString(scope.Name)
	}
}

func writeFuncDef(b *strings.Builder, f *FuncDef) {
	b.WriteString("def ")
	b.WriteString(f.Ident.Name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Ident.Name)
		if p.Default != nil {
			b.WriteByte('=')
			writeNode(b, p.Default)
		}
	}
	b.WriteString(") do\n")
	writeNode(b, f.Body)
	b.WriteString("\nend")
}
