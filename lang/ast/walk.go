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

// Visitor's Visit method is invoked for every node encountered by Walk. If
// the returned Visitor is non-nil, Walk visits each of the node's children
// with that visitor; a nil Node argument signals that a node's children
// have all been visited (mirrors cuelang.org/go/cue/ast.Visitor).
type Visitor interface {
	Visit(node Node) Visitor
}

// Walk traverses the tree rooted at node in source order, calling
// v.Visit(n) for every Node it enters and v.Visit(nil) once its children
// have all been visited. It panics on an unrecognized node type, since
// that can only mean the walker itself fell out of sync with the ast
// package.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	v2 := v.Visit(node)
	if v2 == nil {
		return
	}
	walkChildren(v2, node)
	v2.Visit(nil)
}

func walkChildren(v Visitor, node Node) {
	switch n := node.(type) {
	case *Ident, *StringLit, *NumberLit, *BooleanLit, *NullLit, *ScreenshotStmt:
		// leaf nodes

	case *ListLit:
		for _, e := range n.Elts {
			Walk(v, e)
		}
	case *HashLiteral:
		for _, e := range n.Entries {
			Walk(v, e.Key)
			Walk(v, e.Value)
		}
	case *Select:
		if n.Scope != nil {
			Walk(v, n.Scope)
		}
	case *SelectAll:
		if n.Scope != nil {
			Walk(v, n.Scope)
		}
	case *CallExpr:
		Walk(v, n.Fn)
		for _, a := range n.Args {
			Walk(v, a)
		}
		for _, kw := range n.Kwargs {
			Walk(v, kw.Name)
			Walk(v, kw.Value)
		}
	case *Chain:
		for _, e := range n.Elts {
			Walk(v, e)
		}
	case *InfixExpr:
		Walk(v, n.Lhs)
		Walk(v, n.Rhs)
	case *PrefixExpr:
		Walk(v, n.Right)
	case *FuncDef:
		Walk(v, n.Ident)
		for _, p := range n.Params {
			Walk(v, p.Ident)
			if p.Default != nil {
				Walk(v, p.Default)
			}
		}
		Walk(v, n.Body)

	case *Block:
		for _, s := range n.Stmts {
			Walk(v, s)
		}
	case *GotoStmt:
		Walk(v, n.Target)
	case *ScrapeStmt:
		Walk(v, n.Fields)
	case *ExprStmt:
		Walk(v, n.X)
	case *ForStmt:
		Walk(v, n.Ident)
		Walk(v, n.Iterable)
		Walk(v, n.Body)
	case *WhileStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *IfStmt:
		Walk(v, n.If.Cond)
		Walk(v, n.If.Body)
		for _, e := range n.Elifs {
			Walk(v, e.Cond)
			Walk(v, e.Body)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *AssignStmt:
		Walk(v, n.Lhs)
		Walk(v, n.Rhs)
	case *FuncStmt:
		Walk(v, n.Def)
	case *ReturnStmt:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *UseStmt:
		Walk(v, n.Import)
	case *TryStmt:
		Walk(v, n.Try)
		if n.Catch != nil {
			Walk(v, n.Catch)
		}
	case *CrawlStmt:
		if n.Bindings != nil {
			Walk(v, n.Bindings.Link)
			Walk(v, n.Bindings.Depth)
		}
		if n.Filter != nil {
			Walk(v, n.Filter)
		}
		Walk(v, n.Body)

	default:
		panic("ast.Walk: unknown node type")
	}
}

// inspector adapts a plain func(Node) bool to the Visitor interface, as
// cuelang.org/go/cue/ast.Inspect does for CUE nodes.
type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node == nil {
		return nil
	}
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at node, calling f for each node. If f
// returns false, Inspect does not recurse into that node's children.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
