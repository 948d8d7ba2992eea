// Package cst is the concrete syntax tree produced by internal/parse: one
// node per grammar symbol on the parse stack at reduce time, still carrying
// DELEGATE nodes for unit productions. internal/ast lowers this into the
// typed AST.
package cst

import (
	"fmt"
	"strings"

	"github.com/mseida/lr1vm/internal/lex"
)

// Node is a single CST node: a terminal leaf carries its source token; a
// nonterminal carries the rule number it was reduced by and its children in
// left-to-right rhs order.
type Node struct {
	Symbol     string
	Terminal   bool
	Token      lex.Token
	RuleNumber int
	SemRule    int
	Children   []*Node
}

// Delegate reports whether n is a unit-production passthrough: a
// nonterminal reduced from a single nonterminal child with no semantic rule
// bound, the kind removed by CST→AST lowering (spec.md §4.4 "CST → AST").
func (n *Node) Delegate() bool {
	return !n.Terminal && n.SemRule < 0 && len(n.Children) == 1 && !n.Children[0].Terminal
}

// String renders the tree as indented text, one symbol per line.
func (n *Node) String() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if n.Terminal {
		fmt.Fprintf(sb, "%s(%q)\n", n.Symbol, n.Token.Lexeme)
	} else {
		fmt.Fprintf(sb, "%s [rule %d]\n", n.Symbol, n.RuleNumber)
	}
	for _, c := range n.Children {
		c.dump(sb, depth+1)
	}
}
