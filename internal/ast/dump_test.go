package ast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/lex"
)

func TestDumpRendersBinaryTreeIndented(t *testing.T) {
	assert := assert.New(t)
	left := &Node{Kind: KindToken, Type: ValueType{Kind: Int}, Token: &TokenNode{Tok: lex.Token{Class: lex.TokInt, Lexeme: "1"}}}
	right := &Node{Kind: KindToken, Type: ValueType{Kind: Int}, Token: &TokenNode{Tok: lex.Token{Class: lex.TokInt, Lexeme: "2"}}}
	sum := &Node{Kind: KindBinary, Type: ValueType{Kind: Int}, Binary: &BinaryNode{Op: "+", Left: left, Right: right}}

	out := sum.Dump()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(lines, 3)
	assert.Contains(lines[0], "Binary(+)")
	assert.True(strings.HasPrefix(lines[1], "  "), "children are indented one level deeper")
	assert.True(strings.HasPrefix(lines[2], "  "))
}

func TestDumpHandlesNilNode(t *testing.T) {
	assert := assert.New(t)
	var n *Node
	assert.Equal("<nil>\n", n.Dump())
}
