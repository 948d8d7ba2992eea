package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/cst"
	"github.com/mseida/lr1vm/internal/lex"
)

func TestRemoveDelegatesCollapsesUnitProduction(t *testing.T) {
	assert := assert.New(t)
	leaf := &cst.Node{Symbol: "int", Terminal: true, Token: lex.Token{Class: lex.TokInt, IntVal: 3}}
	literal := &cst.Node{Symbol: "expr", SemRule: SemLiteralInt, Children: []*cst.Node{leaf}}
	delegate := &cst.Node{Symbol: "stmt", SemRule: -1, Children: []*cst.Node{literal}}

	out := RemoveDelegates(delegate)
	assert.Same(literal, out, "a unit production with no bound semantic rule should be replaced by its child")
}

func TestRemoveDelegatesLeavesBoundProductionsAlone(t *testing.T) {
	assert := assert.New(t)
	leaf := &cst.Node{Symbol: "int", Terminal: true, Token: lex.Token{Class: lex.TokInt, IntVal: 3}}
	literal := &cst.Node{Symbol: "expr", SemRule: SemLiteralInt, Children: []*cst.Node{leaf}}

	out := RemoveDelegates(literal)
	assert.Same(literal, out)
}

func TestLowerIntLiteral(t *testing.T) {
	assert := assert.New(t)
	leaf := &cst.Node{Symbol: "int", Terminal: true, Token: lex.Token{Class: lex.TokInt, IntVal: 42, Line: 1}}
	literal := &cst.Node{Symbol: "expr", SemRule: SemLiteralInt, Children: []*cst.Node{leaf}}

	lw := NewLowerer()
	node, err := lw.Lower(literal)
	assert.NoError(err)
	assert.Equal(KindToken, node.Kind)
	assert.Equal(ValueType{Kind: Int}, node.Type)
	assert.Equal(int64(42), node.Token.Tok.IntVal)
}

func TestLowerBinaryOpDerivesResultType(t *testing.T) {
	assert := assert.New(t)
	left := &cst.Node{Symbol: "expr", SemRule: SemLiteralInt, Children: []*cst.Node{
		{Symbol: "int", Terminal: true, Token: lex.Token{Class: lex.TokInt, IntVal: 1}},
	}}
	opTok := &cst.Node{Symbol: "+", Terminal: true, Token: lex.Token{Class: "+"}}
	right := &cst.Node{Symbol: "expr", SemRule: SemLiteralReal, Children: []*cst.Node{
		{Symbol: "real", Terminal: true, Token: lex.Token{Class: lex.TokReal, RealVal: 2.5}},
	}}
	bin := &cst.Node{Symbol: "expr", SemRule: SemBinaryOp, Children: []*cst.Node{left, opTok, right}}

	lw := NewLowerer()
	node, err := lw.Lower(bin)
	assert.NoError(err)
	assert.Equal(KindBinary, node.Kind)
	assert.Equal("+", node.Binary.Op)
	assert.Equal(ValueType{Kind: Real}, node.Type, "int+real promotes to real")
}

func TestLowerUnknownSemRuleErrors(t *testing.T) {
	assert := assert.New(t)
	bogus := &cst.Node{Symbol: "mystery", SemRule: 99999}
	lw := NewLowerer()
	_, err := lw.Lower(bogus)
	assert.Error(err)
}
