package parsetab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/grammar"
)

func exprGrammar() *grammar.CFG {
	g := grammar.NewCFG()
	g.AddTerm("+", "'+'")
	g.AddTerm("*", "'*'")
	g.AddTerm("(", "'('")
	g.AddTerm(")", "')'")
	g.AddTerm("id", "identifier")
	g.AddRule("E", []grammar.Production{{"E", "+", "T"}, {"T"}})
	g.AddRule("T", []grammar.Production{{"T", "*", "F"}, {"F"}})
	g.AddRule("F", []grammar.Production{{"(", "E", ")"}, {"id"}})
	g.SetStart("E")
	return g
}

func TestBuildProducesAcceptOnStartState(t *testing.T) {
	assert := assert.New(t)
	c := automaton.CollapseLALR1(automaton.BuildCanonicalLR1(exprGrammar()))
	tbl, err := Build(c, nil)
	assert.NoError(err)
	assert.Equal(c.NumStates(), tbl.NumStates)
	assert.NotContains(tbl.TermIndex, "")

	afterE := tbl.Jump[tbl.Start][tbl.NonTermIndex["E"]]
	assert.Equal(Accept, tbl.Reduce[afterE][tbl.TermIndex[grammar.EndOfInput]])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)
	c := automaton.CollapseLALR1(automaton.BuildCanonicalLR1(exprGrammar()))
	tbl, err := Build(c, nil)
	assert.NoError(err)

	data, err := Save(tbl)
	assert.NoError(err)

	loaded, err := Load(data)
	assert.NoError(err)

	assert.Equal(tbl.NumStates, loaded.NumStates)
	assert.Equal(tbl.Terminals, loaded.Terminals)
	assert.Equal(tbl.NonTerminals, loaded.NonTerminals)
	assert.Equal(tbl.RHSLen, loaded.RHSLen)
	assert.Equal(tbl.Start, loaded.Start)
	assert.Equal(tbl.Shift, loaded.Shift)
	assert.Equal(tbl.Reduce, loaded.Reduce)
	assert.Equal(tbl.Jump, loaded.Jump)
}

func TestLoadRejectsIncompatibleSentinels(t *testing.T) {
	assert := assert.New(t)
	_, err := Load([]byte("err_sentinel = 0\naccept_sentinel = 0\n"))
	assert.Error(err)
}
