package parsetab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/grammar"
)

// danglingElseGrammar is a minimal dangling-else grammar, grounded on the
// original implementation's tests/conflicts.cpp fixture: one shift/reduce
// conflict at "if ( E ) S . else", resolvable only by an explicit resolver
// (operator precedence does not apply, since "if"/"else" carry none).
func danglingElseGrammar() *grammar.CFG {
	g := grammar.NewCFG()
	g.AddTerm("if", "'if'")
	g.AddTerm("else", "'else'")
	g.AddTerm("(", "'('")
	g.AddTerm(")", "')'")
	g.AddTerm("E", "expr")
	g.AddTerm("other", "other-stmt")
	g.AddRule("S", []grammar.Production{
		{"if", "(", "E", ")", "S"},
		{"if", "(", "E", ")", "S", "else", "S"},
		{"other"},
	})
	g.SetStart("S")
	return g
}

func TestBuildWithoutResolverFailsOnDanglingElse(t *testing.T) {
	assert := assert.New(t)
	c := automaton.BuildCanonicalLR1(danglingElseGrammar())
	_, err := Build(c, nil)
	assert.Error(err, "dangling-else ambiguity must surface as a conflict without an explicit resolver")
}

func TestResolverForcesShiftForDanglingElse(t *testing.T) {
	assert := assert.New(t)
	c := automaton.BuildCanonicalLR1(danglingElseGrammar())
	resolvers := []ResolverRule{{Key: "S", Lookahead: "else", Action: ForceShift}}
	tbl, err := Build(c, resolvers)
	assert.NoError(err)
	assert.NotNil(tbl)
}
