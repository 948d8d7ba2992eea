package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func exprGrammar() *CFG {
	g := NewCFG()
	g.AddTerm("+", "'+'")
	g.AddTerm("*", "'*'")
	g.AddTerm("(", "'('")
	g.AddTerm(")", "')'")
	g.AddTerm("id", "identifier")
	g.AddRule("E", []Production{{"E", "+", "T"}, {"T"}})
	g.AddRule("T", []Production{{"T", "*", "F"}, {"F"}})
	g.AddRule("F", []Production{{"(", "E", ")"}, {"id"}})
	g.SetStart("E")
	return g
}

func TestFIRSTOfTerminal(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	first := g.FIRST("id")
	assert.Equal([]string{"id"}, first.Elements())
}

func TestFIRSTOfNonTerminal(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	first := g.FIRST("E")
	assert.ElementsMatch([]string{"(", "id"}, first.Elements())
}

func TestFOLLOWOfStartIncludesEndOfInput(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	follow := g.FOLLOW("E")
	assert.Contains(follow.Elements(), EndOfInput)
	assert.Contains(follow.Elements(), ")")
}

func TestFOLLOWPropagatesThroughRecursiveRule(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	// T is followed by "*" inside "T -> T * F" and, at the end of "E -> E
	// + T" / "E -> T", by everything in FOLLOW(E).
	follow := g.FOLLOW("T")
	assert.ElementsMatch([]string{"+", "*", ")", EndOfInput}, follow.Elements())
}

func TestAugmentedAddsFreshStartSymbol(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	aug := g.Augmented()
	assert.NotEqual(g.StartSymbol(), aug.StartSymbol())
	rule := aug.Rule(aug.StartSymbol())
	assert.Len(rule.Productions, 1)
	assert.Equal(Production{"E"}, rule.Productions[0])
}

func TestRuleNumbersAreDenseAndResolvable(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	assert.Equal(6, g.RuleCount())
	for n := 0; n < g.RuleCount(); n++ {
		_, ok := g.RuleAt(n)
		assert.True(ok, "rule number %d should resolve", n)
	}
	_, ok := g.RuleAt(g.RuleCount())
	assert.False(ok)
}

func TestValidateRejectsUndefinedStart(t *testing.T) {
	assert := assert.New(t)
	g := NewCFG()
	g.AddTerm("a", "'a'")
	g.AddRule("S", []Production{{"a"}})
	// AddRule makes the first rule's lhs the start symbol; clear it so the
	// start symbol is undefined.
	g.SetStart("")
	err := g.Validate()
	assert.Error(err)
}

func TestValidateAcceptsWellFormedGrammar(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar()
	assert.NoError(g.Validate())
}

func TestAddTermPrecRecordsPrecedenceAndAssociativity(t *testing.T) {
	assert := assert.New(t)
	g := NewCFG()
	plus := g.AddTermPrec("+", "'+'", 1, AssocLeft)
	assert.True(plus.HasPrecedence())
	assert.Equal(1, plus.Precedence)
	assert.Equal(AssocLeft, plus.Assoc)
}

func TestAddTermWithoutPrecHasNoPrecedence(t *testing.T) {
	assert := assert.New(t)
	g := NewCFG()
	id := g.AddTerm("id", "identifier")
	assert.False(id.HasPrecedence())
	assert.Equal(NoPrecedence, id.Precedence)
}

func TestSetRulePrecedenceOverridesDefaultTerminal(t *testing.T) {
	assert := assert.New(t)
	g := NewCFG()
	g.AddTerm("-", "'-'")
	g.AddTerm("id", "identifier")
	g.AddRule("E", []Production{{"-", "E"}, {"id"}})
	g.SetStart("E")

	assert.Equal("", g.RulePrecedenceOverride("E", 0))
	g.SetRulePrecedence("E", 0, "UMINUS")
	assert.Equal("UMINUS", g.RulePrecedenceOverride("E", 0))
}

func TestAssocStringFormatsEachValue(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("none", AssocNone.String())
	assert.Equal("left", AssocLeft.String())
	assert.Equal("right", AssocRight.String())
}
