package parsergen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/lex"
	"github.com/mseida/lr1vm/internal/parse"
	"github.com/mseida/lr1vm/internal/parsetab"
)

func buildSampleTable(t *testing.T) (*grammar.CFG, *parsetab.Table) {
	t.Helper()
	g := grammar.Sample()
	collection := automaton.CollapseLALR1(automaton.BuildCanonicalLR1(g))
	resolvers := make([]parsetab.ResolverRule, 0, len(grammar.DefaultResolvers()))
	for _, r := range grammar.DefaultResolvers() {
		action := parsetab.ForceShift
		if !r.ForceShift {
			action = parsetab.ForceReduce
		}
		resolvers = append(resolvers, parsetab.ResolverRule{Key: r.Key, Lookahead: r.Lookahead, Action: action})
	}
	table, err := parsetab.Build(collection, resolvers)
	if err != nil {
		t.Fatalf("parsetab.Build: %v", err)
	}
	return g, table
}

// TestRecursiveAscentMatchesTableDrivenCST pins spec.md §4.5's recursive
// ascent engine against §4.4's table-driven automaton: given the same
// table and the same input, both must produce an identical CST (not just
// an identical final VM value, which internal/compile's end-to-end tests
// already cover).
func TestRecursiveAscentMatchesTableDrivenCST(t *testing.T) {
	assert := assert.New(t)
	g, table := buildSampleTable(t)

	sources := []string{
		"(2*3 + (5+4) * (1+2)) * 5+12;",
		"1+2+3+4+5;",
		"2^3^2;",
		"func sq(x) { return x*x; } sq(7);",
		"a = 0; loop(a < 5) { a = a + 1; } a;",
		"if (3 > 2) { 1; } else { 0; }",
		"if(1>0){if(0>1){2;}else{1;}}",
		"extern double; double(21);",
		"break 1;",
	}

	for _, src := range sources {
		tableTree, err := parse.New(table, g).Parse(lex.New(src))
		assert.NoError(err, src)

		recTree, err := New(table, g).Parse(lex.New(src))
		assert.NoError(err, src)

		assert.Equal(tableTree.String(), recTree.String(), "CST mismatch for %q", src)
	}
}

func TestRecursiveAscentReportsUndefinedActionError(t *testing.T) {
	assert := assert.New(t)
	g, table := buildSampleTable(t)
	_, err := New(table, g).Parse(lex.New("1 + ;"))
	assert.Error(err)
}
