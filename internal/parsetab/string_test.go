package parsetab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mseida/lr1vm/internal/automaton"
)

func TestTableStringRendersOneRowPerState(t *testing.T) {
	assert := assert.New(t)
	c := automaton.CollapseLALR1(automaton.BuildCanonicalLR1(exprGrammar()))
	tbl, err := Build(c, nil)
	assert.NoError(err)

	out := tbl.String()
	assert.Contains(out, "id")
	assert.NotEmpty(out)
}
