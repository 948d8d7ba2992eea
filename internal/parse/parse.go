// Package parse is the table-driven LR parser runtime: the pushdown
// automaton of spec.md §4.4, consuming a parsetab.Table and a lex.Lexer and
// producing a cst.Node tree. Grounded on the teacher's
// internal/ictiobus/parse/lr.go Parse method (Algorithm 4.44, "LR-parsing
// algorithm", purple dragon book), adapted to this package's int-indexed
// Table instead of a string-keyed LRParseTable interface.
package parse

import (
	"github.com/mseida/lr1vm/internal/cst"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/lex"
	"github.com/mseida/lr1vm/internal/parsetab"
	"github.com/mseida/lr1vm/internal/util"
)

// TokenSource yields the token stream a Driver consumes. *lex.Lexer
// satisfies it.
type TokenSource interface {
	Next() (lex.Token, error)
}

// Driver runs the stack-automaton loop of spec.md §4.4 against a single
// Table/grammar pair. g must be the same (augmented) grammar the Table was
// built from, e.g. automaton.Collection.Grammar().
type Driver struct {
	Table *parsetab.Table
	G     *grammar.CFG
}

// New returns a ready-to-use Driver.
func New(t *parsetab.Table, g *grammar.CFG) *Driver {
	return &Driver{Table: t, G: g}
}

// Parse consumes src to exhaustion (or error) and returns the CST rooted at
// the grammar's start symbol.
func (d *Driver) Parse(src TokenSource) (*cst.Node, error) {
	t := d.Table

	stateStack := util.Stack[int]{Of: []int{t.Start}}
	nodeStack := util.Stack[*cst.Node]{}

	tok, err := src.Next()
	if err != nil {
		return nil, err
	}

	for {
		s := stateStack.Peek()

		termIdx, ok := t.TermIndex[tok.Class]
		if !ok {
			return nil, icterr.Parsef(tok.Line, "unexpected token %s: not a recognized terminal", tok)
		}

		shift := t.Shift[s][termIdx]
		reduce := t.Reduce[s][termIdx]

		switch {
		case shift == parsetab.ErrState && reduce == parsetab.ErrState:
			return nil, icterr.Parsef(tok.Line, "unexpected token %s in state %d: no shift or reduce action defined", tok, s)

		case shift != parsetab.ErrState && reduce != parsetab.ErrState:
			return nil, icterr.Parsef(tok.Line, "internal error: both shift and reduce defined for state %d on %s (should have been resolved at table-build time)", s, tok)

		case reduce == parsetab.Accept:
			if nodeStack.Empty() {
				return nil, icterr.Parsef(tok.Line, "parse stack underflow on accept")
			}
			return nodeStack.Pop(), nil

		case reduce != parsetab.ErrState:
			ruleNum := reduce
			ref, ok := d.G.RuleAt(ruleNum)
			if !ok {
				return nil, icterr.Parsef(tok.Line, "unknown rule number %d referenced by reduce table", ruleNum)
			}
			rhsLen := t.RHSLen[ruleNum]
			if nodeStack.Len() < rhsLen || stateStack.Len() <= rhsLen {
				return nil, icterr.Parsef(tok.Line, "parse stack underflow reducing rule %d", ruleNum)
			}

			children := make([]*cst.Node, rhsLen)
			for i := rhsLen - 1; i >= 0; i-- {
				children[i] = nodeStack.Pop()
				stateStack.Pop()
			}

			node := &cst.Node{
				Symbol:     ref.NonTerminal,
				RuleNumber: ruleNum,
				SemRule:    ref.SemRule,
				Children:   children,
			}
			nodeStack.Push(node)

			top := stateStack.Peek()
			ntIdx, ok := t.NonTermIndex[ref.NonTerminal]
			if !ok {
				return nil, icterr.Parsef(tok.Line, "unknown nonterminal %q produced by reduce", ref.NonTerminal)
			}
			next := t.Jump[top][ntIdx]
			if next == parsetab.ErrState {
				return nil, icterr.Parsef(tok.Line, "no goto entry for state %d on nonterminal %q", top, ref.NonTerminal)
			}
			stateStack.Push(next)

		default: // shift
			leaf := &cst.Node{Symbol: tok.Class, Terminal: true, Token: tok}
			nodeStack.Push(leaf)
			stateStack.Push(shift)

			tok, err = src.Next()
			if err != nil {
				return nil, err
			}
		}
	}
}
