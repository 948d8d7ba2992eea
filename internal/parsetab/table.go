// Package parsetab walks a canonical LR(1)/LALR(1)/SLR(1) automaton
// (internal/automaton) and emits the three parse tables described in
// spec.md §3 "Parse tables" and §4.3 "Table emission and conflict
// resolution": shift, reduce, and jump, indexed by dense state id and
// symbol-table index, plus the terminal/nonterminal index maps and the
// rhs-length vector.
package parsetab

import (
	"sort"

	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/icterr"
)

// ErrState is the sentinel value meaning "no action defined" in any table
// cell.
const ErrState = -1

// Accept is the sentinel value meaning "accept" in the reduce table.
const Accept = -2

// Table holds the three 2-D tables plus the supporting index maps required
// to use them, exactly as spec.md §3 describes.
type Table struct {
	NumStates    int
	Terminals    []string // index == TermIndex[id]
	NonTerminals []string // index == NonTermIndex[id]
	TermIndex    map[string]int
	NonTermIndex map[string]int
	RHSLen       []int // RHSLen[ruleNumber] = len(rhs) excluding epsilon

	Shift  [][]int // [state][termIdx] -> state or ErrState
	Reduce [][]int // [state][termIdx] -> rule number, Accept, or ErrState
	Jump   [][]int // [state][ntIdx] -> state or ErrState

	Start int
}

func newTable(c *automaton.Collection) *Table {
	g := c.Grammar()
	terms := g.Terminals()
	terms = append(terms, grammar.EndOfInput)
	nts := g.NonTerminals()

	t := &Table{
		NumStates:    c.NumStates(),
		Terminals:    terms,
		NonTerminals: nts,
		TermIndex:    map[string]int{},
		NonTermIndex: map[string]int{},
		RHSLen:       make([]int, g.RuleCount()),
		Start:        int(c.Start),
	}
	for i, id := range terms {
		t.TermIndex[id] = i
	}
	for i, id := range nts {
		t.NonTermIndex[id] = i
	}
	for n := 0; n < g.RuleCount(); n++ {
		ref, _ := g.RuleAt(n)
		t.RHSLen[n] = grammar.RHSLength(ref.Production)
	}

	t.Shift = make([][]int, t.NumStates)
	t.Reduce = make([][]int, t.NumStates)
	t.Jump = make([][]int, t.NumStates)
	for s := 0; s < t.NumStates; s++ {
		t.Shift[s] = fillInt(len(terms), ErrState)
		t.Reduce[s] = fillInt(len(terms), ErrState)
		t.Jump[s] = fillInt(len(nts), ErrState)
	}
	return t
}

func fillInt(n, v int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// reduceCandidate is a pending reduce action attached to one (state,
// lookahead) cell before conflict resolution runs.
type reduceCandidate struct {
	item       grammar.Item
	ruleNumber int
	accept     bool
}

// Build walks every transition and every end-of-production item in c and
// populates a Table, resolving shift/reduce conflicts per spec.md §4.3.
// Reduce/reduce conflicts (two reduce candidates for the same cell) are
// always fatal, as are shift/reduce conflicts that neither the resolver list
// nor operator precedence can settle.
func Build(c *automaton.Collection, resolvers []ResolverRule) (*Table, error) {
	g := c.Grammar()
	t := newTable(c)

	// shift and jump columns come directly from the transition relation.
	for _, tr := range c.AllTransitions() {
		if g.IsTerminal(tr.Sym) {
			t.Shift[tr.From][t.TermIndex[tr.Sym]] = int(tr.To)
		} else {
			t.Jump[tr.From][t.NonTermIndex[tr.Sym]] = int(tr.To)
		}
	}

	// collect reduce candidates per (state, lookahead) before resolving
	// anything, so reduce/reduce conflicts are caught up front.
	reduceCandidates := make([]map[string][]reduceCandidate, t.NumStates)
	for s := range reduceCandidates {
		reduceCandidates[s] = map[string][]reduceCandidate{}
	}

	for _, sv := range statesInOrder(c) {
		cl := c.Get(sv)
		for _, it := range itemsSorted(cl) {
			if !it.AtEnd() {
				continue
			}
			isAugmentedStart := it.NonTerminal == g.StartSymbol() && it.RuleIndex == 0
			for _, la := range it.SortedLookaheads() {
				if isAugmentedStart && la == grammar.EndOfInput {
					reduceCandidates[sv][la] = append(reduceCandidates[sv][la], reduceCandidate{item: it, accept: true})
					continue
				}
				ruleNum := g.RuleNumber(it.NonTerminal, it.RuleIndex)
				reduceCandidates[sv][la] = append(reduceCandidates[sv][la], reduceCandidate{item: it, ruleNumber: ruleNum})
			}
		}
	}

	for s := 0; s < t.NumStates; s++ {
		for la, cands := range reduceCandidates[s] {
			if len(cands) > 1 {
				return nil, icterr.Conflictf("reduce/reduce conflict in state %d on lookahead %q between rules %s", s, la, candidateRuleList(cands))
			}
			cand := cands[0]
			termIdx := t.TermIndex[la]
			shiftTarget := t.Shift[s][termIdx]

			if shiftTarget == ErrState {
				if cand.accept {
					t.Reduce[s][termIdx] = Accept
				} else {
					t.Reduce[s][termIdx] = cand.ruleNumber
				}
				continue
			}

			// shift/reduce conflict: resolve.
			action, err := resolve(g, c, resolvers, automaton.StateID(s), la, cand, shiftTarget)
			if err != nil {
				return nil, err
			}
			switch action {
			case actionForceShift:
				// shift entry already populated; leave reduce as ErrState.
			case actionForceReduce:
				t.Shift[s][termIdx] = ErrState
				if cand.accept {
					t.Reduce[s][termIdx] = Accept
				} else {
					t.Reduce[s][termIdx] = cand.ruleNumber
				}
			}
		}
	}

	return t, nil
}

func candidateRuleList(cands []reduceCandidate) string {
	out := ""
	for i, c := range cands {
		if i > 0 {
			out += ", "
		}
		if c.accept {
			out += "ACCEPT"
		} else {
			out += c.item.String()
		}
	}
	return out
}

func statesInOrder(c *automaton.Collection) []automaton.StateID {
	var out []automaton.StateID
	for _, v := range c.States.Values() {
		out = append(out, v.(automaton.StateID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func itemsSorted(cl *automaton.Closure) []grammar.Item {
	keys := make([]string, 0, len(cl.Items))
	for k := range cl.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]grammar.Item, len(keys))
	for i, k := range keys {
		out[i] = cl.Items[k]
	}
	return out
}
