// Package automaton builds the canonical LR(1) collection of item sets (and
// the LALR(1)/SLR(1) collapses of it) from a grammar.CFG, as described by
// spec.md §4.2. Closures are addressed by a dense StateID rather than by
// pointer so that back-edges survive growth of the underlying arena without
// risking dangling references (spec.md §9 "Back-references in closures").
package automaton

import (
	"sort"
	"strings"

	"github.com/mseida/lr1vm/internal/grammar"
)

// StateID is a dense, zero-based identifier for a Closure within a
// Collection's arena.
type StateID int

// BackEdge records that a closure was entered by shifting symbol Sym out of
// state From. Collection.Closures stores these by value (symbol, state id)
// rather than by pointer, per spec.md §9.
type BackEdge struct {
	Sym  string
	From StateID
}

// Closure is a single state of the LR automaton: a set of items closed under
// epsilon-expansion (spec.md §3 "Closure (state)"), plus the back-edges that
// record how it can be entered.
type Closure struct {
	ID        StateID
	Items     map[string]grammar.Item // keyed by Core.Key()
	BackEdges []BackEdge
}

// itemList returns the closure's items sorted by their string key, for
// deterministic iteration.
func (c *Closure) itemList() []grammar.Item {
	keys := make([]string, 0, len(c.Items))
	for k := range c.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]grammar.Item, len(keys))
	for i, k := range keys {
		out[i] = c.Items[k]
	}
	return out
}

// coreHash returns an order-independent hash of the closure's item cores,
// ignoring lookaheads. Two closures with the same coreHash are candidates
// for the LALR(1) collapse (spec.md §4.2 "LALR collapse").
func (c *Closure) coreHash() string {
	keys := make([]string, 0, len(c.Items))
	for k := range c.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}

// fullHash returns an order-independent hash of the closure including
// lookaheads, used to deduplicate states during canonical construction
// (spec.md §4.2 "Canonical construction": "hashing is order-independent").
func (c *Closure) fullHash() string {
	keys := make([]string, 0, len(c.Items))
	for k := range c.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		it := c.Items[k]
		sb.WriteString(k)
		sb.WriteByte(':')
		las := it.SortedLookaheads()
		sb.WriteString(strings.Join(las, ","))
		sb.WriteByte(';')
	}
	return sb.String()
}

// closureOf computes the epsilon-closure of a seed set of items: repeatedly,
// for every item whose cursor precedes a nonterminal N with lookaheads L, an
// item "N -> .γ" is added for every production γ of N, with lookahead set
// FIRST(suffix · a) for each a in L; duplicate cores are merged by union of
// lookaheads. Termination is guaranteed because the item domain (bounded by
// grammar size × cursor positions × lookahead alphabet) is finite (spec.md
// §4.2).
func closureOf(g *grammar.CFG, seed map[string]grammar.Item) map[string]grammar.Item {
	items := make(map[string]grammar.Item, len(seed))
	for k, v := range seed {
		items[k] = v
	}

	changed := true
	for changed {
		changed = false

		// snapshot keys so we can safely add to items mid-iteration.
		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}

		for _, k := range keys {
			it := items[k]
			sym, ok := it.NextSymbol()
			if !ok || !g.IsNonTerminal(sym) {
				continue
			}

			beta := it.RestAfterNext()

			for _, la := range it.SortedLookaheads() {
				suffixPlusLA := append(append(grammar.Production{}, beta...), la)
				lookaheads := g.FIRSTOfWord(suffixPlusLA)

				rule := g.Rule(sym)
				for ruleIdx, prod := range rule.Productions {
					newCore := grammar.Core{NonTerminal: sym, RuleIndex: ruleIdx, Cursor: 0}
					newKey := newCore.Key()

					for _, b := range lookaheads.Elements() {
						if b == grammar.Epsilon {
							continue
						}
						existing, has := items[newKey]
						if !has {
							existing = grammar.NewItem(sym, ruleIdx, prod, 0, rule.SemRules[ruleIdx], b)
							items[newKey] = existing
							changed = true
						} else if !existing.Lookaheads[b] {
							existing.Lookaheads[b] = true
							items[newKey] = existing
							changed = true
						}
					}
				}
			}
		}
	}

	return items
}
