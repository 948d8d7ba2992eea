package automaton

import (
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/mseida/lr1vm/internal/grammar"
)

// Transition is a single edge of the collection: shifting Sym in state From
// leads to state To.
type Transition struct {
	From StateID
	To   StateID
	Sym  string
}

// Collection is the canonical LR(1) (or, after collapse, LALR(1)/SLR(1))
// automaton: an ordered arena of closures plus a hash index for
// deduplication and the transition relation between them (spec.md §3
// "Collection"). States is a gods treeset (ordered by StateID) and
// Transitions a gods arraylist, following the container choices made by the
// pack's gorgo LR builder (lr/tables.go) for exactly this kind of automaton
// state.
type Collection struct {
	g           *grammar.CFG
	arena       []*Closure
	hashIndex   map[string]StateID
	States      *treeset.Set
	Transitions *arraylist.List
	Start       StateID
}

func stateIDComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(StateID)), int(b.(StateID)))
}

func newCollection(g *grammar.CFG) *Collection {
	return &Collection{
		g:           g,
		hashIndex:   map[string]StateID{},
		States:      treeset.NewWith(stateIDComparator),
		Transitions: arraylist.New(),
	}
}

// Get returns the closure for id.
func (c *Collection) Get(id StateID) *Closure {
	return c.arena[id]
}

// addState interns a closure (by items+lookaheads), returning its id and
// whether it was newly created. The id is dense: the first closure
// registered is always 0.
func (c *Collection) addState(items map[string]grammar.Item) (StateID, bool) {
	cl := &Closure{Items: items}
	h := cl.fullHash()
	if id, ok := c.hashIndex[h]; ok {
		return id, false
	}
	id := StateID(len(c.arena))
	cl.ID = id
	c.arena = append(c.arena, cl)
	c.hashIndex[h] = id
	c.States.Add(id)
	return id, true
}

// addTransition records from=(symbol)=>to, deduping by (from, to, symbol) as
// required by spec.md §3 "Collection" invariants, and appends a back-edge to
// the destination closure.
func (c *Collection) addTransition(from StateID, sym string, to StateID) {
	for _, v := range c.Transitions.Values() {
		t := v.(Transition)
		if t.From == from && t.To == to && t.Sym == sym {
			return
		}
	}
	c.Transitions.Add(Transition{From: from, To: to, Sym: sym})
	c.arena[to].BackEdges = append(c.arena[to].BackEdges, BackEdge{Sym: sym, From: from})
}

// transitionsFrom returns every transition whose From == id, sorted by
// symbol for deterministic iteration.
func (c *Collection) transitionsFrom(id StateID) []Transition {
	var out []Transition
	for _, v := range c.Transitions.Values() {
		t := v.(Transition)
		if t.From == id {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sym < out[j].Sym })
	return out
}

// symbolsAfterCursor returns, for every item in cl whose cursor is not at
// the end, the distinct symbol immediately following the cursor.
func symbolsAfterCursor(cl *Closure) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range cl.itemList() {
		sym, ok := it.NextSymbol()
		if !ok || sym == grammar.Epsilon {
			continue
		}
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// goTo advances every item in cl that has sym immediately after its cursor,
// then re-closes the result — the GOTO(I, X) operation of spec.md §4.2
// "Transitions".
func goTo(g *grammar.CFG, cl *Closure, sym string) map[string]grammar.Item {
	seed := map[string]grammar.Item{}
	for _, it := range cl.itemList() {
		next, ok := it.NextSymbol()
		if !ok || next != sym {
			continue
		}
		advanced := it.Advance()
		seed[advanced.Core.Key()] = advanced
	}
	return closureOf(g, seed)
}

// BuildCanonicalLR1 constructs the canonical collection of LR(1) item sets
// for g (which must not already be augmented): the augmented grammar's
// initial item seeds state 0, and a BFS over GOTO discovers every reachable
// state, following spec.md §4.2 "Canonical construction". g is augmented
// internally; the returned Collection's items reference the augmented
// grammar's start production.
func BuildCanonicalLR1(g *grammar.CFG) *Collection {
	augmented := g.Augmented()
	c := newCollection(augmented)

	startRule := augmented.Rule(augmented.StartSymbol())
	seed := map[string]grammar.Item{}
	startItem := grammar.NewItem(augmented.StartSymbol(), 0, startRule.Productions[0], 0, startRule.SemRules[0], grammar.EndOfInput)
	seed[startItem.Core.Key()] = startItem

	startID, _ := c.addState(closureOf(augmented, seed))
	c.Start = startID

	worklist := []StateID{startID}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		cl := c.Get(id)

		for _, sym := range symbolsAfterCursor(cl) {
			succItems := goTo(augmented, cl, sym)
			succID, isNew := c.addState(succItems)
			c.addTransition(id, sym, succID)
			if isNew {
				worklist = append(worklist, succID)
			}
		}
	}

	c.simplify()
	return c
}

// simplify stable-sorts states by id (already dense from construction) and
// sorts transitions by (from, to), per spec.md §4.2 "Simplification". Ids
// are already dense since addState assigns them in discovery order, so this
// only normalizes the transition ordering used by String()/iteration.
func (c *Collection) simplify() {
	values := c.Transitions.Values()
	sort.Slice(values, func(i, j int) bool {
		a, b := values[i].(Transition), values[j].(Transition)
		if a.From != b.From {
			return a.From < b.From
		}
		return a.To < b.To
	})
	c.Transitions.Clear()
	for _, v := range values {
		c.Transitions.Add(v)
	}
}

// CollapseLALR1 merges states of c that share a core hash (lookaheads
// ignored), unioning lookaheads of corresponding items and back-edges and
// deduping transitions by (from, to, symbol), per spec.md §4.2 "LALR
// collapse".
func CollapseLALR1(c *Collection) *Collection {
	merged := newCollection(c.g)

	// group original state ids by core hash, preserving first-seen order so
	// the merged collection's numbering stays close to the canonical one.
	groupOf := map[StateID]StateID{} // old id -> new id
	coreToNew := map[string]StateID{}

	for _, v := range c.States.Values() {
		oldID := v.(StateID)
		oldCl := c.Get(oldID)
		h := oldCl.coreHash()
		if newID, ok := coreToNew[h]; ok {
			groupOf[oldID] = newID
			mergeInto(merged.Get(newID), oldCl)
			continue
		}
		newCl := &Closure{Items: cloneItems(oldCl.Items)}
		newID := StateID(len(merged.arena))
		newCl.ID = newID
		merged.arena = append(merged.arena, newCl)
		merged.States.Add(newID)
		coreToNew[h] = newID
		groupOf[oldID] = newID
	}

	merged.Start = groupOf[c.Start]

	for _, v := range c.Transitions.Values() {
		t := v.(Transition)
		merged.addTransitionDeduped(groupOf[t.From], t.Sym, groupOf[t.To])
	}

	merged.simplify()
	return merged
}

// CollapseSLR1 first collapses c to LALR(1), then replaces every item's
// lookahead set with FOLLOW(lhs), per spec.md §4.2 "SLR collapse".
func CollapseSLR1(c *Collection) *Collection {
	lalr := CollapseLALR1(c)
	for _, v := range lalr.States.Values() {
		id := v.(StateID)
		cl := lalr.Get(id)
		for k, it := range cl.Items {
			follow := lalr.g.FOLLOW(it.NonTerminal)
			it.Lookaheads = map[string]bool{}
			for _, la := range follow.Elements() {
				it.Lookaheads[la] = true
			}
			cl.Items[k] = it
		}
	}
	return lalr
}

func cloneItems(items map[string]grammar.Item) map[string]grammar.Item {
	out := make(map[string]grammar.Item, len(items))
	for k, it := range items {
		cp := it
		cp.Lookaheads = make(map[string]bool, len(it.Lookaheads))
		for la := range it.Lookaheads {
			cp.Lookaheads[la] = true
		}
		out[k] = cp
	}
	return out
}

func mergeInto(dst *Closure, src *Closure) {
	for k, it := range src.Items {
		existing, ok := dst.Items[k]
		if !ok {
			dst.Items[k] = it
			continue
		}
		for la := range it.Lookaheads {
			existing.Lookaheads[la] = true
		}
		dst.Items[k] = existing
	}
}

func (c *Collection) addTransitionDeduped(from StateID, sym string, to StateID) {
	for _, v := range c.Transitions.Values() {
		t := v.(Transition)
		if t.From == from && t.To == to && t.Sym == sym {
			return
		}
	}
	c.Transitions.Add(Transition{From: from, To: to, Sym: sym})
	found := false
	for _, be := range c.arena[to].BackEdges {
		if be.Sym == sym && be.From == from {
			found = true
			break
		}
	}
	if !found {
		c.arena[to].BackEdges = append(c.arena[to].BackEdges, BackEdge{Sym: sym, From: from})
	}
}

// Grammar returns the (augmented) grammar the collection was built from.
func (c *Collection) Grammar() *grammar.CFG { return c.g }

// NumStates returns the number of states in the collection.
func (c *Collection) NumStates() int { return len(c.arena) }

// AllTransitions returns every transition in (from, to) order.
func (c *Collection) AllTransitions() []Transition {
	out := make([]Transition, 0, c.Transitions.Size())
	for _, v := range c.Transitions.Values() {
		out = append(out, v.(Transition))
	}
	return out
}

// LookbackTerminals returns every terminal that labels a back-edge
// transitively reachable from state s by walking back-edges through
// nonterminal labels, used by the conflict resolver's "lookback terminal"
// key (spec.md §4.3 step 1).
func (c *Collection) LookbackTerminals(s StateID) []string {
	seen := map[StateID]bool{}
	terms := map[string]bool{}
	var walk func(id StateID)
	walk = func(id StateID) {
		if seen[id] {
			return
		}
		seen[id] = true
		for _, be := range c.Get(id).BackEdges {
			if c.g.IsTerminal(be.Sym) {
				terms[be.Sym] = true
			} else {
				walk(be.From)
			}
		}
	}
	walk(s)
	out := make([]string, 0, len(terms))
	for t := range terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
