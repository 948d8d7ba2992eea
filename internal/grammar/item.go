package grammar

import (
	"fmt"
	"sort"
	"strings"
)

// Core is the (lhs, rule, cursor) triple of an LR item, ignoring lookaheads.
// Two items with equal cores may differ only in their lookahead sets
// (spec.md §3 "LR Item").
type Core struct {
	NonTerminal string
	RuleIndex   int
	Cursor      int
}

// Key returns a string uniquely identifying the core, suitable for use as a
// map key when merging same-core items by lookahead union.
func (c Core) Key() string {
	return fmt.Sprintf("%s#%d#%d", c.NonTerminal, c.RuleIndex, c.Cursor)
}

// Item is an LR(1) item: a core plus a set of lookahead terminals and the
// optional semantic-rule index carried by the production it points into.
type Item struct {
	Core
	Production Production
	Lookaheads map[string]bool
	SemRule    int
}

// NewItem creates a seed item for the given nonterminal/rule/cursor with a
// single lookahead terminal.
func NewItem(nt string, ruleIdx int, p Production, cursor int, semRule int, lookahead string) Item {
	return Item{
		Core:       Core{NonTerminal: nt, RuleIndex: ruleIdx, Cursor: cursor},
		Production: p,
		Lookaheads: map[string]bool{lookahead: true},
		SemRule:    semRule,
	}
}

// AtEnd reports whether the item's cursor is past the last symbol of its
// production (a reduce item).
func (it Item) AtEnd() bool {
	return it.Cursor >= len(it.effectiveProduction())
}

// effectiveProduction returns Production with a leading Epsilon symbol (if
// any) stripped, since an epsilon production has cursor space only at
// position 0, which is also the end.
func (it Item) effectiveProduction() Production {
	if len(it.Production) == 1 && it.Production[0] == Epsilon {
		return Production{}
	}
	return it.Production
}

// NextSymbol returns the symbol immediately after the cursor, or "" with ok
// false if the cursor is at the end.
func (it Item) NextSymbol() (sym string, ok bool) {
	p := it.effectiveProduction()
	if it.Cursor >= len(p) {
		return "", false
	}
	return p[it.Cursor], true
}

// Advance returns a copy of it with the cursor moved one position to the
// right. It must only be called when NextSymbol reports ok==true.
func (it Item) Advance() Item {
	next := it
	next.Cursor++
	next.Lookaheads = copyLookaheads(it.Lookaheads)
	return next
}

func copyLookaheads(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SortedLookaheads returns the item's lookaheads in lexical order.
func (it Item) SortedLookaheads() []string {
	out := make([]string, 0, len(it.Lookaheads))
	for la := range it.Lookaheads {
		out = append(out, la)
	}
	sort.Strings(out)
	return out
}

// RestAfterNext returns the production symbols following the cursor's
// immediate next symbol. For item [A -> α.Nβ, a] this is β; closure
// expansion uses it, together with the item's own lookaheads, to compute the
// lookahead set FIRST(βa) for the items seeded for N (spec.md §4.2).
func (it Item) RestAfterNext() Production {
	p := it.effectiveProduction()
	if it.Cursor+1 >= len(p) {
		return Production{}
	}
	rest := make(Production, len(p)-it.Cursor-1)
	copy(rest, p[it.Cursor+1:])
	return rest
}

// String renders the item as "NT -> alpha . beta, a/b/c".
func (it Item) String() string {
	p := it.effectiveProduction()
	var left, right []string
	for i, s := range p {
		sym := s
		if sym == Epsilon {
			sym = "ε"
		}
		if i < it.Cursor {
			left = append(left, sym)
		} else {
			right = append(right, sym)
		}
	}
	leftStr := strings.Join(left, " ")
	rightStr := strings.Join(right, " ")
	if leftStr != "" {
		leftStr += " "
	}
	if rightStr != "" {
		rightStr = " " + rightStr
	}
	return fmt.Sprintf("%s -> %s.%s, %s", it.NonTerminal, leftStr, rightStr, strings.Join(it.SortedLookaheads(), "/"))
}
