// Package grammar implements the symbol and context-free grammar model:
// terminals and nonterminals with precedence/associativity, productions, and
// the FIRST/FOLLOW computations used by the automaton and parse-table
// packages.
//
// This is an implementation of the grammar model described in the purple
// dragon book (Aho, Lam, Sethi, Ullman, "Compilers: Principles, Techniques,
// and Tools", 2nd ed.), in the style of the teacher repo's
// internal/ictiobus/grammar package: string symbol ids as the primary key,
// with a secondary dense numeric id assigned on registration for use as a
// parse-table column index.
package grammar

import (
	"fmt"
	"sort"

	"github.com/mseida/lr1vm/internal/util"
)

// Epsilon is the distinguished empty-production symbol. It is represented as
// the empty string so that "is this symbol epsilon" is simply a string
// comparison, matching the teacher's LR0Item convention of using "" for
// epsilon symbols in a production's rhs.
const Epsilon = ""

// EndOfInput is the distinguished end-of-input terminal, conventionally
// written "$".
const EndOfInput = "$"

// Assoc is the associativity of an operator terminal.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// NoPrecedence is the sentinel precedence value for terminals that did not
// declare one.
const NoPrecedence = -1

// Terminal is a leaf symbol of the grammar: a token class id, a human name
// for diagnostics, and an optional precedence/associativity pair used by the
// precedence-climbing conflict resolver (spec.md §4.3 step 2).
type Terminal struct {
	id         string
	human      string
	numericID  int
	Precedence int
	Assoc      Assoc
}

// ID returns the terminal's string id.
func (t Terminal) ID() string { return t.id }

// Human returns a human-readable name suitable for error messages.
func (t Terminal) Human() string {
	if t.human != "" {
		return t.human
	}
	return t.id
}

// NumericID returns the dense numeric id assigned when the terminal was
// registered with a CFG.
func (t Terminal) NumericID() int { return t.numericID }

// HasPrecedence returns whether the terminal declared an operator
// precedence.
func (t Terminal) HasPrecedence() bool { return t.Precedence != NoPrecedence }

// Production is an ordered sequence of symbol ids making up the rhs of a
// rule. An empty Production denotes an epsilon production.
type Production []string

// String renders the production the way items are printed, space-separated,
// "ε" for an explicitly empty rhs.
func (p Production) String() string {
	if len(p) == 0 {
		return "ε"
	}
	out := ""
	for i, s := range p {
		if i > 0 {
			out += " "
		}
		if s == Epsilon {
			out += "ε"
		} else {
			out += s
		}
	}
	return out
}

// Equal reports whether p and o have identical symbol sequences.
func (p Production) Equal(o Production) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Rule collects every alternative production for one nonterminal, along with
// the semantic-rule index bound to each alternative (spec.md §3 "LR Item":
// "optional semantic-rule index"; -1 means no semantic rule is bound).
type Rule struct {
	NonTerminal string
	Productions []Production
	SemRules    []int

	// PrecOverride parallels Productions: a non-empty entry names the
	// terminal whose precedence/associativity governs conflict resolution
	// for that production, overriding the default of "rightmost terminal in
	// the rhs" (spec.md §4.3 step 2). This is the equivalent of yacc's
	// %prec, needed when a terminal (e.g. unary "-") must resolve
	// differently than its own precedence as a binary operator.
	PrecOverride []string
}

// CFG is a context-free grammar: a set of terminals, a set of nonterminals
// each owning an ordered list of productions, and a distinguished start
// symbol.
type CFG struct {
	start     string
	terms     map[string]Terminal
	termOrder []string
	rules     map[string]*Rule
	ntOrder   []string

	nextNumericID int
}

// NewCFG returns an empty, ready-to-use grammar.
func NewCFG() *CFG {
	return &CFG{
		terms: map[string]Terminal{},
		rules: map[string]*Rule{},
	}
}

// AddTerm registers a terminal under the given id. The first call assigns
// numeric id 0, the second 1, and so on; numeric ids are stable for the
// lifetime of the CFG and are used as parse-table column indices.
func (g *CFG) AddTerm(id string, human string) Terminal {
	return g.AddTermPrec(id, human, NoPrecedence, AssocNone)
}

// AddTermPrec registers a terminal with an explicit precedence/associativity
// pair.
func (g *CFG) AddTermPrec(id string, human string, precedence int, assoc Assoc) Terminal {
	if t, ok := g.terms[id]; ok {
		return t
	}
	t := Terminal{id: id, human: human, numericID: g.nextNumericID, Precedence: precedence, Assoc: assoc}
	g.nextNumericID++
	g.terms[id] = t
	g.termOrder = append(g.termOrder, id)
	return t
}

// AddRule adds (or appends to) the rule for nonTerminal with the given
// alternative productions. The first nonterminal ever added becomes the
// grammar's start symbol unless SetStart is called explicitly.
func (g *CFG) AddRule(nonTerminal string, alts []Production) {
	r, ok := g.rules[nonTerminal]
	if !ok {
		r = &Rule{NonTerminal: nonTerminal}
		g.rules[nonTerminal] = r
		g.ntOrder = append(g.ntOrder, nonTerminal)
		if g.start == "" {
			g.start = nonTerminal
		}
	}
	for _, alt := range alts {
		r.Productions = append(r.Productions, alt)
		r.SemRules = append(r.SemRules, -1)
		r.PrecOverride = append(r.PrecOverride, "")
	}
}

// SetRulePrecedence overrides the precedence terminal used to resolve
// conflicts for the ruleIdx'th production of nonTerminal, the equivalent of
// yacc's %prec (spec.md §4.3 step 2).
func (g *CFG) SetRulePrecedence(nonTerminal string, ruleIdx int, terminalID string) {
	g.rules[nonTerminal].PrecOverride[ruleIdx] = terminalID
}

// RulePrecedenceOverride returns the overriding precedence terminal for the
// ruleIdx'th production of nonTerminal, or "" if none was set.
func (g *CFG) RulePrecedenceOverride(nonTerminal string, ruleIdx int) string {
	return g.rules[nonTerminal].PrecOverride[ruleIdx]
}

// AddRuleSem is AddRule but binds a semantic-rule index to each supplied
// production, in the same order.
func (g *CFG) AddRuleSem(nonTerminal string, alts []Production, semRules []int) {
	g.AddRule(nonTerminal, alts)
	r := g.rules[nonTerminal]
	for i := 0; i < len(alts); i++ {
		r.SemRules[len(r.SemRules)-len(alts)+i] = semRules[i]
	}
}

// SetStart sets the grammar's start symbol explicitly.
func (g *CFG) SetStart(nonTerminal string) { g.start = nonTerminal }

// StartSymbol returns the grammar's start symbol.
func (g *CFG) StartSymbol() string { return g.start }

// IsTerminal reports whether sym names a registered terminal (or is the
// distinguished end-of-input symbol).
func (g *CFG) IsTerminal(sym string) bool {
	if sym == EndOfInput {
		return true
	}
	_, ok := g.terms[sym]
	return ok
}

// IsNonTerminal reports whether sym names a registered nonterminal.
func (g *CFG) IsNonTerminal(sym string) bool {
	_, ok := g.rules[sym]
	return ok
}

// Term returns the registered Terminal for id.
func (g *CFG) Term(id string) Terminal { return g.terms[id] }

// Rule returns the Rule for the given nonterminal.
func (g *CFG) Rule(nonTerminal string) Rule {
	if r, ok := g.rules[nonTerminal]; ok {
		return *r
	}
	return Rule{}
}

// Terminals returns terminal ids in registration order (which is also
// numeric-id order).
func (g *CFG) Terminals() []string {
	out := make([]string, len(g.termOrder))
	copy(out, g.termOrder)
	return out
}

// NonTerminals returns nonterminal ids in registration order.
func (g *CFG) NonTerminals() []string {
	out := make([]string, len(g.ntOrder))
	copy(out, g.ntOrder)
	return out
}

// GenerateUniqueNonTerminal returns a nonterminal id based on base that does
// not collide with any nonterminal already in the grammar, by appending "'"
// until unique (so "S" becomes "S'", "S''", ...).
func (g *CFG) GenerateUniqueNonTerminal(base string) string {
	candidate := base
	for g.IsNonTerminal(candidate) {
		candidate += "'"
	}
	return candidate
}

// GenerateUniqueTerminal is the terminal analogue of
// GenerateUniqueNonTerminal, used by the LALR lookahead algorithm to obtain a
// symbol guaranteed absent from the grammar (spec.md §4.2).
func (g *CFG) GenerateUniqueTerminal(base string) string {
	candidate := base
	for g.IsTerminal(candidate) {
		candidate += "#"
	}
	return candidate
}

// Augmented returns a new grammar identical to g but with a fresh start
// symbol S' and a single production S' -> S appended, as required by the
// canonical LR(1) construction (spec.md §4.2 "Canonical construction").
func (g *CFG) Augmented() *CFG {
	primed := g.GenerateUniqueNonTerminal(g.start + "-P")
	ag := NewCFG()
	ag.nextNumericID = g.nextNumericID
	for _, id := range g.termOrder {
		ag.terms[id] = g.terms[id]
		ag.termOrder = append(ag.termOrder, id)
	}
	for _, nt := range g.ntOrder {
		r := g.rules[nt]
		cp := &Rule{
			NonTerminal:  r.NonTerminal,
			Productions:  append([]Production{}, r.Productions...),
			SemRules:     append([]int{}, r.SemRules...),
			PrecOverride: append([]string{}, r.PrecOverride...),
		}
		ag.rules[nt] = cp
		ag.ntOrder = append(ag.ntOrder, nt)
	}
	ag.AddRule(primed, []Production{{g.start}})
	ag.start = primed
	return ag
}

// Validate checks the structural invariants a grammar must satisfy before
// automaton construction: a start symbol is set, at least one terminal and
// one nonterminal exist, and every symbol referenced on a rhs is either a
// known terminal or a known nonterminal.
func (g *CFG) Validate() error {
	if g.start == "" {
		return fmt.Errorf("grammar has no start symbol")
	}
	if len(g.terms) == 0 {
		return fmt.Errorf("grammar defines no terminals")
	}
	if len(g.rules) == 0 {
		return fmt.Errorf("grammar defines no rules")
	}
	for _, nt := range g.ntOrder {
		r := g.rules[nt]
		if len(r.Productions) == 0 {
			return fmt.Errorf("nonterminal %q has no productions", nt)
		}
		for _, p := range r.Productions {
			for _, sym := range p {
				if sym == Epsilon {
					continue
				}
				if !g.IsTerminal(sym) && !g.IsNonTerminal(sym) {
					return fmt.Errorf("production %s -> %s references undefined symbol %q", nt, p, sym)
				}
			}
		}
	}
	return nil
}

// FIRST computes FIRST(X) for a single grammar symbol: the set of terminals
// (plus possibly Epsilon) that can begin a string derived from X. See
// spec.md §4.1.
func (g *CFG) FIRST(sym string) util.StringSet {
	return g.first(sym, map[string]bool{})
}

func (g *CFG) first(sym string, visiting map[string]bool) util.StringSet {
	set := util.NewStringSet()
	if sym == Epsilon {
		set.Add(Epsilon)
		return set
	}
	if g.IsTerminal(sym) {
		set.Add(sym)
		return set
	}
	if visiting[sym] {
		// self-recursion on the same lhs is cut short, per spec.md §4.1.
		return set
	}
	visiting[sym] = true
	defer delete(visiting, sym)

	r, ok := g.rules[sym]
	if !ok {
		return set
	}
	for _, p := range r.Productions {
		set.AddAll(g.firstOfWord(p, visiting))
	}
	return set
}

// firstOfWord computes FIRST of a sequence of symbols (a production rhs, or
// any suffix of one).
func (g *CFG) firstOfWord(word []string, visiting map[string]bool) util.StringSet {
	set := util.NewStringSet()
	if len(word) == 0 {
		set.Add(Epsilon)
		return set
	}
	allNullable := true
	for _, sym := range word {
		firstSym := g.first(sym, visiting)
		for _, t := range firstSym.Elements() {
			if t != Epsilon {
				set.Add(t)
			}
		}
		if !firstSym.Has(Epsilon) {
			allNullable = false
			break
		}
	}
	if allNullable {
		set.Add(Epsilon)
	}
	return set
}

// FIRSTOfWord is the exported entry point for computing FIRST of an
// arbitrary sequence of symbols, used by closure expansion (spec.md §4.2) to
// compute the lookahead set of a newly produced item.
func (g *CFG) FIRSTOfWord(word []string) util.StringSet {
	return g.firstOfWord(word, map[string]bool{})
}

// FOLLOW computes FOLLOW(X) for nonterminal X: the set of terminals that can
// immediately follow X in some derivation from the start symbol. See
// spec.md §4.1.
func (g *CFG) FOLLOW(nonTerminal string) util.StringSet {
	follow := map[string]util.StringSet{}
	for _, nt := range g.ntOrder {
		follow[nt] = util.NewStringSet()
	}
	start := follow[g.start]
	start.Add(EndOfInput)
	follow[g.start] = start

	changed := true
	for changed {
		changed = false
		for _, nt := range g.ntOrder {
			r := g.rules[nt]
			for _, p := range r.Productions {
				for i, sym := range p {
					if !g.IsNonTerminal(sym) {
						continue
					}
					suffix := p[i+1:]
					firstSuffix := g.firstOfWord(suffix, map[string]bool{})
					before := follow[sym].Len()
					for _, t := range firstSuffix.Elements() {
						if t != Epsilon {
							follow[sym].Add(t)
						}
					}
					if firstSuffix.Has(Epsilon) {
						follow[sym].AddAll(follow[nt])
					}
					if follow[sym].Len() != before {
						changed = true
					}
				}
			}
		}
	}
	return follow[nonTerminal]
}

// RuleNumber returns the dense, globally-unique rule number assigned to the
// ruleIdx'th production of nonTerminal. Numbers are assigned by walking
// nonterminals in registration order and, within each, productions in
// registration order — stable for the lifetime of the CFG since both orders
// are append-only.
func (g *CFG) RuleNumber(nonTerminal string, ruleIdx int) int {
	n := 0
	for _, nt := range g.ntOrder {
		r := g.rules[nt]
		if nt == nonTerminal {
			return n + ruleIdx
		}
		n += len(r.Productions)
	}
	return -1
}

// RuleCount returns the total number of productions across every
// nonterminal in the grammar.
func (g *CFG) RuleCount() int {
	n := 0
	for _, nt := range g.ntOrder {
		n += len(g.rules[nt].Productions)
	}
	return n
}

// RuleRef identifies one production by the global rule number scheme used
// in parse tables.
type RuleRef struct {
	NonTerminal string
	RuleIndex   int
	Production  Production
	SemRule     int
}

// RuleAt returns the RuleRef for the given global rule number, as assigned
// by RuleNumber.
func (g *CFG) RuleAt(number int) (RuleRef, bool) {
	n := 0
	for _, nt := range g.ntOrder {
		r := g.rules[nt]
		if number < n+len(r.Productions) {
			idx := number - n
			return RuleRef{NonTerminal: nt, RuleIndex: idx, Production: r.Productions[idx], SemRule: r.SemRules[idx]}, true
		}
		n += len(r.Productions)
	}
	return RuleRef{}, false
}

// RHSLength returns the number of symbols (excluding Epsilon) on the rhs of
// production p, i.e. the value stored in the rhs-length vector of the parse
// tables (spec.md §3 "Parse tables").
func RHSLength(p Production) int {
	n := 0
	for _, s := range p {
		if s != Epsilon {
			n++
		}
	}
	return n
}

// SortedNonTerminals returns the nonterminal ids in lexical order, useful
// for deterministic iteration independent of registration order.
func (g *CFG) SortedNonTerminals() []string {
	out := g.NonTerminals()
	sort.Strings(out)
	return out
}
