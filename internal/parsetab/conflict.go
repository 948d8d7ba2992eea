package parsetab

import (
	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/icterr"
)

// ResolverAction is the action an explicit conflict resolver forces.
type ResolverAction int

const (
	ForceShift ResolverAction = iota
	ForceReduce
)

// ResolverRule is one entry of the explicit resolver list consulted first
// when a shift/reduce conflict is found (spec.md §4.3 step 1). Key is either
// the lhs nonterminal of the reducing item, or a lookback terminal — any
// terminal labeling a back-edge transitively reachable from the conflicted
// state.
type ResolverRule struct {
	Key       string
	Lookahead string
	Action    ResolverAction
}

type internalAction int

const (
	actionForceShift internalAction = iota
	actionForceReduce
)

// resolve settles a single shift/reduce conflict at (state, lookahead),
// following spec.md §4.3:
//  1. an explicit resolver rule whose Key matches either the reducing item's
//     lhs or a lookback terminal of state, and whose Lookahead matches;
//  2. operator precedence/associativity, if both the reducing production's
//     rightmost terminal and the lookahead terminal declare one;
//  3. otherwise, a ConflictError naming the state, item, lookback terminals,
//     lookahead, shift target, and candidate rule.
func resolve(g *grammar.CFG, c *automaton.Collection, resolvers []ResolverRule, state automaton.StateID, lookahead string, cand reduceCandidate, shiftTarget int) (internalAction, error) {
	lhs := cand.item.NonTerminal
	lookbacks := c.LookbackTerminals(state)
	lookbackSet := map[string]bool{}
	for _, lb := range lookbacks {
		lookbackSet[lb] = true
	}

	for _, r := range resolvers {
		if r.Lookahead != lookahead {
			continue
		}
		if r.Key == lhs || lookbackSet[r.Key] {
			switch r.Action {
			case ForceShift:
				return actionForceShift, nil
			case ForceReduce:
				return actionForceReduce, nil
			}
		}
	}

	if prodPrec, ok := productionPrecedence(g, cand.item); ok {
		if lookTerm := g.Term(lookahead); lookTerm.ID() != "" && lookTerm.HasPrecedence() {
			switch {
			case lookTerm.Precedence > prodPrec.Precedence:
				return actionForceShift, nil
			case lookTerm.Precedence < prodPrec.Precedence:
				return actionForceReduce, nil
			default:
				if lookTerm.Assoc == grammar.AssocRight {
					return actionForceShift, nil
				}
				return actionForceReduce, nil
			}
		}
	}

	return 0, icterr.Conflictf(
		"unresolved shift/reduce conflict in state %d: reducing item %s, lookback terminals [%s], lookahead %q, candidate shift to state %d, candidate rule %s -> %s",
		state, cand.item.String(), joinStrs(lookbacks), lookahead, shiftTarget, lhs, cand.item.Production.String(),
	)
}

// productionPrecedence returns the precedence/associativity governing the
// reducing item's production: an explicit %prec-style override if the
// grammar declared one for this production (grammar.CFG.SetRulePrecedence),
// else the rightmost terminal in the rhs (spec.md §4.3 step 2).
func productionPrecedence(g *grammar.CFG, it grammar.Item) (grammar.Terminal, bool) {
	if override := g.RulePrecedenceOverride(it.NonTerminal, it.RuleIndex); override != "" {
		term := g.Term(override)
		return term, term.HasPrecedence()
	}
	return rightmostPrecedence(g, it.Production)
}

// rightmostPrecedence returns the precedence/associativity of the rightmost
// terminal in p, used as the production's own precedence for the
// precedence-climbing resolver (spec.md §4.3 step 2).
func rightmostPrecedence(g *grammar.CFG, p grammar.Production) (grammar.Terminal, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if g.IsTerminal(p[i]) {
			term := g.Term(p[i])
			if term.HasPrecedence() {
				return term, true
			}
			return grammar.Terminal{}, false
		}
	}
	return grammar.Terminal{}, false
}

func joinStrs(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
