package schema

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/pattern"
)

// Rule is a named (when, then) pair (§3). The then head's shape is
// validated at PutRule time; deriving ThenConcludables/
// ConjunctionConcludables from a rule is the Reasoner's job (§4.7), since
// that derivation depends on unification machinery schema has no need to
// know about.
type Rule struct {
	Label string
	When  *pattern.Conjunction
	Then  *pattern.ThingVariable
}

// PutRule validates the then head's shape (§6, §7 IllegalRuleHead) and
// registers the rule under a schema transaction. "Single constraint" (§3)
// means a single semantic assertion, not a single pattern.ThingConstraint
// object: a relation insertion needs both the relation's type (an Isa) and
// its role-players (a Relation), so the only two-constraint head shape
// allowed is exactly {Isa, Relation} — every other head kind carries one.
func (g *Graph) PutRule(label string, when *pattern.Conjunction, then *pattern.ThingVariable) (*Rule, error) {
	var hasIsa, hasRelation bool
	var other pattern.ThingConstraint

	for _, con := range then.Constraints {
		switch c := con.(type) {
		case *pattern.IsaConstraint:
			hasIsa = true
		case *pattern.RelationConstraint:
			hasRelation = true
		case *pattern.HasConstraint, *pattern.ValueConstraint:
			if other != nil {
				return nil, core.ErrIllegalRuleHead.New(label, "then carries more than one assertion")
			}
			other = c
		default:
			return nil, core.ErrIllegalRuleHead.New(label, "unsupported head constraint kind")
		}
	}

	switch {
	case hasRelation && other != nil:
		return nil, core.ErrIllegalRuleHead.New(label, "then mixes a relation head with a has/value head")
	case hasRelation:
		// {Isa, Relation} or bare {Relation} — fine either way.
	case hasIsa && other != nil:
		return nil, core.ErrIllegalRuleHead.New(label, "then mixes an isa head with a has/value head")
	case hasIsa || other != nil:
		// bare {Isa} or bare {Has}/{Value}.
	default:
		return nil, core.ErrIllegalRuleHead.New(label, "then must carry at least one constraint")
	}

	// Open Question (a): rule-head value constraints of comparator shape
	// ($_num = 5 against a computed expression) are excluded; only a
	// literal-value has/isa/relation head is accepted (see DESIGN.md).
	if vc, ok := other.(*pattern.ValueConstraint); ok && vc.Op != pattern.OpEQ {
		return nil, core.ErrIllegalRuleHead.New(label, "rule head value constraints support only literal equality")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	r := &Rule{Label: label, When: when, Then: then}
	g.rules[label] = r
	g.bumpSnapshot()
	return r, nil
}

func (g *Graph) Rule(label string) (*Rule, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rules[label]
	return r, ok
}

// Rules returns every defined rule, used by the Reasoner to find every
// rule whose head might unify with a given concludable (§4.7).
func (g *Graph) Rules() []*Rule {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Rule, 0, len(g.rules))
	for _, r := range g.rules {
		out = append(out, r)
	}
	return out
}

func (g *Graph) UndefineRule(label string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rules[label]; !ok {
		return core.ErrUnknownLabel.New(label)
	}
	delete(g.rules, label)
	g.bumpSnapshot()
	return nil
}
