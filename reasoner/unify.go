package reasoner

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/schema"
)

// Unifier is a variable-renaming plus compatibility mapping between a
// conjunction concludable and a candidate rule's then head (§4.7, Glossary
// "Unifier"): RuleToOuter maps the rule's own variable name (as bound by
// solving the rule's when-clause) to the outer query variable name the
// concludable's binding should be projected onto.
type Unifier struct {
	Rule        *schema.Rule
	RuleToOuter map[string]string
}

// Unify attempts to build a Unifier between a conjunction concludable and
// a rule's then head: it requires matching ConcludableKind and an
// intersecting hint set (§4.7: "a rule only unifies when its head's
// type-hint set intersects the target concludable's hint set").
func Unify(sg *schema.Graph, target *Concludable, rule *schema.Rule) (*Unifier, error) {
	heads := ThenConcludables(rule)
	var head *Concludable
	for _, h := range heads {
		if h.Kind == target.Kind {
			head = h
			break
		}
	}
	if head == nil {
		return nil, core.ErrUnifierConstruction.New(rule.Label, "head/body concludable kind mismatch")
	}
	if !head.HintSet(sg).Intersects(target.HintSet(sg)) {
		return nil, core.ErrUnifierConstruction.New(rule.Label, "head and body hint sets do not intersect")
	}

	mapping := map[string]string{}
	switch target.Kind {
	case ConcludableIsa:
		mapping[head.Isa.Owner().Ref().Name] = target.Isa.Owner().Ref().Name

	case ConcludableHas:
		mapping[head.Has.Owner().Ref().Name] = target.Has.Owner().Ref().Name
		mapping[head.Has.Attribute.Ref().Name] = target.Has.Attribute.Ref().Name

	case ConcludableRelation:
		mapping[head.Relation.Owner().Ref().Name] = target.Relation.Owner().Ref().Name
		if len(head.Relation.Players) != len(target.Relation.Players) {
			return nil, core.ErrUnifierConstruction.New(rule.Label, "relation player-count mismatch")
		}
		for i, hp := range head.Relation.Players {
			mapping[hp.Player.Ref().Name] = target.Relation.Players[i].Player.Ref().Name
		}

	case ConcludableValue:
		mapping[head.Value.Owner().Ref().Name] = target.Value.Owner().Ref().Name
	}

	return &Unifier{Rule: rule, RuleToOuter: mapping}, nil
}

// Project renames a rule-solved answer's keys into outer query variable
// names per the unifier's mapping, dropping any rule-local variable that
// has no outer counterpart.
func (u *Unifier) Project(ruleAnswer core.Answer) core.Answer {
	out := core.Answer{}
	for ruleVar, outerVar := range u.RuleToOuter {
		if c, ok := ruleAnswer[ruleVar]; ok {
			out[outerVar] = c
		}
	}
	return out
}
