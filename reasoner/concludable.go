// Package reasoner is the rule-reasoning layer (C8, §4.7): it identifies
// the body constraints a rule could produce (concludables), unifies them
// against candidate rule heads, and drives recursive sub-resolution to a
// tabled fixpoint.
package reasoner

import (
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
)

// ConcludableKind classifies the shape a rule head (or a body constraint
// eligible to be produced by one) can take (§3: "exactly one of: an isa
// insertion, a has assertion, a relation with role-players, or a value
// assertion").
type ConcludableKind byte

const (
	ConcludableIsa ConcludableKind = iota
	ConcludableHas
	ConcludableRelation
	ConcludableValue
)

// Concludable is one constraint, either a rule's then head or a when-body
// constraint, tagged with the variable it constrains and the hint set that
// variable resolves to — the unifier's compatibility check operates purely
// on Kind plus hint-set intersection (§4.7).
type Concludable struct {
	Kind     ConcludableKind
	Owner    *pattern.ThingVariable
	Isa      *pattern.IsaConstraint
	Has      *pattern.HasConstraint
	Relation *pattern.RelationConstraint
	Value    *pattern.ValueConstraint
}

// ThenConcludables derives the concludable set a rule's then head can
// produce: one element for every head kind except a relation insertion,
// which PutRule allows to carry both an Isa (the relation's type) and a
// Relation (its role-players) constraint together, yielding two (§3,
// scenario 1: "rule.thenConcludables: 1 isa, 0 has, 1 relation, 0 value").
func ThenConcludables(r *schema.Rule) []*Concludable {
	var out []*Concludable
	for _, con := range r.Then.Constraints {
		out = append(out, constraintConcludables(r.Then, con)...)
	}
	return out
}

// ConjunctionConcludables scans every thing variable's constraints in a
// conjunction for constraints of a concludable shape — isa, has, relation,
// or a literal-value comparison — each a candidate some rule's head might
// satisfy (§4.7). A variable that carries both an Isa and a Relation
// constraint (a relation's own "isa marriage" alongside its role-players)
// yields only the Relation concludable: the relation's type is already
// captured in that concludable's hint set via its owner's Isa constraint,
// and double-counting it as a second, separate Isa concludable would ask
// the unifier to satisfy the same fact twice (§3 scenario 1: the body
// `(spouse:$x, spouse:$y) isa marriage` contributes 1 relation concludable,
// not 1 relation + 1 isa — "whenConcludables contains: 2 isa... 1
// relation", the 2 isa being $x's and $y's, not the relation variable's).
func ConjunctionConcludables(c *pattern.Conjunction) []*Concludable {
	var out []*Concludable
	for _, tv := range c.ThingVariables {
		var hasRelation bool
		for _, con := range tv.Constraints {
			if _, ok := con.(*pattern.RelationConstraint); ok {
				hasRelation = true
				break
			}
		}
		for _, con := range tv.Constraints {
			if hasRelation {
				if _, ok := con.(*pattern.IsaConstraint); ok {
					continue
				}
			}
			out = append(out, constraintConcludables(tv, con)...)
		}
	}
	return out
}

func constraintConcludables(owner *pattern.ThingVariable, con pattern.ThingConstraint) []*Concludable {
	switch c := con.(type) {
	case *pattern.IsaConstraint:
		return []*Concludable{{Kind: ConcludableIsa, Owner: owner, Isa: c}}
	case *pattern.HasConstraint:
		return []*Concludable{{Kind: ConcludableHas, Owner: owner, Has: c}}
	case *pattern.RelationConstraint:
		return []*Concludable{{Kind: ConcludableRelation, Owner: owner, Relation: c}}
	case *pattern.ValueConstraint:
		if !c.IsVariableComparison() {
			return []*Concludable{{Kind: ConcludableValue, Owner: owner, Value: c}}
		}
	}
	return nil
}

// HintSet returns the concrete types this concludable could produce or
// match against: the isa target's hint set for an isa concludable, the
// named attribute type for a has concludable (falling back to the
// attribute variable's own isa hint set if the has constraint names no
// type), and the owning variable's hint set otherwise.
func (c *Concludable) HintSet(sg *schema.Graph) *schema.HintSet {
	switch c.Kind {
	case ConcludableIsa:
		return schema.HintSetForVariable(sg, c.Isa.Type)
	case ConcludableHas:
		if c.Has.Type != "" {
			hs := sg.NewHintSet()
			if t, err := sg.Type(c.Has.Type); err == nil {
				hs.AddAll(t.SubtypesAndSelf())
			}
			return hs
		}
		return schema.HintSetForVariable(sg, c.Has.Attribute)
	default:
		return schema.HintSetForVariable(sg, c.Owner)
	}
}
