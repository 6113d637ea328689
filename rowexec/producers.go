package rowexec

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

// attrsAdapter/rolePlayerAdapter bridge the graph package's
// edge cursors (whose "value" accessor is named IID()/Other() rather than
// the raw Key() a plain instance scan exposes) to idIter.

type attrsCursor interface {
	Valid() bool
	IID() core.IID
	Next()
	Close() error
}

type attrsAdapter struct{ c attrsCursor }

func (a attrsAdapter) Next() (core.IID, bool, error) {
	if !a.c.Valid() {
		return nil, false, nil
	}
	iid := a.c.IID()
	a.c.Next()
	return iid, true, nil
}
func (a attrsAdapter) Close() error { return a.c.Close() }

type rolePlayerCursor interface {
	Valid() bool
	Other() core.IID
	Next()
	Close() error
}

type rolePlayerAdapter struct{ c rolePlayerCursor }

func (r rolePlayerAdapter) Next() (core.IID, bool, error) {
	if !r.c.Valid() {
		return nil, false, nil
	}
	iid := r.c.Other()
	r.c.Next()
	return iid, true, nil
}
func (r rolePlayerAdapter) Close() error { return r.c.Close() }

// instancesOf chains an instance scan over every type in types.
func instancesOf(g *graph.Graph, types []*schema.TypeVertex) (idIter, error) {
	var iters []idIter
	for _, t := range types {
		c, err := g.InstancesOf(t)
		if err != nil {
			return nil, err
		}
		iters = append(iters, &cursorIDIter{cursor: c})
	}
	return chain(iters...), nil
}

func roleLabelSet(roleTypes []string) map[string]bool {
	if len(roleTypes) == 0 {
		return nil
	}
	out := make(map[string]bool, len(roleTypes))
	for _, r := range roleTypes {
		out[r] = true
	}
	return out
}

// produce returns the candidate stream for pe.To, given pe.From is
// already bound to fromIID (§4.6: one producer per native edge kind,
// mirroring the Planner's §4.5 cost-formula dispatch one-for-one).
func produce(g *graph.Graph, sg *schema.Graph, s *structure.Structure, pe *planner.ProcedureEdge, fromIID core.IID) (idIter, error) {
	e := pe.Structure

	switch e.Category {
	case structure.EdgeEqual:
		return single(fromIID), nil

	case structure.EdgePredicate:
		return predicateProducer(g, sg, s, pe, fromIID)

	case structure.EdgeNative:
		return nativeProducer(g, sg, s, pe, fromIID)
	}
	return single(nil), nil
}

func nativeProducer(g *graph.Graph, sg *schema.Graph, s *structure.Structure, pe *planner.ProcedureEdge, fromIID core.IID) (idIter, error) {
	e := pe.Structure
	switch e.Native {
	case structure.NativeIsa:
		if pe.Direction == planner.Forward {
			t, err := g.TypeOf(fromIID)
			if err != nil {
				return nil, err
			}
			return single(t.IID), nil
		}
		t, err := sg.TypeByIID(fromIID)
		if err != nil {
			return nil, err
		}
		isa, _ := e.Constraint.(*pattern.IsaConstraint)
		types := []*schema.TypeVertex{t}
		if isa == nil || !isa.Explicit {
			types = t.SubtypesAndSelf()
		}
		return instancesOf(g, types)

	case structure.NativeHas:
		if pe.Direction == planner.Forward {
			c, err := g.AttributesOf(fromIID)
			if err != nil {
				return nil, err
			}
			return attrsAdapter{c: &c}, nil
		}
		c, err := g.OwnersOf(fromIID)
		if err != nil {
			return nil, err
		}
		return attrsAdapter{c: &c}, nil

	case structure.NativeRolePlayer, structure.NativePlaying, structure.NativeRelating:
		roles := roleLabelSet(e.RoleTypes)
		if pe.Direction == planner.Forward {
			c, err := g.PlayersOf(fromIID, roles)
			if err != nil {
				return nil, err
			}
			return rolePlayerAdapter{c: &c}, nil
		}
		c, err := g.RelationsOf(fromIID, roles)
		if err != nil {
			return nil, err
		}
		return rolePlayerAdapter{c: &c}, nil

	case structure.NativeSub:
		t, err := sg.TypeByIID(fromIID)
		if err != nil {
			return nil, err
		}
		if pe.Direction == planner.Forward {
			if t.Sub == nil {
				return single(nil), nil
			}
			return single(t.Sub.IID), nil
		}
		var out []core.IID
		for _, c := range t.SubTypes {
			out = append(out, c.IID)
		}
		return fromSlice(out), nil

	case structure.NativeOwns:
		t, err := sg.TypeByIID(fromIID)
		if err != nil {
			return nil, err
		}
		if pe.Direction == planner.Forward {
			var out []core.IID
			for attr := range t.Owns {
				out = append(out, attr.IID)
			}
			return fromSlice(out), nil
		}
		var out []core.IID
		for _, owner := range sg.OwnersOfAttributeType(t) {
			out = append(out, owner.IID)
		}
		return fromSlice(out), nil

	case structure.NativePlays:
		t, err := sg.TypeByIID(fromIID)
		if err != nil {
			return nil, err
		}
		if pe.Direction == planner.Forward {
			var out []core.IID
			for _, r := range t.Plays {
				out = append(out, r.IID)
			}
			return fromSlice(out), nil
		}
		var out []core.IID
		for _, player := range sg.PlayersOfRoleType(t) {
			out = append(out, player.IID)
		}
		return fromSlice(out), nil

	case structure.NativeRelates:
		t, err := sg.TypeByIID(fromIID)
		if err != nil {
			return nil, err
		}
		if pe.Direction == planner.Forward {
			var out []core.IID
			for _, r := range t.Relates {
				out = append(out, r.IID)
			}
			return fromSlice(out), nil
		}
		if t.RoleScope == nil {
			return single(nil), nil
		}
		return single(t.RoleScope.IID), nil
	}
	return single(nil), nil
}

// predicateProducer scans every instance of the target vertex's candidate
// types and filters by the stored comparator — Predicate edges have no
// index to seek through, matching the Planner's cost formula, which
// charges the full hint-set size (§4.5).
func predicateProducer(g *graph.Graph, sg *schema.Graph, s *structure.Structure, pe *planner.ProcedureEdge, fromIID core.IID) (idIter, error) {
	vc, _ := pe.Structure.Constraint.(*pattern.ValueConstraint)
	fromConcept, err := g.Concept(fromIID)
	if err != nil {
		return nil, err
	}

	types := schema.HintSetForVariable(sg, s.Vertices[pe.To].Var).Types()
	if len(types) == 0 {
		types = attributeTypeUniverse(sg)
	}
	base, err := instancesOf(g, types)
	if err != nil {
		return nil, err
	}
	if vc == nil {
		return base, nil
	}
	return filter(base, func(candidate core.IID) (bool, error) {
		cc, err := g.Concept(candidate)
		if err != nil {
			return false, err
		}
		return compareValues(vc.Op, cc.Value, fromConcept.Value), nil
	}), nil
}

func attributeTypeUniverse(sg *schema.Graph) []*schema.TypeVertex {
	root := sg.Root(core.PartitionAttribute)
	if root == nil {
		return nil
	}
	return root.Subtypes()
}
