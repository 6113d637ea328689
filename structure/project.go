package structure

import "github.com/graphcore-db/graphcore/pattern"

// Project builds the graph projection of a Conjunction (§4.4): one vertex
// per variable, one edge per inter-variable constraint, categorised into
// Equal/Predicate/Native. Negations and disjunctions are planned/executed
// as their own nested sub-structures and are not flattened in here.
func Project(c *pattern.Conjunction) *Structure {
	s := New()

	for _, tv := range c.ThingVariables {
		s.AddVertex(tv)
	}
	for _, tv := range c.TypeVariables {
		s.AddVertex(tv)
	}

	for _, tv := range c.ThingVariables {
		from := s.AddVertex(tv)
		for _, con := range tv.Constraints {
			projectThingConstraint(s, from, con)
		}
	}
	for _, tv := range c.TypeVariables {
		from := s.AddVertex(tv)
		for _, con := range tv.Constraints {
			projectTypeConstraint(s, from, con)
		}
	}
	return s
}

func projectThingConstraint(s *Structure, from VertexID, con pattern.ThingConstraint) {
	switch c := con.(type) {
	case *pattern.IsaConstraint:
		to := s.AddVertex(c.Type)
		s.AddEdge(EdgeNative, NativeIsa, from, to, c, nil)
	case *pattern.HasConstraint:
		to := s.AddVertex(c.Attribute)
		s.AddEdge(EdgeNative, NativeHas, from, to, c, nil)
	case *pattern.RelationConstraint:
		for _, rp := range c.Players {
			to := s.AddVertex(rp.Player)
			s.AddEdge(EdgeNative, NativeRolePlayer, from, to, c, rp.RoleTypes)
		}
	case *pattern.ValueConstraint:
		if c.IsVariableComparison() {
			to := s.AddVertex(c.OperandVar)
			s.AddEdge(EdgePredicate, 0, from, to, c, nil)
		} else {
			v := s.Vertices[from]
			v.PropertyConstraints = append(v.PropertyConstraints, c)
		}
	case *pattern.IIDConstraint:
		v := s.Vertices[from]
		v.PropertyConstraints = append(v.PropertyConstraints, c)
	case *pattern.IsConstraint:
		to := s.AddVertex(c.Other)
		s.AddEdge(EdgeEqual, 0, from, to, c, nil)
	}
}

func projectTypeConstraint(s *Structure, from VertexID, con pattern.TypeConstraint) {
	switch c := con.(type) {
	case *pattern.LabelConstraint, *pattern.ValueTypeConstraint, *pattern.RegexConstraint:
		v := s.Vertices[from]
		v.PropertyConstraints = append(v.PropertyConstraints, c)
	case *pattern.SubConstraint:
		to := s.AddVertex(c.Parent)
		s.AddEdge(EdgeNative, NativeSub, from, to, c, nil)
	case *pattern.OwnsConstraint:
		to := s.AddVertex(c.Attribute)
		s.AddEdge(EdgeNative, NativeOwns, from, to, c, nil)
	case *pattern.PlaysConstraint:
		to := s.AddVertex(c.Role)
		s.AddEdge(EdgeNative, NativePlays, from, to, c, nil)
	case *pattern.RelatesConstraint:
		to := s.AddVertex(c.Role)
		s.AddEdge(EdgeNative, NativeRelates, from, to, c, nil)
	}
}
