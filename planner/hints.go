package planner

import (
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

// vertexHintSet computes the Glossary's "hint set" for a vertex: the
// concrete types it may resolve to, read off any label constraint it (or,
// for a thing vertex, its isa target) directly carries. A vertex with no
// resolvable label constraint returns an empty hint set, signalling
// "unknown" to the cost formulas, which fall back to a coarser estimate.
func vertexHintSet(g *schema.Graph, s *structure.Structure, v *structure.Vertex) *schema.HintSet {
	hs := g.NewHintSet()
	switch tv := v.Var.(type) {
	case *pattern.TypeVariable:
		for _, c := range tv.Constraints {
			if lc, ok := c.(*pattern.LabelConstraint); ok {
				if t, err := g.Type(lc.Label); err == nil {
					hs.AddAll(t.SubtypesAndSelf())
				}
			}
		}
	case *pattern.ThingVariable:
		for _, c := range tv.Constraints {
			if isa, ok := c.(*pattern.IsaConstraint); ok {
				for _, lc := range isa.Type.Constraints {
					if l, ok := lc.(*pattern.LabelConstraint); ok {
						if t, err := g.Type(l.Label); err == nil {
							if isa.Explicit {
								hs.Add(t)
							} else {
								hs.AddAll(t.SubtypesAndSelf())
							}
						}
					}
				}
			}
		}
	}
	return hs
}
