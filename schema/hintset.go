package schema

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/graphcore-db/graphcore/pattern"
)

// HintSet is the "inferred set of concrete type labels a typed variable
// may resolve to" (Glossary). Backed by a roaring bitmap over dense type
// ids rather than a Go set, so the Planner's cost formulas and the
// Reasoner's unifier can intersect/size hint sets with bitwise operations
// instead of map walks — this plays the membership-test role the
// teacher's pilosa-backed index played, without requiring pilosa's
// external server process (see DESIGN.md).
type HintSet struct {
	bitmap *roaring.Bitmap
	g      *Graph
}

func newHintSet(g *Graph) *HintSet {
	return &HintSet{bitmap: roaring.New(), g: g}
}

func (h *HintSet) Add(t *TypeVertex) { h.bitmap.Add(t.id) }

func (h *HintSet) AddAll(ts []*TypeVertex) {
	for _, t := range ts {
		h.Add(t)
	}
}

// Size is the number of concrete types in the hint set — this is exactly
// the quantity the Planner's Predicate(EQ) cost formula reads (§4.5).
func (h *HintSet) Size() int { return int(h.bitmap.GetCardinality()) }

// Intersects reports whether h and other share any concrete type — the
// compatibility check the Reasoner's unifier performs between a rule
// head's hint set and a concludable's hint set (§4.7).
func (h *HintSet) Intersects(other *HintSet) bool {
	return h.bitmap.Intersects(other.bitmap)
}

// Types materialises the hint set back into TypeVertex pointers; callers
// on a hot path should prefer Size/Intersects, which never leave the
// bitmap representation.
func (h *HintSet) Types() []*TypeVertex {
	out := make([]*TypeVertex, 0, h.Size())
	it := h.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, h.g.byID[it.Next()])
	}
	return out
}

// HintSetForVariable computes the Glossary's hint set for a variable: the
// concrete types it may resolve to, read off any label constraint it (or,
// for a thing variable, its isa target) directly carries. Used by the
// executor's Predicate producer and the Reasoner's unifier (§4.6, §4.7);
// the Planner's cost formulas compute the same set through their own
// planner.vertexHintSet.
func HintSetForVariable(g *Graph, v pattern.Variable) *HintSet {
	hs := g.NewHintSet()
	switch tv := v.(type) {
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
			isa, ok := c.(*pattern.IsaConstraint)
			if !ok {
				continue
			}
			for _, lc := range isa.Type.Constraints {
				l, ok := lc.(*pattern.LabelConstraint)
				if !ok {
					continue
				}
				t, err := g.Type(l.Label)
				if err != nil {
					continue
				}
				if isa.Explicit {
					hs.Add(t)
				} else {
					hs.AddAll(t.SubtypesAndSelf())
				}
			}
		}
	}
	return hs
}
