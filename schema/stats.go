package schema

import "github.com/graphcore-db/graphcore/core"

// Statistics consumed by the Planner's cost formulas (§4.5) and by the
// Reasoner's hint-set compatibility checks (§4.7).

// InstancesCount returns the direct instance count of t alone.
func (g *Graph) InstancesCount(t *TypeVertex) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.instanceCounts[t.id]
}

// InstancesMax returns the maximum, over the given types, of each type's
// transitive instance count — the Isa-backward cost formula (§4.5).
func (g *Graph) InstancesMax(types []*TypeVertex) int64 {
	var max int64
	for _, t := range types {
		c := g.InstancesCountTransitive(t)
		if c > max {
			max = c
		}
	}
	return max
}

// InstancesCountTransitive sums t's direct count plus every subtype's.
func (g *Graph) InstancesCountTransitive(t *TypeVertex) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	total := g.instanceCounts[t.id]
	for _, s := range t.Subtypes() {
		total += g.instanceCounts[s.id]
	}
	return total
}

// SubtypeCount is direct (transitive=false) or transitive subtype count.
func (g *Graph) SubtypeCount(t *TypeVertex, transitive bool) int {
	if transitive {
		return len(t.Subtypes())
	}
	return len(t.SubTypes)
}

// MeanOutDegree averages the number of owns/plays/relates edges across a
// slice of types, used by Planner cost formulas that estimate branching
// factor for a partition (§4.5's `bf`).
func MeanOutDegree(types []*TypeVertex, edge func(*TypeVertex) int) float64 {
	if len(types) == 0 {
		return 0
	}
	var total int
	for _, t := range types {
		total += edge(t)
	}
	return float64(total) / float64(len(types))
}

// CountHasEdges sums recorded HAS edges between every (owner, attr) pair
// drawn from the two type sets (§4.2).
func (g *Graph) CountHasEdges(owners, attrs []*TypeVertex) int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var total int64
	for _, o := range owners {
		for _, a := range attrs {
			total += g.hasEdgeCounts[[2]uint32{o.id, a.id}]
		}
	}
	return total
}

// ComparableAttributeTypeCount counts how many Attribute-partition types
// have a ValueKind comparable (core.ValueKind.Comparable) to any kind in
// kinds — the attribute-types-count term in the Predicate(EQ) cost
// formula (§4.5) when no concrete type set is already known.
func (g *Graph) ComparableAttributeTypeCount(kinds []core.ValueKind) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, t := range g.byLabel {
		if t.Partition != core.PartitionAttribute {
			continue
		}
		for _, k := range kinds {
			if t.ValueKind.Comparable(k) {
				count++
				break
			}
		}
	}
	return count
}
