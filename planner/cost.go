package planner

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

// edgeCost implements the §4.5 "updateObjective(SchemaGraph)" cost
// formulas, one branch per structural edge category/native kind and
// traversal direction. Costs are plain float64 estimates; the Planner
// never needs their provenance beyond feeding the MIP objective.
func edgeCost(g *schema.Graph, s *structure.Structure, e *structure.Edge, dir Direction) float64 {
	target := e.To
	if dir == Backward {
		target = e.From
	}
	targetHints := vertexHintSet(g, s, s.Vertices[target])

	switch e.Category {
	case structure.EdgePredicate:
		if targetHints.Size() > 0 {
			return float64(targetHints.Size())
		}
		return float64(g.ComparableAttributeTypeCount(allValueKinds))

	case structure.EdgeNative:
		switch e.Native {
		case structure.NativeIsa:
			if dir == Forward {
				return isaForwardCost(targetHints)
			}
			return isaBackwardCost(g, targetHints)

		case structure.NativeHas:
			return hasCost(g, s, e, dir)

		case structure.NativePlaying, structure.NativeRelating, structure.NativeRolePlayer:
			return rolePlayerCost(g, s, e, dir)

		default:
			// sub/owns/plays/relates: schema-only edges, small fixed
			// traversal cost dominated by the (typically tiny) type DAG
			// fan-out rather than instance volume.
			return 1
		}
	default:
		return 1
	}
}

var allValueKinds = []core.ValueKind{
	core.ValueKindBool, core.ValueKindLong, core.ValueKindDouble,
	core.ValueKindString, core.ValueKindDateTime,
}

// isaForwardCost: "subtype depth of target's labels" — forward Isa walks
// thing -> type, so the cost approximates how far down the DAG the
// matching has to search once the concrete type is known.
func isaForwardCost(targetHints *schema.HintSet) float64 {
	types := targetHints.Types()
	if len(types) == 0 {
		return 1
	}
	maxDepth := 0
	for _, t := range types {
		if d := t.Depth(); d > maxDepth {
			maxDepth = d
		}
	}
	return float64(maxDepth + 1)
}

// isaBackwardCost: instancesMax(types), a range scan over every instance
// of the target type set.
func isaBackwardCost(g *schema.Graph, targetHints *schema.HintSet) float64 {
	types := targetHints.Types()
	if len(types) == 0 {
		return 1
	}
	return float64(g.InstancesMax(types))
}

// hasCost: average countHasEdges(owner,attr)/instancesCount(owner) over
// the relevant owner set, in either direction (the ratio is the expected
// fan-out of a HAS prefix scan per owner instance).
func hasCost(g *schema.Graph, s *structure.Structure, e *structure.Edge, dir Direction) float64 {
	ownerVertex, attrVertex := e.From, e.To
	if dir == Backward {
		ownerVertex, attrVertex = e.To, e.From
	}
	owners := vertexHintSet(g, s, s.Vertices[ownerVertex]).Types()
	attrs := vertexHintSet(g, s, s.Vertices[attrVertex]).Types()
	if len(owners) == 0 || len(attrs) == 0 {
		return 1
	}
	var total float64
	for _, o := range owners {
		inst := g.InstancesCountTransitive(o)
		if inst == 0 {
			continue
		}
		total += float64(g.CountHasEdges([]*schema.TypeVertex{o}, attrs)) / float64(inst)
	}
	return total / float64(len(owners))
}

// rolePlayerCost: ratio of transitive role-type instance counts to the
// relevant partition's transitive counts, for playing/relating/
// role-player native edges alike (they share the same estimator since
// all three are instance-to-instance edges mediated by a role type).
func rolePlayerCost(g *schema.Graph, s *structure.Structure, e *structure.Edge, dir Direction) float64 {
	target := e.To
	if dir == Backward {
		target = e.From
	}
	hints := vertexHintSet(g, s, s.Vertices[target])
	types := hints.Types()
	if len(types) == 0 {
		return 1
	}
	roleInstances := g.InstancesMax(types)
	partitionTotal := g.InstancesCountTransitive(g.Root(types[0].Partition))
	if partitionTotal == 0 {
		return float64(roleInstances)
	}
	return float64(roleInstances) / float64(partitionTotal)
}
