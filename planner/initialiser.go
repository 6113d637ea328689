package planner

import (
	"sort"

	"github.com/graphcore-db/graphcore/planner/solver"
	"github.com/graphcore-db/graphcore/structure"
)

// initialise is the "Initialiser" warm start (§4.5): a greedy BFS from
// the cheapest vertex, ordering edges by ascending recorded cost, used to
// seed every MIP variable before the first solve (or whenever the cache
// is invalidated). Self-closure backward edges — an edge whose both
// directions would reconnect to an already-visited vertex pair with no
// new vertex reached — are skipped in the seed, matching §4.5.
func initialise(m *model, costOf func(*structure.Edge, Direction) float64) map[solver.VarID]float64 {
	hint := map[solver.VarID]float64{}

	type cand struct {
		d    *directedEdge
		cost float64
	}
	var all []cand
	for _, d := range m.dirs {
		all = append(all, cand{d, costOf(d.edge, d.direction)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].cost < all[j].cost })

	visited := map[structure.VertexID]bool{}
	var start structure.VertexID
	haveStart := false
	var orderedDirs []*directedEdge

	// seed visited with the cheapest vertex overall (by cheapest
	// incident directed edge's source).
	if len(all) > 0 {
		start = all[0].d.from
		haveStart = true
		visited[start] = true
	} else if len(m.s.Vertices) > 0 {
		start = m.s.Vertices[0].ID
		haveStart = true
	}

	for _, c := range all {
		d := c.d
		fromVisited, toVisited := visited[d.from], visited[d.to]
		if fromVisited && toVisited {
			continue // self-closure: skip in the seed per §4.5
		}
		if !fromVisited && !toVisited {
			continue // not yet reachable from the frontier; revisit later
		}
		orderedDirs = append(orderedDirs, d)
		visited[d.from] = true
		visited[d.to] = true
	}
	// second pass to pick up any edges left stranded by ordering above
	// (disconnected at first glance but reachable once more of the
	// frontier is visited).
	changed := true
	for changed {
		changed = false
		for _, c := range all {
			d := c.d
			already := false
			for _, o := range orderedDirs {
				if o.edge.ID == d.edge.ID {
					already = true
					break
				}
			}
			if already {
				continue
			}
			fromVisited, toVisited := visited[d.from], visited[d.to]
			if fromVisited != toVisited {
				orderedDirs = append(orderedDirs, d)
				visited[d.from] = true
				visited[d.to] = true
				changed = true
			}
		}
	}

	if haveStart {
		hint[m.startVar[start]] = 1
		for v, id := range m.startVar {
			if v != start {
				hint[id] = 0
			}
		}
	}

	for i, d := range orderedDirs {
		hint[d.x] = 1
		other := m.byEdge[d.edge.ID][1-dirIndex(d.direction)]
		hint[other.x] = 0
		hint[m.orderVar[d.edge.ID]] = float64(i)
		for slot := range m.s.Edges {
			v := 0.0
			if slot == i {
				v = 1
			}
			hint[m.placeVar[[2]int{d.edge.ID, slot}]] = v
		}
	}

	return hint
}

func dirIndex(d Direction) int {
	if d == Forward {
		return 0
	}
	return 1
}
