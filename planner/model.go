package planner

import (
	"github.com/graphcore-db/graphcore/planner/solver"
	"github.com/graphcore-db/graphcore/structure"
)

// directedEdge is one of the two directional variants of a structural
// edge: its MIP decision variable is whether the walk uses it in this
// direction.
type directedEdge struct {
	edge      *structure.Edge
	direction Direction
	from, to  structure.VertexID
	x         solver.VarID
	cost      float64
}

// model is the MIP formulation of §4.5, built once per optimise() call.
type model struct {
	s        *structure.Structure
	dirs     []*directedEdge          // 2 per structural edge, fwd then bwd
	byEdge   map[int][2]*directedEdge // structure.Edge.ID -> [fwd,bwd]
	orderVar map[int]solver.VarID     // structure.Edge.ID -> o_e
	placeVar map[[2]int]solver.VarID  // (edge.ID, position) -> a_{e,i}
	startVar map[structure.VertexID]solver.VarID
	endVar   map[structure.VertexID]solver.VarID
	inVar    map[structure.VertexID]solver.VarID
	outVar   map[structure.VertexID]solver.VarID
}

func buildModel(sv solver.MIPSolver, s *structure.Structure, costOf func(*structure.Edge, Direction) float64) *model {
	m := &model{
		s:        s,
		byEdge:   map[int][2]*directedEdge{},
		orderVar: map[int]solver.VarID{},
		placeVar: map[[2]int]solver.VarID{},
		startVar: map[structure.VertexID]solver.VarID{},
		endVar:   map[structure.VertexID]solver.VarID{},
		inVar:    map[structure.VertexID]solver.VarID{},
		outVar:   map[structure.VertexID]solver.VarID{},
	}
	numEdges := len(s.Edges)

	for _, e := range s.Edges {
		fwd := &directedEdge{edge: e, direction: Forward, from: e.From, to: e.To, cost: costOf(e, Forward)}
		bwd := &directedEdge{edge: e, direction: Backward, from: e.To, to: e.From, cost: costOf(e, Backward)}
		fwd.x = sv.NewBoolVar(edgeVarName(e, Forward))
		bwd.x = sv.NewBoolVar(edgeVarName(e, Backward))
		m.dirs = append(m.dirs, fwd, bwd)
		m.byEdge[e.ID] = [2]*directedEdge{fwd, bwd}

		// constraint 2: exactly one direction selected.
		sv.AddLinear("dir-"+edgeVarName(e, Forward), []solver.LinearTerm{
			{Var: fwd.x, Coeff: 1}, {Var: bwd.x, Coeff: 1},
		}, solver.OpEQ, 1)

		m.orderVar[e.ID] = sv.NewIntVar("o_e"+itoa(e.ID), 0, max(numEdges-1, 0))
	}

	for _, v := range s.Vertices {
		m.startVar[v.ID] = sv.NewBoolVar("start_" + itoa(int(v.ID)))
		m.endVar[v.ID] = sv.NewBoolVar("end_" + itoa(int(v.ID)))
		m.inVar[v.ID] = sv.NewBoolVar("in_" + itoa(int(v.ID)))
		m.outVar[v.ID] = sv.NewBoolVar("out_" + itoa(int(v.ID)))
	}

	// constraint 1: exactly one starting vertex.
	var startTerms []solver.LinearTerm
	for _, v := range s.Vertices {
		startTerms = append(startTerms, solver.LinearTerm{Var: m.startVar[v.ID], Coeff: 1})
	}
	sv.AddLinear("one-start", startTerms, solver.OpEQ, 1)

	// constraint 5 + the a/o linkage: exactly one edge per order
	// position, and a_{e,i} selects both x_e-agnostic placement and o_e.
	for _, e := range s.Edges {
		var sumA []solver.LinearTerm
		var sumIA []solver.LinearTerm
		for i := 0; i < numEdges; i++ {
			a := sv.NewBoolVar("a_" + itoa(e.ID) + "_" + itoa(i))
			m.placeVar[[2]int{e.ID, i}] = a
			sumA = append(sumA, solver.LinearTerm{Var: a, Coeff: 1})
			sumIA = append(sumIA, solver.LinearTerm{Var: a, Coeff: float64(i)})
		}
		sv.AddLinear("sumA-"+itoa(e.ID), sumA, solver.OpEQ, 1)
		sv.AddLinear("o-link-"+itoa(e.ID), append(sumIA, solver.LinearTerm{Var: m.orderVar[e.ID], Coeff: -1}), solver.OpEQ, 0)
	}
	for i := 0; i < numEdges; i++ {
		var terms []solver.LinearTerm
		for _, e := range s.Edges {
			terms = append(terms, solver.LinearTerm{Var: m.placeVar[[2]int{e.ID, i}], Coeff: 1})
		}
		sv.AddLinear("onePerSlot-"+itoa(i), terms, solver.OpEQ, 1)
	}

	// constraint 3: vertex flow.
	for _, v := range s.Vertices {
		for _, d := range m.dirs {
			if d.from == v.ID {
				sv.AddLinear("outflow-"+itoa(int(v.ID))+"-"+edgeVarName(d.edge, d.direction),
					[]solver.LinearTerm{{Var: m.outVar[v.ID], Coeff: 1}, {Var: d.x, Coeff: -1}}, solver.OpGE, 0)
			}
			if d.to == v.ID {
				sv.AddLinear("inflow-"+itoa(int(v.ID))+"-"+edgeVarName(d.edge, d.direction),
					[]solver.LinearTerm{{Var: m.inVar[v.ID], Coeff: 1}, {Var: d.x, Coeff: -1}}, solver.OpGE, 0)
			}
		}
		// A vertex with an outgoing successor cannot simultaneously be a
		// walk endpoint — ties end_v to out_v concretely, since §4.5's
		// big-M inequality alone under-constrains end_v.
		sv.AddLinear("end-out-"+itoa(int(v.ID)), []solver.LinearTerm{
			{Var: m.outVar[v.ID], Coeff: 1}, {Var: m.endVar[v.ID], Coeff: 1},
		}, solver.OpLE, 1)
	}

	// constraint 4: order-sequence, big-M linking successive edges
	// through a shared vertex.
	bigM := float64(numEdges + 1)
	for _, din := range m.dirs {
		v := din.to
		for _, dout := range m.dirs {
			if dout.from != v || dout.edge.ID == din.edge.ID {
				continue
			}
			// o_{e'} >= o_e + 1 - M(1-x_e) - M*end_v
			// <=> o_{e'} - o_e - M*x_e + M*end_v >= 1 - M
			sv.AddLinear("seq-"+edgeVarName(din.edge, din.direction)+"-"+edgeVarName(dout.edge, dout.direction),
				[]solver.LinearTerm{
					{Var: m.orderVar[dout.edge.ID], Coeff: 1},
					{Var: m.orderVar[din.edge.ID], Coeff: -1},
					{Var: din.x, Coeff: -bigM},
					{Var: m.endVar[v], Coeff: bigM},
				}, solver.OpGE, 1-bigM)
		}
	}
	return m
}

func edgeVarName(e *structure.Edge, d Direction) string {
	if d == Forward {
		return "xf_" + itoa(e.ID)
	}
	return "xb_" + itoa(e.ID)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
