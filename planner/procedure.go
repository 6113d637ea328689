package planner

import "github.com/graphcore-db/graphcore/structure"

// Direction is the traversal direction a ProcedureEdge walks its
// originating structural edge in.
type Direction byte

const (
	Forward Direction = iota
	Backward
)

// ProcedureVertex mirrors a structure.Vertex; it is the executor's unit
// of binding.
type ProcedureVertex struct {
	structure.VertexID
	Var interface{} // pattern.Variable, kept untyped here to avoid an import cycle with structure
}

// ProcedureEdge is one directional transition in the traversal order
// (§3). Order is the edge's position, ascending from 0.
type ProcedureEdge struct {
	Order     int
	Structure *structure.Edge
	Direction Direction
	From, To  structure.VertexID
}

// Procedure is the Planner's output (§3, Glossary): an ordered sequence of
// vertices and edge transitions, with exactly one designated starting
// vertex. Invariants (checked by Validate): edge ordering is a valid
// traversal order (every edge's source is either the start vertex or the
// target of an earlier edge), and every pattern variable appears exactly
// once as a vertex.
type Procedure struct {
	Structure *structure.Structure
	Start     structure.VertexID
	Edges     []*ProcedureEdge // ascending Order
}

// Validate checks the two invariants named in §3 and exercised by the
// Plan completeness testable property (§8).
func (p *Procedure) Validate() error {
	reached := map[structure.VertexID]bool{p.Start: true}
	seenAsTarget := map[structure.VertexID]bool{}
	for _, e := range p.Edges {
		if !reached[e.From] {
			return errProcedureNotConnected(e)
		}
		reached[e.To] = true
		seenAsTarget[e.To] = true
	}
	for _, v := range p.Structure.Vertices {
		if v.ID != p.Start && !seenAsTarget[v.ID] {
			return errProcedureIncomplete(v)
		}
	}
	return nil
}
