// Package structure projects a pattern.Conjunction into the graph the
// Planner optimises over: one vertex per variable, one edge per
// inter-variable constraint (§4.4, §9: vertices live in an arena keyed by
// variable identifier, edges reference vertices by index — no pointer
// cycles).
package structure

import "github.com/graphcore-db/graphcore/pattern"

// VertexID indexes into a Structure's Vertices slice.
type VertexID int

// Vertex is one projected variable.
type Vertex struct {
	ID  VertexID
	Var pattern.Variable
	// PropertyConstraints are vertex-local (not inter-variable) property
	// constraints the executor intersects against a binding: types,
	// labels, iid (§4.6).
	PropertyConstraints []interface{}
}

// EdgeCategory classifies a Structure edge (§4.4).
type EdgeCategory byte

const (
	// EdgeEqual is a variable-identity edge ($x is $y).
	EdgeEqual EdgeCategory = iota
	// EdgePredicate is a value comparison between two thing variables.
	EdgePredicate
	// EdgeNative is isa/sub/owns/plays/relates/has/playing/relating/
	// role-player — a native graph edge with planner-supplied cost.
	EdgeNative
)

// NativeKind distinguishes the native edge constraint kinds.
type NativeKind byte

const (
	NativeIsa NativeKind = iota
	NativeSub
	NativeOwns
	NativePlays
	NativeRelates
	NativeHas
	NativePlaying
	NativeRelating
	NativeRolePlayer
)

// Edge is one projected inter-variable constraint. From and To are
// indices into the owning Structure's Vertices; direction is meaningful
// only for edges that aren't symmetric (isa, has, owns, ...).
type Edge struct {
	ID       int
	Category EdgeCategory
	Native   NativeKind // meaningful only if Category == EdgeNative
	From, To VertexID
	// RoleTypes is the allowed role-type label set for a RolePlayer edge
	// (§4.4).
	RoleTypes []string
	// Constraint is the originating pattern constraint, kept so the
	// Planner's per-edge-type cost formula and the executor's iterator
	// producer can recover full detail without re-deriving it.
	Constraint interface{}
}

// Structure is the graph projection of one Conjunction (§4.4, §9). Type-
// only and thing-only subgraphs are represented in the same Structure and
// planned jointly whenever an Isa edge connects them.
type Structure struct {
	Vertices []*Vertex
	Edges    []*Edge

	byRef map[string]VertexID
}

func New() *Structure {
	return &Structure{byRef: map[string]VertexID{}}
}

// AddVertex inserts v if its reference isn't already present, returning
// the (possibly pre-existing) vertex id — this is what lets an edge
// reference a variable declared earlier in the same conjunction without
// double-allocating its vertex.
func (s *Structure) AddVertex(v pattern.Variable) VertexID {
	key := v.Ref().String()
	if id, ok := s.byRef[key]; ok {
		return id
	}
	id := VertexID(len(s.Vertices))
	s.Vertices = append(s.Vertices, &Vertex{ID: id, Var: v})
	s.byRef[key] = id
	return id
}

func (s *Structure) AddEdge(category EdgeCategory, native NativeKind, from, to VertexID, constraint interface{}, roleTypes []string) *Edge {
	e := &Edge{
		ID:         len(s.Edges),
		Category:   category,
		Native:     native,
		From:       from,
		To:         to,
		RoleTypes:  roleTypes,
		Constraint: constraint,
	}
	s.Edges = append(s.Edges, e)
	return e
}

// Connected reports whether the Structure's underlying undirected graph
// is a single connected component — a precondition the Planner's plan-
// completeness property (§8) assumes.
func (s *Structure) Connected() bool {
	if len(s.Vertices) == 0 {
		return true
	}
	adj := make(map[VertexID][]VertexID, len(s.Vertices))
	for _, e := range s.Edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}
	seen := make(map[VertexID]bool, len(s.Vertices))
	stack := []VertexID{s.Vertices[0].ID}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, adj[n]...)
	}
	return len(seen) == len(s.Vertices)
}
