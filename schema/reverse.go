package schema

// OwnersOfAttributeType returns every type that directly owns attr — the
// reverse of TypeVertex.Owns, which only records the forward direction.
// Used by the executor's backward Owns producer (§4.4/§4.6).
func (g *Graph) OwnersOfAttributeType(attr *TypeVertex) []*TypeVertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*TypeVertex
	for _, t := range g.byLabel {
		if t.Owns[attr] {
			out = append(out, t)
		}
	}
	return out
}

// PlayersOfRoleType returns every type that directly plays role — the
// reverse of TypeVertex.Plays.
func (g *Graph) PlayersOfRoleType(role *TypeVertex) []*TypeVertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []*TypeVertex
	for _, t := range g.byLabel {
		for _, r := range t.Plays {
			if r == role {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
