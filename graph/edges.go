package graph

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/encoding"
	"github.com/graphcore-db/graphcore/schema"
)

// PutHas records a has edge between an owner thing and an attribute
// instance, both directions, and bumps the owner-type/attr-type edge
// count the Planner's hasCost formula reads (§4.2, §4.5).
func (w *Writer) PutHas(owner, attr core.IID) error {
	w.batch.Put(hasKey(owner, attr), nil)
	w.batch.Put(hasByAttrKey(owner, attr), nil)

	ownerType, err := w.g.TypeOf(owner)
	if err != nil {
		return err
	}
	attrType, err := w.g.TypeOf(attr)
	if err != nil {
		return err
	}
	w.g.schema.RecordHasEdge(ownerType, attrType, 1)
	return nil
}

// DeleteHas removes a has edge and decrements the owner/attr-type count.
func (w *Writer) DeleteHas(owner, attr core.IID) error {
	w.batch.Delete(hasKey(owner, attr))
	w.batch.Delete(hasByAttrKey(owner, attr))
	ownerType, err := w.g.TypeOf(owner)
	if err != nil {
		return err
	}
	attrType, err := w.g.TypeOf(attr)
	if err != nil {
		return err
	}
	w.g.schema.RecordHasEdge(ownerType, attrType, -1)
	return nil
}

func hasKey(owner, attr core.IID) []byte {
	k := append([]byte{byte(encoding.PrefixHas)}, owner...)
	return append(k, attr...)
}

func hasByAttrKey(owner, attr core.IID) []byte {
	k := append([]byte{byte(encoding.PrefixHasByAttr)}, attr...)
	return append(k, owner...)
}

// OwnersOf range-scans every has edge pointing at attr, yielding owner
// IIDs — the backward Has traversal direction (§4.5 hasCost backward).
func (g *Graph) OwnersOf(attr core.IID) (kvCursorAttrs, error) {
	c, err := g.store.SeekPrefix(append([]byte{byte(encoding.PrefixHasByAttr)}, attr...))
	if err != nil {
		return kvCursorAttrs{}, err
	}
	return kvCursorAttrs{cursor: c, prefixLen: 1 + len(attr)}, nil
}

// AttributesOf range-scans every has edge owner has, yielding attr IIDs —
// the forward Has traversal direction.
func (g *Graph) AttributesOf(owner core.IID) (kvCursorAttrs, error) {
	c, err := g.store.SeekPrefix(append([]byte{byte(encoding.PrefixHas)}, owner...))
	if err != nil {
		return kvCursorAttrs{}, err
	}
	return kvCursorAttrs{cursor: c, prefixLen: 1 + len(owner)}, nil
}

// kvCursorAttrs adapts a raw key-value cursor to yield just the IID
// suffix following the fixed (prefix ∥ anchor) portion of every key in
// one of these edge scans.
type kvCursorAttrs struct {
	cursor interface {
		Valid() bool
		Key() []byte
		Next()
		Close() error
	}
	prefixLen int
}

func (c kvCursorAttrs) Valid() bool { return c.cursor != nil && c.cursor.Valid() }
func (c kvCursorAttrs) IID() core.IID {
	k := c.cursor.Key()
	return core.IID(append([]byte(nil), k[c.prefixLen:]...))
}
func (c kvCursorAttrs) Next() { c.cursor.Next() }
func (c kvCursorAttrs) Close() error {
	if c.cursor == nil {
		return nil
	}
	return c.cursor.Close()
}

// PutRolePlayer records a relation instance's role-player edge, forward
// (relation -> player, keyed by role type so the executor can filter by
// RoleTypes, §4.4) and reverse (player -> relation, for the backward
// RolePlayer traversal direction a $x isa person, $x... scenario needs).
func (w *Writer) PutRolePlayer(relation core.IID, role *schema.TypeVertex, player core.IID) error {
	w.batch.Put(rolePlayerKey(relation, role, player), nil)
	w.batch.Put(rolePlayerByPlayerKey(relation, role, player), nil)
	return nil
}

func (w *Writer) DeleteRolePlayer(relation core.IID, role *schema.TypeVertex, player core.IID) {
	w.batch.Delete(rolePlayerKey(relation, role, player))
	w.batch.Delete(rolePlayerByPlayerKey(relation, role, player))
}

func rolePlayerKey(relation core.IID, role *schema.TypeVertex, player core.IID) []byte {
	k := append([]byte{byte(encoding.PrefixRolePlayer)}, relation...)
	k = append(k, role.IID...)
	return append(k, player...)
}

func rolePlayerByPlayerKey(relation core.IID, role *schema.TypeVertex, player core.IID) []byte {
	k := append([]byte{byte(encoding.PrefixRolePlayerByPlayer)}, player...)
	k = append(k, role.IID...)
	return append(k, relation...)
}

// PlayersOf range-scans every role-player edge off relation, optionally
// restricted to one of allowedRoles (empty means unconstrained, mirroring
// RolePlayer.RoleTypes, §4.4).
func (g *Graph) PlayersOf(relation core.IID, allowedRoles map[string]bool) (rolePlayerCursor, error) {
	c, err := g.store.SeekPrefix(append([]byte{byte(encoding.PrefixRolePlayer)}, relation...))
	if err != nil {
		return rolePlayerCursor{}, err
	}
	return rolePlayerCursor{cursor: c, anchorLen: 1 + len(relation), sg: g.schema, allowedRoles: allowedRoles}, nil
}

// RelationsOf range-scans every role-player edge with player as the
// player side — the backward RolePlayer traversal direction.
func (g *Graph) RelationsOf(player core.IID, allowedRoles map[string]bool) (rolePlayerCursor, error) {
	c, err := g.store.SeekPrefix(append([]byte{byte(encoding.PrefixRolePlayerByPlayer)}, player...))
	if err != nil {
		return rolePlayerCursor{}, err
	}
	return rolePlayerCursor{cursor: c, anchorLen: 1 + len(player), sg: g.schema, allowedRoles: allowedRoles, reversed: true}, nil
}

type rolePlayerCursor struct {
	cursor interface {
		Valid() bool
		Key() []byte
		Next()
		Close() error
	}
	anchorLen    int
	sg           *schema.Graph
	allowedRoles map[string]bool
	reversed     bool
}

func (c *rolePlayerCursor) Valid() bool {
	c.skipDisallowed()
	return c.cursor != nil && c.cursor.Valid()
}

// skipDisallowed advances past entries whose encoded role type isn't in
// allowedRoles, so callers never observe a filtered-out pair.
func (c *rolePlayerCursor) skipDisallowed() {
	if len(c.allowedRoles) == 0 {
		return
	}
	for c.cursor != nil && c.cursor.Valid() {
		roleIID := c.roleIID()
		t, err := c.sg.TypeByIID(roleIID)
		if err == nil && c.allowedRoles[t.Label] {
			return
		}
		c.cursor.Next()
	}
}

func (c *rolePlayerCursor) roleIID() core.IID {
	k := c.cursor.Key()
	return core.IID(k[c.anchorLen : c.anchorLen+3]) // encoding.TypeIIDSize
}

// Other returns the far-side thing IID of the current role-player pair:
// the player if scanning PlayersOf, the relation if scanning RelationsOf.
func (c *rolePlayerCursor) Other() core.IID {
	k := c.cursor.Key()
	return core.IID(append([]byte(nil), k[c.anchorLen+3:]...))
}

func (c *rolePlayerCursor) Role() (*schema.TypeVertex, error) {
	return c.sg.TypeByIID(c.roleIID())
}

func (c *rolePlayerCursor) Next() { c.cursor.Next() }
func (c *rolePlayerCursor) Close() error {
	if c.cursor == nil {
		return nil
	}
	return c.cursor.Close()
}
