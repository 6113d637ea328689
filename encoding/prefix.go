// Package encoding defines the byte layout of every key the core writes to
// or reads from the ordered key-value store (§3, §4.1): type and thing
// IIDs, attribute IIDs, and the edge-prefix scheme range scans are built
// from. Encoding is deterministic and decoding is infallible and O(1) for
// well-formed keys.
package encoding

// Prefix is the leading byte of every key, identifying what kind of
// vertex or edge the remainder of the key encodes.
type Prefix byte

// Type-vertex prefixes, one per partition (§3).
const (
	PrefixEntityType    Prefix = 0x00
	PrefixAttributeType Prefix = 0x01
	PrefixRelationType  Prefix = 0x02
	PrefixRoleType      Prefix = 0x03
)

// Thing-vertex prefixes.
const (
	PrefixEntity    Prefix = 0x10
	PrefixRelation  Prefix = 0x11
	PrefixAttribute Prefix = 0x12
)

// Type-edge prefixes (type-to-type and type-to-role).
const (
	PrefixSub      Prefix = 0x20
	PrefixOwns     Prefix = 0x21
	PrefixOwnsKey  Prefix = 0x22
	PrefixPlays    Prefix = 0x23
	PrefixRelates  Prefix = 0x24
)

// Thing-edge prefixes. Each native edge kind that the executor needs to
// walk in both directions gets a forward key (source-first) and a
// By-suffixed reverse key (target-first), since the ordered store only
// supports prefix scans in one direction per key layout.
const (
	PrefixHas           Prefix = 0x30
	PrefixHasByAttr     Prefix = 0x34
	PrefixPlaying       Prefix = 0x31
	PrefixPlayingByRole Prefix = 0x35
	PrefixRelating      Prefix = 0x32
	PrefixRelatingByRole Prefix = 0x36
	PrefixRolePlayer       Prefix = 0x33
	PrefixRolePlayerByPlayer Prefix = 0x37
)

// Thing-to-type edge.
const PrefixISA Prefix = 0x40

func (p Prefix) IsTypeVertex() bool {
	return p == PrefixEntityType || p == PrefixAttributeType || p == PrefixRelationType || p == PrefixRoleType
}

func (p Prefix) IsThingVertex() bool {
	return p == PrefixEntity || p == PrefixRelation || p == PrefixAttribute
}
