package schema

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/encoding"
)

// TypeVertex is one node of the type DAG (§3). Every non-root type has
// exactly one Sub parent within its own partition; Owns/Plays/Relates
// edges cross partitions as described in §3's invariants.
type TypeVertex struct {
	IID       core.IID
	Label     string
	Partition core.Partition
	ValueKind core.ValueKind // only meaningful for Attribute partition

	Sub      *TypeVertex   // nil for a partition root
	SubTypes []*TypeVertex // direct children only

	Owns     map[*TypeVertex]bool // attribute type -> is-key
	Plays    []*TypeVertex        // role types this entity/relation plays
	Relates  []*TypeVertex        // role types this relation relates

	// Abstract marks a type that cannot itself be instantiated (only its
	// subtypes can); used by Write-kind validation (ErrIllegalAbstractWrite).
	Abstract bool

	// Overridden marks a type whose owns/plays has been overridden by a
	// subtype in a way that makes using it directly in a traversal
	// ambiguous (ErrOverriddenTypeUsed, §7 Schema errors).
	Overridden bool

	// RoleScope is set only for PartitionRole: the relation type that
	// owns this role (roles are scoped to their relation, §3).
	RoleScope *TypeVertex

	// id is this type's dense internal id, used to index into roaring
	// bitmaps for hint-set membership (§4.2 supplement).
	id uint32
}

// IsRoot reports whether v is the implicit root of its partition.
func (v *TypeVertex) IsRoot() bool { return v.Sub == nil }

// newTypeVertex allocates a type vertex with a freshly minted type IID.
func newTypeVertex(label string, partition core.Partition, key uint16) *TypeVertex {
	prefix := partitionTypePrefix(partition)
	return &TypeVertex{
		IID:       encoding.EncodeTypeIID(prefix, key),
		Label:     label,
		Partition: partition,
		Owns:      map[*TypeVertex]bool{},
	}
}

func partitionTypePrefix(p core.Partition) encoding.Prefix {
	switch p {
	case core.PartitionEntity:
		return encoding.PrefixEntityType
	case core.PartitionAttribute:
		return encoding.PrefixAttributeType
	case core.PartitionRelation:
		return encoding.PrefixRelationType
	case core.PartitionRole:
		return encoding.PrefixRoleType
	default:
		return 0
	}
}

// Subtypes returns every strict subtype of v (transitive).
func (v *TypeVertex) Subtypes() []*TypeVertex {
	var out []*TypeVertex
	var walk func(*TypeVertex)
	walk = func(n *TypeVertex) {
		for _, c := range n.SubTypes {
			out = append(out, c)
			walk(c)
		}
	}
	walk(v)
	return out
}

// SubtypesAndSelf is Subtypes() plus v itself, the set most traversal
// logic actually wants (a variable typed $x isa person also matches
// instances of person's subtypes).
func (v *TypeVertex) SubtypesAndSelf() []*TypeVertex {
	return append([]*TypeVertex{v}, v.Subtypes()...)
}

// Depth returns v's distance from its partition root, used directly by
// the Planner's forward-Isa cost formula (§4.5).
func (v *TypeVertex) Depth() int {
	d := 0
	for n := v; n.Sub != nil; n = n.Sub {
		d++
	}
	return d
}
