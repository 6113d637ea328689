package core

// ValueKind is the value kind an Attribute type is declared with. The five
// kinds are fixed by the data model; there is no user extension point.
type ValueKind byte

const (
	ValueKindUnknown ValueKind = iota
	ValueKindBool
	ValueKindLong
	ValueKindDouble
	ValueKindString
	ValueKindDateTime
)

func (k ValueKind) String() string {
	switch k {
	case ValueKindBool:
		return "BOOL"
	case ValueKindLong:
		return "LONG"
	case ValueKindDouble:
		return "DOUBLE"
	case ValueKindString:
		return "STRING"
	case ValueKindDateTime:
		return "DATETIME"
	default:
		return "UNKNOWN"
	}
}

// Comparable reports whether two value kinds may appear on either side of a
// value comparator. Only like-for-like comparisons are legal except that
// LONG and DOUBLE may be compared against each other.
func (k ValueKind) Comparable(other ValueKind) bool {
	if k == other {
		return true
	}
	numeric := func(v ValueKind) bool { return v == ValueKindLong || v == ValueKindDouble }
	return numeric(k) && numeric(other)
}

// Partition identifies which of the four type partitions a type vertex
// belongs to. Sub-typing is strict and single-parent within a partition.
type Partition byte

const (
	PartitionEntity Partition = iota
	PartitionAttribute
	PartitionRelation
	PartitionRole
)

func (p Partition) String() string {
	switch p {
	case PartitionEntity:
		return "entity"
	case PartitionAttribute:
		return "attribute"
	case PartitionRelation:
		return "relation"
	case PartitionRole:
		return "role"
	default:
		return "unknown"
	}
}
