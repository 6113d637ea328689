package core

import "fmt"

// IID is an opaque, totally-ordered identifier byte string as laid out by
// the encoding package. Concepts compare equal iff their IIDs compare
// equal; core never inspects the bytes itself.
type IID []byte

func (i IID) String() string { return fmt.Sprintf("%x", []byte(i)) }

// Equal reports byte-wise identity.
func (i IID) Equal(other IID) bool {
	if len(i) != len(other) {
		return false
	}
	for idx := range i {
		if i[idx] != other[idx] {
			return false
		}
	}
	return true
}

// ConceptKind distinguishes the four families a Concept handle may denote.
type ConceptKind byte

const (
	ConceptKindType ConceptKind = iota
	ConceptKindEntity
	ConceptKindRelation
	ConceptKindAttribute
)

// Concept is the handle type bound to variables in an Answer. It carries
// just enough to let a caller resolve it back through the DataGraph/
// SchemaGraph: its IID, its kind, and — for attributes — the boxed value.
type Concept struct {
	IID   IID
	Kind  ConceptKind
	Label string      // present for Type concepts
	Value interface{}  // present for Attribute concepts; boxed Go value per ValueKind
}

func (c Concept) String() string {
	if c.Label != "" {
		return c.Label
	}
	if c.Value != nil {
		return fmt.Sprintf("%v", c.Value)
	}
	return c.IID.String()
}
