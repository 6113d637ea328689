package encoding

import (
	"encoding/binary"

	"github.com/graphcore-db/graphcore/core"
)

// TypeIIDSize is prefix(1) ∥ key(2).
const TypeIIDSize = 3

// ThingIIDSize is prefix(1) ∥ type-IID(3) ∥ key(8), for non-attribute
// things. Attribute IIDs are variable length (content-addressed).
const ThingIIDSize = 1 + TypeIIDSize + 8

// EncodeTypeIID lays out a type identifier: prefix ∥ key, key big-endian.
func EncodeTypeIID(prefix Prefix, key uint16) core.IID {
	buf := make([]byte, TypeIIDSize)
	buf[0] = byte(prefix)
	binary.BigEndian.PutUint16(buf[1:3], key)
	return core.IID(buf)
}

// DecodeTypeIID is infallible and O(1) for any well-formed 3-byte slice.
func DecodeTypeIID(iid core.IID) (prefix Prefix, key uint16) {
	return Prefix(iid[0]), binary.BigEndian.Uint16(iid[1:3])
}

// EncodeThingIID lays out prefix ∥ type-IID(3) ∥ key(8), key big-endian.
func EncodeThingIID(prefix Prefix, typeIID core.IID, key uint64) core.IID {
	buf := make([]byte, ThingIIDSize)
	buf[0] = byte(prefix)
	copy(buf[1:1+TypeIIDSize], typeIID)
	binary.BigEndian.PutUint64(buf[1+TypeIIDSize:], key)
	return core.IID(buf)
}

// DecodeThingIID is infallible and O(1) for any well-formed 12-byte slice.
func DecodeThingIID(iid core.IID) (prefix Prefix, typeIID core.IID, key uint64) {
	prefix = Prefix(iid[0])
	typeIID = core.IID(iid[1 : 1+TypeIIDSize])
	key = binary.BigEndian.Uint64(iid[1+TypeIIDSize:])
	return
}

// EncodeAttributeIID lays out attr-prefix(1) ∥ type-IID(3) ∥
// value-kind(1) ∥ value-bytes, where value-bytes is already in its
// sortable, canonical form (see value.go). Because the layout is
// derived purely from the type and the value, two inserts of the same
// typed value always produce byte-identical IIDs (content addressing).
func EncodeAttributeIID(typeIID core.IID, kind core.ValueKind, valueBytes []byte) core.IID {
	buf := make([]byte, 0, 1+TypeIIDSize+1+len(valueBytes))
	buf = append(buf, byte(PrefixAttribute))
	buf = append(buf, typeIID...)
	buf = append(buf, byte(kind))
	buf = append(buf, valueBytes...)
	return core.IID(buf)
}

// DecodeAttributeIID splits an attribute IID back into its type, kind and
// raw value bytes; decoding the value bytes themselves is the job of the
// matching ValueCodec.
func DecodeAttributeIID(iid core.IID) (typeIID core.IID, kind core.ValueKind, valueBytes []byte) {
	typeIID = core.IID(iid[1 : 1+TypeIIDSize])
	kind = core.ValueKind(iid[1+TypeIIDSize])
	valueBytes = iid[1+TypeIIDSize+1:]
	return
}
