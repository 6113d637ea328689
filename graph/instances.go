package graph

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/encoding"
	"github.com/graphcore-db/graphcore/kvstore"
	"github.com/graphcore-db/graphcore/schema"
)

// InsertEntity allocates a fresh entity instance of t and records it in
// the writer's batch. Abstract-type rejection is the dispatcher's job
// (§7 Write: ErrIllegalAbstractWrite), since only it knows the insert is
// happening under a data write transaction.
func (w *Writer) InsertEntity(t *schema.TypeVertex) core.Concept {
	return w.insertThing(t, encoding.PrefixEntity, core.ConceptKindEntity)
}

// InsertRelation allocates a fresh relation instance of t.
func (w *Writer) InsertRelation(t *schema.TypeVertex) core.Concept {
	return w.insertThing(t, encoding.PrefixRelation, core.ConceptKindRelation)
}

func (w *Writer) insertThing(t *schema.TypeVertex, prefix encoding.Prefix, kind core.ConceptKind) core.Concept {
	key := w.g.allocKey(t)
	iid := encoding.EncodeThingIID(prefix, t.IID, key)
	w.batch.Put(iid, nil)
	w.g.schema.RecordInstance(t, 1)
	return core.Concept{IID: iid, Kind: kind}
}

// InsertAttribute performs the content-addressed attribute upsert (§3,
// §4.3 SPEC_FULL supplement): the attribute's IID is derived purely from
// its type and canonical value bytes, so inserting the same typed value
// twice always yields the identical concept and never double-counts
// instance statistics.
func (w *Writer) InsertAttribute(t *schema.TypeVertex, value interface{}) (core.Concept, error) {
	valueBytes, err := encoding.Encode(t.ValueKind, value)
	if err != nil {
		return core.Concept{}, err
	}
	iid := encoding.EncodeAttributeIID(t.IID, t.ValueKind, valueBytes)

	existing, err := w.g.store.Get(iid)
	if err != nil {
		return core.Concept{}, err
	}
	if existing == nil {
		w.batch.Put(iid, nil)
		w.g.schema.RecordInstance(t, 1)
	}
	return core.Concept{IID: iid, Kind: core.ConceptKindAttribute, Value: value}, nil
}

// Concept resolves a previously-known IID back into a fully-populated
// Concept, recovering its kind/label/value from the IID layout and (for
// attributes) decoding its canonical value bytes.
func (g *Graph) Concept(iid core.IID) (core.Concept, error) {
	prefix := encoding.Prefix(iid[0])
	switch {
	case prefix.IsTypeVertex():
		t, err := g.schema.TypeByIID(iid)
		if err != nil {
			return core.Concept{}, err
		}
		return core.Concept{IID: iid, Kind: core.ConceptKindType, Label: t.Label}, nil

	case prefix == encoding.PrefixEntity:
		return core.Concept{IID: iid, Kind: core.ConceptKindEntity}, nil

	case prefix == encoding.PrefixRelation:
		return core.Concept{IID: iid, Kind: core.ConceptKindRelation}, nil

	case prefix == encoding.PrefixAttribute:
		typeIID, kind, valueBytes := encoding.DecodeAttributeIID(iid)
		_ = typeIID
		v, err := encoding.Decode(kind, valueBytes)
		if err != nil {
			return core.Concept{}, err
		}
		return core.Concept{IID: iid, Kind: core.ConceptKindAttribute, Value: v}, nil

	default:
		return core.Concept{}, core.ErrUnknownConcept.New(iid.String())
	}
}

// TypeOf recovers the TypeVertex a thing instance belongs to, reading its
// type-IID straight out of the thing IID (§3: no separate ISA edge record
// is needed — the type is embedded inline).
func (g *Graph) TypeOf(iid core.IID) (*schema.TypeVertex, error) {
	prefix := encoding.Prefix(iid[0])
	var typeIID core.IID
	switch prefix {
	case encoding.PrefixEntity, encoding.PrefixRelation:
		_, tIID, _ := encoding.DecodeThingIID(iid)
		typeIID = tIID
	case encoding.PrefixAttribute:
		tIID, _, _ := encoding.DecodeAttributeIID(iid)
		typeIID = tIID
	default:
		return nil, core.ErrUnknownConcept.New(iid.String())
	}
	return g.schema.TypeByIID(typeIID)
}

// InstancesOf range-scans every direct instance of t (exactly t, not its
// subtypes — the Isa-backward traversal iterates one type vertex at a
// time and relies on the executor's Isa-backward producer in rowexec to
// fan out over subtypes when the constraint is non-explicit).
func (g *Graph) InstancesOf(t *schema.TypeVertex) (kvstore.Cursor, error) {
	prefix := instancePrefix(t.Partition)
	return g.store.SeekPrefix(append([]byte{byte(prefix)}, t.IID...))
}

func instancePrefix(p core.Partition) encoding.Prefix {
	switch p {
	case core.PartitionAttribute:
		return encoding.PrefixAttribute
	case core.PartitionRelation:
		return encoding.PrefixRelation
	default:
		return encoding.PrefixEntity
	}
}
