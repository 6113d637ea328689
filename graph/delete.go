package graph

import "github.com/graphcore-db/graphcore/core"

// DeleteThing removes a thing instance, enforcing the referential
// integrity invariant (§3 supplement): an entity/relation still playing a
// role, or an attribute still owned by something, cannot be deleted out
// from under those edges. Callers that intend a cascading delete must
// first delete the dependent edges themselves and commit that batch: the
// reference count reads the committed store, not this Writer's pending
// batch.
func (w *Writer) DeleteThing(iid core.IID) error {
	t, err := w.g.TypeOf(iid)
	if err != nil {
		return err
	}

	if n := w.countReferences(iid); n > 0 {
		return core.ErrReferentialIntegrity.New(iid.String(), n)
	}

	w.batch.Delete(iid)
	w.g.schema.RecordInstance(t, -1)
	return nil
}

// countReferences is a best-effort, store-backed count of edges still
// pointing at iid from either direction DataGraph records: has edges (as
// attribute), role-player edges (as player), or has edges (as owner, via
// the forward index) / role-player edges (as relation).
func (w *Writer) countReferences(iid core.IID) int {
	n := 0
	if cur, err := w.g.AttributesOf(iid); err == nil {
		for cur.Valid() {
			n++
			cur.Next()
		}
		cur.Close()
	}
	if cur, err := w.g.OwnersOf(iid); err == nil {
		for cur.Valid() {
			n++
			cur.Next()
		}
		cur.Close()
	}
	if cur, err := w.g.PlayersOf(iid, nil); err == nil {
		for cur.Valid() {
			n++
			cur.Next()
		}
		cur.Close()
	}
	if cur, err := w.g.RelationsOf(iid, nil); err == nil {
		for cur.Valid() {
			n++
			cur.Next()
		}
		cur.Close()
	}
	return n
}
