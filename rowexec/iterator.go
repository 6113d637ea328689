// Package rowexec is the Procedure executor (C7, §4.6): a depth-first
// evaluation of a planner.Procedure's ordered edge list, producing
// answers lazily through the AnswerIterator pull contract mirroring the
// teacher's sql.RowIter (Next/Close, safe double-Close, cooperative
// cancellation checked at every yield).
package rowexec

import "github.com/graphcore-db/graphcore/core"

// idIter is the internal unit every edge producer yields: a stream of
// candidate concept IIDs for one not-yet-bound vertex.
type idIter interface {
	Next() (core.IID, bool, error)
	Close() error
}

// singleIDIter yields exactly one IID (or zero, if skip is set) — used
// for deterministic native edges (Isa forward, type-DAG edges, Equal).
type singleIDIter struct {
	iid    core.IID
	yielded bool
	skip   bool
}

func single(iid core.IID) idIter {
	if iid == nil {
		return &singleIDIter{skip: true}
	}
	return &singleIDIter{iid: iid}
}

func (s *singleIDIter) Next() (core.IID, bool, error) {
	if s.skip || s.yielded {
		return nil, false, nil
	}
	s.yielded = true
	return s.iid, true, nil
}

func (s *singleIDIter) Close() error { return nil }

// sliceIDIter yields every element of a pre-materialised slice — used
// for schema-resident fan-outs (subtypes, owns/plays reverse lookups)
// that are cheap enough not to need a cursor.
type sliceIDIter struct {
	items []core.IID
	pos   int
}

func fromSlice(items []core.IID) idIter { return &sliceIDIter{items: items} }

func (s *sliceIDIter) Next() (core.IID, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func (s *sliceIDIter) Close() error { return nil }

// chainIDIter concatenates several idIters, used to fan a type-level
// traversal out over every subtype's own instance scan.
type chainIDIter struct {
	iters []idIter
	pos   int
}

func chain(iters ...idIter) idIter { return &chainIDIter{iters: iters} }

func (c *chainIDIter) Next() (core.IID, bool, error) {
	for c.pos < len(c.iters) {
		iid, ok, err := c.iters[c.pos].Next()
		if err != nil {
			return nil, false, err
		}
		if ok {
			return iid, true, nil
		}
		c.pos++
	}
	return nil, false, nil
}

func (c *chainIDIter) Close() error {
	var firstErr error
	for _, it := range c.iters {
		if err := it.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// filterIDIter wraps another idIter, skipping candidates pred rejects —
// used for Predicate edges and the vertex-local PropertyConstraints
// check every bound candidate is subjected to.
type filterIDIter struct {
	inner idIter
	pred  func(core.IID) (bool, error)
}

func filter(inner idIter, pred func(core.IID) (bool, error)) idIter {
	return &filterIDIter{inner: inner, pred: pred}
}

func (f *filterIDIter) Next() (core.IID, bool, error) {
	for {
		iid, ok, err := f.inner.Next()
		if err != nil || !ok {
			return nil, ok, err
		}
		keep, err := f.pred(iid)
		if err != nil {
			return nil, false, err
		}
		if keep {
			return iid, true, nil
		}
	}
}

func (f *filterIDIter) Close() error { return f.inner.Close() }

// cursorIDIter adapts a raw kvstore-style cursor whose Key() bytes are
// themselves already the candidate IID (true of every thing-instance key
// under this encoding scheme).
type cursorIDIter struct {
	cursor interface {
		Valid() bool
		Key() []byte
		Next()
		Close() error
	}
}

func (c *cursorIDIter) Next() (core.IID, bool, error) {
	if c.cursor == nil || !c.cursor.Valid() {
		return nil, false, nil
	}
	iid := core.IID(append([]byte(nil), c.cursor.Key()...))
	c.cursor.Next()
	return iid, true, nil
}

func (c *cursorIDIter) Close() error {
	if c.cursor == nil {
		return nil
	}
	return c.cursor.Close()
}
