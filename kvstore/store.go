// Package kvstore specifies the external ordered byte-key store contract
// (§6) the core assumes beneath the DataGraph and SchemaGraph, and
// provides one in-process reference adapter (boltkv) satisfying it.
package kvstore

// Cursor walks a range of keys in ascending byte order, positioned at (or
// past) a seek target. It is forward-only and single-use.
type Cursor interface {
	// Valid reports whether the cursor is positioned at a usable entry.
	Valid() bool
	// Key and Value return the current entry; only meaningful if Valid.
	Key() []byte
	Value() []byte
	// Next advances the cursor.
	Next()
	// Close releases any underlying transaction/cursor resources.
	Close() error
}

// Snapshot is a point-in-time, consistent read view.
type Snapshot interface {
	Get(key []byte) ([]byte, error)
	SeekPrefix(prefix []byte) (Cursor, error)
	Release()
}

// Batch accumulates writes for atomic commit.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
}

// OrderedStore is the minimal capability the core needs from the
// key-value persistence layer: point reads, prefix range scans, and
// atomic batch commit. Everything above this (transactions, MVCC,
// replication) belongs to the external session/transaction manager named
// in spec.md §1.
type OrderedStore interface {
	Get(key []byte) ([]byte, error)
	SeekPrefix(prefix []byte) (Cursor, error)
	NewBatch() Batch
	CommitBatch(b Batch) error
	Snapshot() (Snapshot, error)
	Close() error
}
