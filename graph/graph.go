// Package graph is the DataGraph (C3, §4.3): the instance-level read/write
// interface over the ordered key-value store, built on the byte layouts
// encoding defines. It owns per-type instance key allocation, content-
// addressed attribute upsert, and the native edge records the executor
// (rowexec) and planner (via schema statistics) both depend on.
package graph

import (
	"sync"

	"github.com/graphcore-db/graphcore/kvstore"
	"github.com/graphcore-db/graphcore/schema"
)

// Graph is the per-session DataGraph handle. A single Graph may be shared
// by concurrent read transactions; writes go through a Writer opened with
// NewWriter.
type Graph struct {
	store  kvstore.OrderedStore
	schema *schema.Graph

	mu      sync.Mutex
	nextKey map[string]uint64 // type IID -> next instance key
}

// New binds a DataGraph to its backing store and the SchemaGraph it
// reports instance statistics to.
func New(store kvstore.OrderedStore, sg *schema.Graph) *Graph {
	return &Graph{store: store, schema: sg, nextKey: map[string]uint64{}}
}

// Writer batches every key/value mutation one insert/delete call produces
// (§4.3: write operations are applied atomically). Commit flushes the
// whole batch to the backing store in one atomic store commit.
type Writer struct {
	g     *Graph
	batch kvstore.Batch
}

// NewWriter opens a write batch against g's backing store.
func (g *Graph) NewWriter() *Writer {
	return &Writer{g: g, batch: g.store.NewBatch()}
}

// Commit flushes the accumulated batch.
func (w *Writer) Commit() error {
	return w.g.store.CommitBatch(w.batch)
}

func (g *Graph) allocKey(t *schema.TypeVertex) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := string(t.IID)
	k := g.nextKey[id]
	g.nextKey[id] = k + 1
	return k
}
