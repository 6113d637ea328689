package schema

import (
	"sync"
	"sync/atomic"

	"github.com/graphcore-db/graphcore/core"
)

// Graph is the in-memory cache of the type DAG and its derived statistics
// (C2, §4.2). Writers mutate under the write lock and bump Snapshot;
// readers take the read lock. Every transaction the dispatcher opens
// shares the Engine's one live Graph: no per-transaction copy or pinned
// view is taken, so a schema write is visible to transactions already
// open.
type Graph struct {
	mu sync.RWMutex

	byLabel map[string]*TypeVertex
	byID    map[uint32]*TypeVertex
	byIID   map[string]*TypeVertex
	nextID  uint32

	rules map[string]*Rule

	// instanceCounts[typeID] is the *direct* instance count; transitive
	// counts are derived on demand by summing over Subtypes().
	instanceCounts map[uint32]int64

	// hasEdgeCounts[(ownerTypeID, attrTypeID)] backs countHasEdges (§4.2).
	hasEdgeCounts map[[2]uint32]int64

	snapshot int64 // monotone; bumped on every statistic-affecting write
}

// NewGraph returns an empty schema graph with the four partition roots
// pre-created (§3: "plus an implicit root per partition").
func NewGraph() *Graph {
	g := &Graph{
		byLabel:        map[string]*TypeVertex{},
		byID:           map[uint32]*TypeVertex{},
		byIID:          map[string]*TypeVertex{},
		rules:          map[string]*Rule{},
		instanceCounts: map[uint32]int64{},
		hasEdgeCounts:  map[[2]uint32]int64{},
	}
	for _, p := range []core.Partition{core.PartitionEntity, core.PartitionAttribute, core.PartitionRelation, core.PartitionRole} {
		root := newTypeVertex(rootLabel(p), p, 0)
		g.register(root)
	}
	return g
}

func rootLabel(p core.Partition) string {
	switch p {
	case core.PartitionEntity:
		return "entity"
	case core.PartitionAttribute:
		return "attribute"
	case core.PartitionRelation:
		return "relation"
	case core.PartitionRole:
		return "role"
	default:
		return "thing"
	}
}

func (g *Graph) register(t *TypeVertex) {
	t.id = g.nextID
	g.nextID++
	g.byLabel[t.Label] = t
	g.byID[t.id] = t
	g.byIID[string(t.IID)] = t
}

// Snapshot returns the current monotone statistics version (Glossary).
func (g *Graph) Snapshot() int64 { return atomic.LoadInt64(&g.snapshot) }

func (g *Graph) bumpSnapshot() { atomic.AddInt64(&g.snapshot, 1) }

// Root returns the implicit partition root.
func (g *Graph) Root(p core.Partition) *TypeVertex {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.byLabel[rootLabel(p)]
}

// Type looks up a type vertex by label (ErrUnknownLabel if absent).
func (g *Graph) Type(label string) (*TypeVertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.byLabel[label]
	if !ok {
		return nil, core.ErrUnknownLabel.New(label)
	}
	return t, nil
}

// DefineType creates a new type vertex as a subtype of parentLabel within
// the same partition, or rejects if that would introduce a sub-cycle or
// cross a partition boundary (§3 invariants). Mutates under a schema
// transaction only, per the lifecycle rule (§3).
func (g *Graph) DefineType(label string, partition core.Partition, parentLabel string) (*TypeVertex, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.byLabel[label]; exists {
		return nil, core.ErrUnknownLabel.New(label + " (already defined)")
	}
	parent, ok := g.byLabel[parentLabel]
	if !ok {
		return nil, core.ErrUnknownLabel.New(parentLabel)
	}
	if parent.Partition != partition {
		return nil, core.ErrIncompatibleOwnsPlays.New(label, parentLabel)
	}
	if err := g.checkNoCycle(parent, label); err != nil {
		return nil, err
	}

	t := newTypeVertex(label, partition, uint16(len(g.byLabel)))
	t.Sub = parent
	parent.SubTypes = append(parent.SubTypes, t)
	g.register(t)
	g.bumpSnapshot()
	return t, nil
}

// checkNoCycle walks from parent toward its root verifying label never
// reappears; a DAG with strict single-parent subtyping cannot actually
// cycle through DefineType alone, but Undefine + redefine sequences could
// without this check (§7 Schema: "cycle in sub").
func (g *Graph) checkNoCycle(parent *TypeVertex, newLabel string) error {
	for n := parent; n != nil; n = n.Sub {
		if n.Label == newLabel {
			return core.ErrSubCycle.New(newLabel)
		}
	}
	return nil
}

// Undefine removes a type vertex. It does not check for live instances or
// edges of the type, and neither does the dispatcher's Undefine
// (graphcore/define.go); existing instances are left in the store.
func (g *Graph) Undefine(label string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.byLabel[label]
	if !ok {
		return core.ErrUnknownLabel.New(label)
	}
	if t.Sub != nil {
		siblings := t.Sub.SubTypes
		for i, s := range siblings {
			if s == t {
				t.Sub.SubTypes = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	delete(g.byLabel, label)
	delete(g.byID, t.id)
	delete(g.byIID, string(t.IID))
	g.bumpSnapshot()
	return nil
}

// DefineOwns records an owns edge (optionally key) from owner to attr.
func (g *Graph) DefineOwns(owner, attr *TypeVertex, key bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	owner.Owns[attr] = key
	g.bumpSnapshot()
}

// DefinePlays records a plays edge (entity/relation -> role) and
// DefineRelates a relates edge (relation -> role); role must belong to the
// role partition. DefineRelates sets role.RoleScope to the declaring
// relation (§3 invariant: "a role type's scope is its owning relation
// type").
func (g *Graph) DefinePlays(player, role *TypeVertex) error {
	if role.Partition != core.PartitionRole {
		return core.ErrIncompatibleOwnsPlays.New(player.Label, role.Label)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	player.Plays = append(player.Plays, role)
	g.bumpSnapshot()
	return nil
}

func (g *Graph) DefineRelates(relation, role *TypeVertex) error {
	if role.Partition != core.PartitionRole {
		return core.ErrIncompatibleOwnsPlays.New(relation.Label, role.Label)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	role.RoleScope = relation
	relation.Relates = append(relation.Relates, role)
	g.bumpSnapshot()
	return nil
}

// RecordInstance and RecordHasEdge are called by the DataGraph on every
// insert/delete so statistics stay live; they bump the snapshot so a
// cached Procedure is reconsidered for re-planning (§4.5).
func (g *Graph) RecordInstance(t *TypeVertex, delta int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.instanceCounts[t.id] += delta
	g.bumpSnapshot()
}

func (g *Graph) RecordHasEdge(owner, attr *TypeVertex, delta int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasEdgeCounts[[2]uint32{owner.id, attr.id}] += delta
	g.bumpSnapshot()
}

// NewHintSet returns an empty hint set tied to this graph's id space.
func (g *Graph) NewHintSet() *HintSet { return newHintSet(g) }

// TypeByIID resolves a type vertex from the type-IID embedded in a thing
// IID's middle bytes (§3: every thing IID carries its type IID inline).
// Used by the DataGraph to recover a concept's label/value kind without a
// second index.
func (g *Graph) TypeByIID(iid core.IID) (*TypeVertex, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.byIID[string(iid)]
	if !ok {
		return nil, core.ErrUnknownLabel.New(iid.String())
	}
	return t, nil
}
