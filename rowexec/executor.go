package rowexec

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
	"github.com/graphcore-db/graphcore/telemetry"
)

// frame is one stack level of the DFS walk: the edge at this depth and
// its producer. The candidate it most recently yielded is held in
// Executor.bound under the edge's To vertex.
type frame struct {
	edge *planner.ProcedureEdge
	iter idIter
}

// Executor walks a planner.Procedure depth-first, backtracking through an
// explicit stack of edge producers rather than recursing, mirroring the
// teacher's iterator-based sql.RowIter implementations (no goroutine per
// row). It implements core.AnswerIterator.
type Executor struct {
	proc *planner.Procedure
	g    *graph.Graph
	sg   *schema.Graph

	started bool
	seedIter idIter
	bound   map[structure.VertexID]core.IID
	stack   []frame
	closed  bool

	// partition, when non-nil, restricts the Start vertex's seed scan to
	// the candidates it accepts — the mechanism parallelExecute uses to
	// split one procedure's seed universe into disjoint per-goroutine
	// shards (§5).
	partition func(core.IID) bool

	span opentracing.Span
}

// Execute prepares a fresh Executor (or, when opts.Parallel is set, a
// fan-out of several) over proc; no work happens until the first Next
// call (§4.6: lazy, pull-based). A span is opened around the call when
// opts.TraceEnabled is set and closed when the returned iterator is
// closed, so a trace covers a procedure's whole walk rather than just the
// planning step that produced it.
func Execute(ctx context.Context, proc *planner.Procedure, g *graph.Graph, sg *schema.Graph, opts core.QueryOptions) (core.AnswerIterator, error) {
	if opts.Parallel {
		return parallelExecute(ctx, proc, g, sg, opts)
	}
	span, _ := telemetry.StartSpan(ctx, opts.TraceEnabled, "rowexec.Execute")
	return &Executor{
		proc:  proc,
		g:     g,
		sg:    sg,
		bound: map[structure.VertexID]core.IID{},
		span:  span,
	}, nil
}

func (e *Executor) Next(ctx context.Context) (core.Answer, bool, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, false, err
	}
	if e.closed {
		return nil, false, nil
	}
	if !e.started {
		if err := e.seed(); err != nil {
			return nil, false, err
		}
		e.started = true
		iid, ok, err := e.seedIter.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		e.bound[e.proc.Start] = iid
	} else {
		ok, err := e.backtrack()
		if err != nil || !ok {
			return nil, false, err
		}
	}

	for len(e.stack) < len(e.proc.Edges) {
		ok, err := e.step()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}
	return e.materialise(), true, nil
}

// step opens the producer for the next not-yet-bound edge and advances it
// to its first property-constraint-satisfying candidate, pushing a new
// stack frame. If the producer yields nothing usable it backtracks.
func (e *Executor) step() (bool, error) {
	pe := e.proc.Edges[len(e.stack)]
	fromIID, ok := e.bound[pe.From]
	if !ok {
		return false, core.ErrInternal.New("procedure edge's From vertex is unbound")
	}
	it, err := produce(e.g, e.sg, e.proc.Structure, pe, fromIID)
	if err != nil {
		return false, err
	}
	v := e.proc.Structure.Vertices[pe.To]
	for {
		iid, ok, err := it.Next()
		if err != nil {
			it.Close()
			return false, err
		}
		if !ok {
			it.Close()
			return e.backtrack()
		}
		keep, err := satisfiesPropertyConstraints(e.g, e.sg, v, iid)
		if err != nil {
			it.Close()
			return false, err
		}
		if keep {
			e.bound[pe.To] = iid
			e.stack = append(e.stack, frame{edge: pe, iter: it})
			return true, nil
		}
	}
}

// backtrack resumes the most recently opened frame's producer looking for
// its next satisfying candidate, popping exhausted frames until one yields
// a fresh binding or the walk falls back to the seed iterator.
func (e *Executor) backtrack() (bool, error) {
	for len(e.stack) > 0 {
		top := &e.stack[len(e.stack)-1]
		v := e.proc.Structure.Vertices[top.edge.To]
		for {
			iid, ok, err := top.iter.Next()
			if err != nil {
				return false, err
			}
			if !ok {
				break
			}
			keep, err := satisfiesPropertyConstraints(e.g, e.sg, v, iid)
			if err != nil {
				return false, err
			}
			if keep {
				e.bound[top.edge.To] = iid
				return true, nil
			}
		}
		top.iter.Close()
		delete(e.bound, top.edge.To)
		e.stack = e.stack[:len(e.stack)-1]
	}

	iid, ok, err := e.seedIter.Next()
	if err != nil || !ok {
		return false, err
	}
	e.bound[e.proc.Start] = iid
	return true, nil
}

// seed binds the Start vertex: either a direct resolution from a static
// property constraint (no store scan needed), or — lacking one — a full
// partition scan (§4.6 seeding strategy).
func (e *Executor) seed() error {
	v := e.proc.Structure.Vertices[e.proc.Start]

	if iid, ok := staticSeed(e.sg, v); ok {
		if e.partition != nil && !e.partition(iid) {
			e.seedIter = single(nil)
			return nil
		}
		e.seedIter = single(iid)
		return nil
	}

	types, err := seedTypeUniverse(e.sg, v)
	if err != nil {
		return err
	}
	it, err := instancesOf(e.g, types)
	if err != nil {
		return err
	}
	e.seedIter = filter(it, func(candidate core.IID) (bool, error) {
		if e.partition != nil && !e.partition(candidate) {
			return false, nil
		}
		return satisfiesPropertyConstraints(e.g, e.sg, v, candidate)
	})
	return nil
}

// staticSeed resolves the Start vertex directly from a schema-static
// constraint when one is present, avoiding a scan entirely.
func staticSeed(sg *schema.Graph, v *structure.Vertex) (core.IID, bool) {
	for _, raw := range v.PropertyConstraints {
		switch c := raw.(type) {
		case *pattern.LabelConstraint:
			t, err := sg.Type(c.Label)
			if err == nil {
				return t.IID, true
			}
		case *pattern.IIDConstraint:
			return core.IID(c.IID), true
		}
	}
	return nil, false
}

func seedTypeUniverse(sg *schema.Graph, v *structure.Vertex) ([]*schema.TypeVertex, error) {
	if _, ok := v.Var.(*pattern.TypeVariable); ok {
		var out []*schema.TypeVertex
		for _, p := range []core.Partition{core.PartitionEntity, core.PartitionAttribute, core.PartitionRelation, core.PartitionRole} {
			out = append(out, sg.Root(p).Subtypes()...)
		}
		return out, nil
	}
	var out []*schema.TypeVertex
	for _, p := range []core.Partition{core.PartitionEntity, core.PartitionAttribute, core.PartitionRelation} {
		out = append(out, sg.Root(p).Subtypes()...)
	}
	return out, nil
}

func (e *Executor) materialise() core.Answer {
	ans := core.Answer{}
	for _, v := range e.proc.Structure.Vertices {
		if v.Var.Ref().IsAnonymous() {
			continue
		}
		iid, ok := e.bound[v.ID]
		if !ok {
			continue
		}
		concept, err := e.g.Concept(iid)
		if err != nil {
			continue
		}
		ans[v.Var.Ref().Name] = concept
	}
	return ans
}

func (e *Executor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.span != nil {
		e.span.Finish()
	}
	var firstErr error
	if e.seedIter != nil {
		if err := e.seedIter.Close(); err != nil {
			firstErr = err
		}
	}
	for _, f := range e.stack {
		if err := f.iter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.stack = nil
	return firstErr
}
