package rowexec

import (
	"context"
	"hash/fnv"
	"runtime"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
	"github.com/graphcore-db/graphcore/telemetry"
)

// defaultParallelShards caps how many goroutines opts.Parallel fans a
// procedure's seed universe out over, regardless of GOMAXPROCS — a query
// answer stream is I/O- as much as CPU-bound, so there is little to gain
// from matching the machine's core count exactly.
const defaultParallelShards = 4

// defaultBatchSize is the merge channel's buffer capacity when
// opts.BatchSize leaves it unset.
const defaultBatchSize = 16

// shardOf deterministically assigns an IID to one of n shards so every
// Executor's partition predicate agrees on which shard owns a candidate,
// without needing the shards to coordinate.
func shardOf(iid core.IID, n int) int {
	h := fnv.New32a()
	h.Write(iid)
	return int(h.Sum32() % uint32(n))
}

type shardResult struct {
	ans core.Answer
	err error
}

// parallelExecute fans proc's Start-vertex seed universe out over several
// disjoint-partition Executors, each walking its shard on its own
// goroutine and feeding a shared, bounded channel — the same
// sync.WaitGroup-joined goroutine-per-partition shape the corpus's own
// query planner uses to fan a multi-graph statement out over one
// goroutine per graph (§5: "parallel producer fanning out over disjoint
// starting-vertex partitions").
func parallelExecute(ctx context.Context, proc *planner.Procedure, g *graph.Graph, sg *schema.Graph, opts core.QueryOptions) (core.AnswerIterator, error) {
	shards := runtime.GOMAXPROCS(0)
	if shards > defaultParallelShards {
		shards = defaultParallelShards
	}
	if shards < 1 {
		shards = 1
	}

	bufSize := opts.BatchSize
	if bufSize <= 0 {
		bufSize = defaultBatchSize
	}

	span, _ := telemetry.StartSpan(ctx, opts.TraceEnabled, "rowexec.Execute.parallel")

	runCtx, cancel := context.WithCancel(context.Background())
	out := make(chan shardResult, bufSize)
	var wg sync.WaitGroup

	executors := make([]*Executor, shards)
	for i := 0; i < shards; i++ {
		shard := i
		executors[i] = &Executor{
			proc:      proc,
			g:         g,
			sg:        sg,
			bound:     map[structure.VertexID]core.IID{},
			partition: func(iid core.IID) bool { return shardOf(iid, shards) == shard },
		}
	}

	for _, ex := range executors {
		wg.Add(1)
		go func(ex *Executor) {
			defer wg.Done()
			for {
				ans, ok, err := ex.Next(runCtx)
				if err != nil {
					select {
					case out <- shardResult{err: err}:
					case <-runCtx.Done():
					}
					return
				}
				if !ok {
					return
				}
				select {
				case out <- shardResult{ans: ans}:
				case <-runCtx.Done():
					return
				}
			}
		}(ex)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return &parallelAnswerIterator{
		out:       out,
		executors: executors,
		cancel:    cancel,
		wg:        &wg,
		span:      span,
	}, nil
}

// parallelAnswerIterator is the merged stream opts.Parallel exposes:
// Next reads whichever shard produced next, in no particular cross-shard
// order, and Close tears every shard's Executor down only after its
// goroutine has actually stopped touching it.
type parallelAnswerIterator struct {
	out       <-chan shardResult
	executors []*Executor
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	span      opentracing.Span
	closed    bool
}

func (p *parallelAnswerIterator) Next(ctx context.Context) (core.Answer, bool, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, false, err
	}
	select {
	case <-ctx.Done():
		return nil, false, core.ErrQueryCancelled.New(ctx.Err())
	case r, ok := <-p.out:
		if !ok {
			return nil, false, nil
		}
		if r.err != nil {
			return nil, false, r.err
		}
		return r.ans, true, nil
	}
}

func (p *parallelAnswerIterator) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	p.wg.Wait()
	if p.span != nil {
		p.span.Finish()
	}

	var firstErr error
	for _, ex := range p.executors {
		if err := ex.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
