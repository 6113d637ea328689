package rowexec

import (
	"context"
	"math"
	"sort"

	"github.com/spf13/cast"

	"github.com/graphcore-db/graphcore/core"
)

// AggregateFunc is one of the reducers match.aggregate accepts (§3
// supplement: "count/sum/max/min/mean/median/std over a bound numeric
// variable").
type AggregateFunc byte

const (
	AggregateCount AggregateFunc = iota
	AggregateSum
	AggregateMax
	AggregateMin
	AggregateMean
	AggregateMedian
	AggregateStd
)

// Aggregate consumes every answer from an inner AnswerIterator and reduces
// the bound values of Variable (ignored for Count) into a single answer
// with one entry keyed by Variable holding the boxed numeric result —
// mirroring the teacher's GroupBy terminal-iterator shape (accumulate,
// then yield once), adapted here to a single non-grouped reduction.
type Aggregate struct {
	inner    core.AnswerIterator
	variable string
	fn       AggregateFunc

	done bool
}

// NewAggregate wraps inner with a terminal reduction stage.
func NewAggregate(inner core.AnswerIterator, variable string, fn AggregateFunc) *Aggregate {
	return &Aggregate{inner: inner, variable: variable, fn: fn}
}

func (a *Aggregate) Next(ctx context.Context) (core.Answer, bool, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, false, err
	}
	if a.done {
		return nil, false, nil
	}
	a.done = true

	var values []float64
	count := 0
	for {
		ans, ok, err := a.inner.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		count++
		if a.fn == AggregateCount {
			continue
		}
		c, ok := ans[a.variable]
		if !ok {
			continue
		}
		f, err := cast.ToFloat64E(c.Value)
		if err != nil {
			continue
		}
		values = append(values, f)
	}

	result := reduce(a.fn, count, values)
	return core.Answer{a.variable: core.Concept{Kind: core.ConceptKindAttribute, Value: result}}, true, nil
}

func (a *Aggregate) Close() error { return a.inner.Close() }

func reduce(fn AggregateFunc, count int, values []float64) interface{} {
	switch fn {
	case AggregateCount:
		return int64(count)
	case AggregateSum:
		var s float64
		for _, v := range values {
			s += v
		}
		return s
	case AggregateMax:
		if len(values) == 0 {
			return nil
		}
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case AggregateMin:
		if len(values) == 0 {
			return nil
		}
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case AggregateMean:
		if len(values) == 0 {
			return nil
		}
		var s float64
		for _, v := range values {
			s += v
		}
		return s / float64(len(values))
	case AggregateMedian:
		return median(values)
	case AggregateStd:
		return stddev(values)
	default:
		return nil
	}
}

func median(values []float64) interface{} {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func stddev(values []float64) interface{} {
	if len(values) == 0 {
		return nil
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// GroupIterator partitions an inner iterator's answers by the bound
// concept's IID at GroupBy before reducing each partition independently
// (§3 supplement: "grouped partitioning before aggregating"). It buffers
// fully rather than streaming per group, since a group's membership can't
// be known complete until the inner iterator is exhausted.
type GroupIterator struct {
	inner    core.AnswerIterator
	groupBy  string
	variable string
	fn       AggregateFunc

	groups []groupResult
	pos    int
	built  bool
}

type groupResult struct {
	key    core.Concept
	answer core.Answer
}

func NewGroupIterator(inner core.AnswerIterator, groupBy, variable string, fn AggregateFunc) *GroupIterator {
	return &GroupIterator{inner: inner, groupBy: groupBy, variable: variable, fn: fn}
}

func (g *GroupIterator) build(ctx context.Context) error {
	order := []string{}
	byKey := map[string][]float64{}
	counts := map[string]int{}
	keys := map[string]core.Concept{}

	for {
		ans, ok, err := g.inner.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		gk, ok := ans[g.groupBy]
		if !ok {
			continue
		}
		k := gk.IID.String()
		if _, seen := keys[k]; !seen {
			keys[k] = gk
			order = append(order, k)
		}
		counts[k]++
		if g.fn == AggregateCount {
			continue
		}
		c, ok := ans[g.variable]
		if !ok {
			continue
		}
		f, err := cast.ToFloat64E(c.Value)
		if err != nil {
			continue
		}
		byKey[k] = append(byKey[k], f)
	}

	for _, k := range order {
		result := reduce(g.fn, counts[k], byKey[k])
		g.groups = append(g.groups, groupResult{
			key: keys[k],
			answer: core.Answer{
				g.groupBy:  keys[k],
				g.variable: core.Concept{Kind: core.ConceptKindAttribute, Value: result},
			},
		})
	}
	g.built = true
	return nil
}

func (g *GroupIterator) Next(ctx context.Context) (core.Answer, bool, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, false, err
	}
	if !g.built {
		if err := g.build(ctx); err != nil {
			return nil, false, err
		}
	}
	if g.pos >= len(g.groups) {
		return nil, false, nil
	}
	ans := g.groups[g.pos].answer
	g.pos++
	return ans, true, nil
}

func (g *GroupIterator) Close() error { return g.inner.Close() }
