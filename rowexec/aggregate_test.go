package rowexec_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/rowexec"
)

// fakeAnswerIterator replays a fixed slice of answers, standing in for the
// reasoner/executor pipeline so the aggregate stages can be tested against
// known inputs without standing up a store and a schema.
type fakeAnswerIterator struct {
	rows   []core.Answer
	pos    int
	closed bool
}

func fakeAnswers(rows ...core.Answer) *fakeAnswerIterator { return &fakeAnswerIterator{rows: rows} }

func (f *fakeAnswerIterator) Next(ctx context.Context) (core.Answer, bool, error) {
	if f.pos >= len(f.rows) {
		return nil, false, nil
	}
	ans := f.rows[f.pos]
	f.pos++
	return ans, true, nil
}

func (f *fakeAnswerIterator) Close() error {
	f.closed = true
	return nil
}

func attr(v interface{}) core.Concept {
	return core.Concept{Kind: core.ConceptKindAttribute, Value: v}
}

func entity(id byte) core.Concept {
	return core.Concept{Kind: core.ConceptKindEntity, IID: core.IID{id}}
}

func TestAggregateReduces(t *testing.T) {
	cases := []struct {
		name string
		fn   rowexec.AggregateFunc
		rows []core.Answer
		want interface{}
	}{
		{"count", rowexec.AggregateCount, []core.Answer{{"n": attr(int64(1))}, {"n": attr(int64(2))}}, int64(2)},
		{"sum", rowexec.AggregateSum, []core.Answer{{"n": attr(2.0)}, {"n": attr(3.0)}}, 5.0},
		{"max", rowexec.AggregateMax, []core.Answer{{"n": attr(2.0)}, {"n": attr(7.0)}, {"n": attr(3.0)}}, 7.0},
		{"min", rowexec.AggregateMin, []core.Answer{{"n": attr(2.0)}, {"n": attr(-1.0)}, {"n": attr(3.0)}}, -1.0},
		{"mean", rowexec.AggregateMean, []core.Answer{{"n": attr(2.0)}, {"n": attr(4.0)}}, 3.0},
		{"median", rowexec.AggregateMedian, []core.Answer{{"n": attr(1.0)}, {"n": attr(2.0)}, {"n": attr(9.0)}}, 2.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agg := rowexec.NewAggregate(fakeAnswers(tc.rows...), "n", tc.fn)
			ans, ok, err := agg.Next(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			if diff := cmp.Diff(tc.want, ans["n"].Value); diff != "" {
				t.Errorf("reduced value mismatch (-want +got):\n%s", diff)
			}

			_, ok, err = agg.Next(context.Background())
			require.NoError(t, err)
			require.False(t, ok, "a single-row reduction yields exactly one answer")
			require.NoError(t, agg.Close())
		})
	}
}

func TestGroupIteratorPartitionsByGroupKey(t *testing.T) {
	alice := entity(1)
	bob := entity(2)

	inner := fakeAnswers(
		core.Answer{"dept": alice, "salary": attr(10.0)},
		core.Answer{"dept": alice, "salary": attr(20.0)},
		core.Answer{"dept": bob, "salary": attr(5.0)},
	)

	g := rowexec.NewGroupIterator(inner, "dept", "salary", rowexec.AggregateSum)

	var got []core.Answer
	for {
		ans, ok, err := g.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, ans)
	}
	require.NoError(t, g.Close())

	require.Len(t, got, 2, "one row per distinct group key")

	byDept := map[string]float64{}
	for _, ans := range got {
		byDept[ans["dept"].IID.String()] = ans["salary"].Value.(float64)
	}
	if diff := cmp.Diff(map[string]float64{
		alice.IID.String(): 30.0,
		bob.IID.String():   5.0,
	}, byDept); diff != "" {
		t.Errorf("grouped sums mismatch (-want +got):\n%s", diff)
	}
}
