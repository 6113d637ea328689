package graphcore

import (
	"context"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/rowexec"
)

// MatchResult pairs a match's lazy answer stream with the Procedure the
// planner chose for it. Procedure is only populated when the call's
// opts.Explain was set — otherwise it is nil, so a caller that never asked
// to explain never pays for holding onto it (§3 supplement: "when
// explain=true, the dispatcher returns the planner.Procedure alongside the
// answer stream"). MatchResult embeds core.AnswerIterator so it can be
// passed anywhere an AnswerIterator is expected without unwrapping.
type MatchResult struct {
	core.AnswerIterator
	Procedure *planner.Procedure
}

// Match runs conj through the reasoner, folding in inferred answers when
// opts.Infer is set (§4.8: "match returns a lazy answer stream via the
// executor, through the Reasoner when inference is enabled").
func (tx *Transaction) Match(ctx context.Context, conj *pattern.Conjunction, opts core.QueryOptions) (*MatchResult, error) {
	if err := tx.requireSession(core.SessionData); err != nil {
		return nil, err
	}
	it, proc, err := tx.reasoner.Match(ctx, conj, tx.effectiveOptions(opts))
	if err != nil {
		return nil, err
	}
	res := &MatchResult{AnswerIterator: it}
	if opts.Explain {
		res.Procedure = proc
	}
	return res, nil
}

// MatchAggregate runs conj then reduces the bound values of variable with
// fn into a single-row answer (§3 supplement, §6 query kind
// match.aggregate).
func (tx *Transaction) MatchAggregate(ctx context.Context, conj *pattern.Conjunction, variable string, fn rowexec.AggregateFunc, opts core.QueryOptions) (*MatchResult, error) {
	res, err := tx.Match(ctx, conj, opts)
	if err != nil {
		return nil, err
	}
	res.AnswerIterator = rowexec.NewAggregate(res.AnswerIterator, variable, fn)
	return res, nil
}

// MatchGroup runs conj then partitions by groupBy before reducing
// variable with fn independently per partition (§3 supplement, §6 query
// kind match.group).
func (tx *Transaction) MatchGroup(ctx context.Context, conj *pattern.Conjunction, groupBy, variable string, fn rowexec.AggregateFunc, opts core.QueryOptions) (*MatchResult, error) {
	res, err := tx.Match(ctx, conj, opts)
	if err != nil {
		return nil, err
	}
	res.AnswerIterator = rowexec.NewGroupIterator(res.AnswerIterator, groupBy, variable, fn)
	return res, nil
}
