package reasoner

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/hashstructure"
	"github.com/sirupsen/logrus"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/rowexec"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
	"github.com/graphcore-db/graphcore/telemetry"
)

// DefaultBudget bounds the fixpoint loop when a query supplies none (§4.7,
// core.QueryOptions.ReasoningBudget == 0 means "use this default").
const DefaultBudget = 100

// Reasoner wraps the Procedure executor (C7) with rule expansion: it finds
// the rules whose head unifies with a query's concludable body
// constraints and folds their inferred answers into the match stream,
// iterating every defined rule to a tabled fixpoint (§4.7).
type Reasoner struct {
	g  *graph.Graph
	sg *schema.Graph

	// tabled memoizes one rule's resolved answer set per fixpoint pass,
	// keyed by hashstructure.Hash((rule label, schema snapshot)) — "when
	// a sub-goal recurses on an already-open goal... it reads the partial
	// answer set of that open goal instead of descending" (§4.7). Since
	// rule bodies here carry no externally-bound argument tuple (whole-
	// rule forward evaluation against the live graph), the tabling key
	// degenerates to (rule, snapshot) rather than a projected argument
	// tuple; see DESIGN.md Open Question resolution.
	tabled map[uint64][]core.Answer
}

func New(g *graph.Graph, sg *schema.Graph) *Reasoner {
	return &Reasoner{g: g, sg: sg, tabled: map[uint64][]core.Answer{}}
}

func tableKey(ruleLabel string, snapshot int64) uint64 {
	h, err := hashstructure.Hash(struct {
		Rule     string
		Snapshot int64
	}{ruleLabel, snapshot}, nil)
	if err != nil {
		return 0
	}
	return h
}

// ruleAnswers solves rule.When against the live graph, tabling the result
// for this schema snapshot so a rule referenced by several concludables
// (or recursively by another rule's own when-clause) is only solved once
// per fixpoint pass.
func (r *Reasoner) ruleAnswers(ctx context.Context, rule *schema.Rule, opts core.QueryOptions) ([]core.Answer, error) {
	key := tableKey(rule.Label, r.sg.Snapshot())
	if cached, ok := r.tabled[key]; ok {
		return cached, nil
	}
	// Mark the goal open before descending, so a rule whose when-clause
	// recurses into itself (directly or through another rule) reads back
	// an empty partial answer set instead of looping (§4.7 termination).
	r.tabled[key] = nil

	it, _, err := r.runConjunction(ctx, rule.When, opts)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []core.Answer
	for {
		ans, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, ans)
	}
	r.tabled[key] = out
	return out, nil
}

// runConjunction plans and executes c, returning the Procedure the planner
// chose alongside the answer stream so a caller that wants to explain a
// match (§3 supplement) can surface it without re-planning.
func (r *Reasoner) runConjunction(ctx context.Context, c *pattern.Conjunction, opts core.QueryOptions) (core.AnswerIterator, *planner.Procedure, error) {
	s := structure.Project(c)
	proc, err := planner.New(s).Optimise(ctx, r.sg, opts)
	if err != nil {
		return nil, nil, err
	}
	it, err := rowexec.Execute(ctx, proc, r.g, r.sg, opts)
	if err != nil {
		return nil, nil, err
	}
	return it, proc, nil
}

// candidateRules returns every defined rule whose head unifies with
// target, aggregating every rejected rule's reason via go-multierror
// rather than surfacing only the first (§4.7/SPEC_FULL §4.7).
func (r *Reasoner) candidateRules(target *Concludable) ([]*Unifier, error) {
	var unifiers []*Unifier
	var rejected error
	for _, rule := range r.sg.Rules() {
		u, err := Unify(r.sg, target, rule)
		if err != nil {
			rejected = multierror.Append(rejected, err)
			continue
		}
		unifiers = append(unifiers, u)
	}
	if len(unifiers) == 0 && rejected != nil {
		return nil, rejected
	}
	return unifiers, nil
}

// Match runs conj's direct match via the Procedure executor and, when
// opts.Infer is set, folds in every inferred answer reachable by unifying
// conj's concludables against the defined rules, iterated to a fixpoint
// bounded by opts.ReasoningBudget (§4.7, §6). The returned Procedure is
// conj's own plan (not any rule body's), for callers that want to explain
// a match.
func (r *Reasoner) Match(ctx context.Context, conj *pattern.Conjunction, opts core.QueryOptions) (core.AnswerIterator, *planner.Procedure, error) {
	base, proc, err := r.runConjunction(ctx, conj, opts)
	if err != nil {
		return nil, nil, err
	}
	if !opts.Infer {
		return base, proc, nil
	}

	budget := opts.ReasoningBudget
	if budget == 0 {
		budget = DefaultBudget
	}

	inferred, err := r.inferAnswers(ctx, conj, budget, opts)
	if err != nil {
		base.Close()
		return nil, nil, err
	}
	return &chainedAnswerIterator{first: base, rest: inferred}, proc, nil
}

// inferAnswers computes the fixpoint of rule-derived answers for conj's
// concludables: repeatedly resolves every candidate rule's when-clause and
// projects its answers back onto conj's variables, until a full pass adds
// no new distinct answer or budget is exhausted (§4.7). Rule bodies always
// resolve directly (never parallel, never explained) regardless of the
// outer query's options — only tracing and the planner time limit carry
// over, so a traced query's trace still covers rule-body solves.
func (r *Reasoner) inferAnswers(ctx context.Context, conj *pattern.Conjunction, budget int, opts core.QueryOptions) ([]core.Answer, error) {
	concludables := ConjunctionConcludables(conj)
	if len(concludables) == 0 {
		return nil, nil
	}

	ruleOpts := core.QueryOptions{TraceEnabled: opts.TraceEnabled, PlannerTimeLimitMS: opts.PlannerTimeLimitMS}

	seen := map[uint64]bool{}
	var out []core.Answer

	for pass := 0; pass < budget; pass++ {
		if err := core.CheckCancelled(ctx); err != nil {
			return nil, err
		}
		r.tabled = map[uint64][]core.Answer{}
		grew := false

		for _, target := range concludables {
			unifiers, err := r.candidateRules(target)
			if err != nil {
				continue // no rule unifies with this concludable; not an error for the query
			}
			for _, u := range unifiers {
				answers, err := r.ruleAnswers(ctx, u.Rule, ruleOpts)
				if err != nil {
					return nil, err
				}
				for _, ruleAns := range answers {
					projected := u.Project(ruleAns)
					if len(projected) == 0 {
						continue
					}
					key, err := hashstructure.Hash(answerFingerprint(projected), nil)
					if err != nil {
						continue
					}
					if seen[key] {
						continue
					}
					seen[key] = true
					out = append(out, projected)
					grew = true
				}
			}
		}

		if !grew {
			telemetry.Log.WithFields(logrus.Fields{"passes": pass + 1, "inferred": len(out)}).
				Debug("reasoner.infer")
			return out, nil
		}
	}
	return nil, core.ErrReasoningBudgetExceeded.New(budget)
}

// answerFingerprint canonicalises an Answer into a structure stable for
// hashstructure, since a core.Concept's IID is itself already a stable
// byte value.
func answerFingerprint(a core.Answer) map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v.IID.String()
	}
	return out
}

// chainedAnswerIterator streams first to exhaustion, then the pre-computed
// rest slice — used to fold the reasoner's tabled inferred answers behind
// the executor's lazily-produced direct matches.
type chainedAnswerIterator struct {
	first core.AnswerIterator
	rest  []core.Answer
	pos   int
	done  bool
}

func (c *chainedAnswerIterator) Next(ctx context.Context) (core.Answer, bool, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, false, err
	}
	if !c.done {
		ans, ok, err := c.first.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return ans, true, nil
		}
		c.done = true
	}
	if c.pos >= len(c.rest) {
		return nil, false, nil
	}
	ans := c.rest[c.pos]
	c.pos++
	return ans, true, nil
}

func (c *chainedAnswerIterator) Close() error {
	return c.first.Close()
}
