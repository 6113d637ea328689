// Package bnb is the default solver.MIPSolver: a depth-first
// branch-and-bound over small-domain integer/boolean variables, using an
// interval (best-case-per-term) bound for pruning rather than an LP
// relaxation. This is the one piece of core domain logic implemented
// directly on the standard library rather than a third-party dependency
// — justified in DESIGN.md because it *is* the spec's stated hard core,
// and no MIP/ILP library exists anywhere in the example corpus.
package bnb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/graphcore-db/graphcore/planner/solver"
)

type variable struct {
	name   string
	lo, hi int
}

type constraint struct {
	name  string
	terms []solver.LinearTerm
	op    solver.CompareOp
	rhs   float64
}

// Solver is a single-use branch-and-bound instance: build it, call
// SolveWithTimeLimit once, read Values.
type Solver struct {
	vars        []variable
	constraints []constraint
	objTerms    []solver.LinearTerm
	minimize    bool

	hint map[solver.VarID]float64

	assignment []int // -1 means unassigned
	best       []int
	bestObj    float64
	haveBest   bool

	deadline time.Time
	status   solver.Status
}

func New() *Solver {
	return &Solver{minimize: true}
}

func (s *Solver) NewBoolVar(name string) solver.VarID {
	return s.newVar(name, 0, 1)
}

func (s *Solver) NewIntVar(name string, lo, hi int) solver.VarID {
	return s.newVar(name, lo, hi)
}

func (s *Solver) newVar(name string, lo, hi int) solver.VarID {
	id := solver.VarID(len(s.vars))
	s.vars = append(s.vars, variable{name: name, lo: lo, hi: hi})
	return id
}

func (s *Solver) AddLinear(name string, terms []solver.LinearTerm, op solver.CompareOp, rhs float64) {
	s.constraints = append(s.constraints, constraint{name: name, terms: terms, op: op, rhs: rhs})
}

func (s *Solver) SetObjective(terms []solver.LinearTerm, minimize bool) {
	s.objTerms = terms
	s.minimize = minimize
}

func (s *Solver) Hint(values map[solver.VarID]float64) {
	s.hint = values
}

// SolveWithTimeLimit runs branch-and-bound until an optimal solution is
// proven, the search space is exhausted (infeasible), or d elapses (in
// which case the best incumbent found so far, if any, is returned as
// FEASIBLE).
func (s *Solver) SolveWithTimeLimit(d time.Duration) (solver.Status, error) {
	s.deadline = time.Now().Add(d)
	s.assignment = make([]int, len(s.vars))
	for i := range s.assignment {
		s.assignment[i] = -1
	}
	s.haveBest = false

	order := s.branchOrder()
	s.search(order, 0)

	if s.haveBest {
		if time.Now().After(s.deadline) {
			s.status = solver.StatusFeasible
		} else {
			s.status = solver.StatusOptimal
		}
	} else {
		s.status = solver.StatusInfeasible
	}
	return s.status, nil
}

// branchOrder branches on variables in declaration order; hinted
// variables are not moved forward. The hint takes effect through
// hintedFirst, which makes each hinted variable's hinted value the first
// branch explored for it.
func (s *Solver) branchOrder() []int {
	order := make([]int, len(s.vars))
	for i := range order {
		order[i] = i
	}
	return order
}

func (s *Solver) hintedFirst(idx int, lo, hi int) []int {
	vals := make([]int, 0, hi-lo+1)
	if h, ok := s.hint[solver.VarID(idx)]; ok {
		hv := int(h + 0.5)
		if hv >= lo && hv <= hi {
			vals = append(vals, hv)
		}
	}
	for v := lo; v <= hi; v++ {
		already := false
		for _, x := range vals {
			if x == v {
				already = true
				break
			}
		}
		if !already {
			vals = append(vals, v)
		}
	}
	return vals
}

func (s *Solver) search(order []int, pos int) bool {
	if time.Now().After(s.deadline) {
		return true // stop searching, keep whatever incumbent exists
	}
	if pos == len(order) {
		if !s.feasible() {
			return false
		}
		obj := s.objectiveValue()
		better := !s.haveBest || (s.minimize && obj < s.bestObj) || (!s.minimize && obj > s.bestObj)
		if better {
			s.bestObj = obj
			s.best = append([]int(nil), s.assignment...)
			s.haveBest = true
		}
		return false
	}

	idx := order[pos]
	v := s.vars[idx]
	if s.bound(pos) {
		return false
	}
	for _, val := range s.hintedFirst(idx, v.lo, v.hi) {
		s.assignment[idx] = val
		if s.partialFeasible(idx) {
			if stop := s.search(order, pos+1); stop {
				s.assignment[idx] = -1
				return true
			}
		}
		s.assignment[idx] = -1
	}
	return false
}

// bound prunes this branch if even the best possible completion cannot
// beat the current incumbent (an interval bound: each unassigned term
// contributes its coefficient-sign-optimal extreme value).
func (s *Solver) bound(pos int) bool {
	if !s.haveBest {
		return false
	}
	best := 0.0
	for _, t := range s.objTerms {
		v := s.vars[t.Var]
		val := s.assignment[t.Var]
		if val != -1 {
			best += t.Coeff * float64(val)
			continue
		}
		if s.minimize == (t.Coeff >= 0) {
			best += t.Coeff * float64(v.lo)
		} else {
			best += t.Coeff * float64(v.hi)
		}
	}
	if s.minimize {
		return best >= s.bestObj
	}
	return best <= s.bestObj
}

// partialFeasible checks every constraint that is now fully assigned;
// constraints with remaining unassigned terms are deferred to the leaf
// check in feasible().
func (s *Solver) partialFeasible(justAssigned int) bool {
	for _, c := range s.constraints {
		complete := true
		sum := 0.0
		for _, t := range c.terms {
			val := s.assignment[t.Var]
			if val == -1 {
				complete = false
				break
			}
			sum += t.Coeff * float64(val)
		}
		if !complete {
			continue
		}
		if !satisfies(sum, c.op, c.rhs) {
			return false
		}
	}
	return true
}

func (s *Solver) feasible() bool {
	for _, c := range s.constraints {
		sum := 0.0
		for _, t := range c.terms {
			val := s.assignment[t.Var]
			if val == -1 {
				return false
			}
			sum += t.Coeff * float64(val)
		}
		if !satisfies(sum, c.op, c.rhs) {
			return false
		}
	}
	return true
}

func satisfies(sum float64, op solver.CompareOp, rhs float64) bool {
	const eps = 1e-6
	switch op {
	case solver.OpLE:
		return sum <= rhs+eps
	case solver.OpGE:
		return sum >= rhs-eps
	default:
		return sum > rhs-eps && sum < rhs+eps
	}
}

func (s *Solver) objectiveValue() float64 {
	sum := 0.0
	for _, t := range s.objTerms {
		sum += t.Coeff * float64(s.assignment[t.Var])
	}
	return sum
}

func (s *Solver) Value(v solver.VarID) float64 {
	if s.best == nil {
		return 0
	}
	return float64(s.best[v])
}

func (s *Solver) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "variables: %d, constraints: %d, status: %s\n", len(s.vars), len(s.constraints), s.status)
	names := make([]string, len(s.vars))
	for i, v := range s.vars {
		names[i] = fmt.Sprintf("%s[%d,%d]", v.name, v.lo, v.hi)
	}
	sort.Strings(names)
	fmt.Fprintf(&b, "vars: %s\n", strings.Join(names, ", "))
	return b.String()
}
