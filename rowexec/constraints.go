package rowexec

import (
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

// satisfiesPropertyConstraints checks every vertex-local PropertyConstraint
// (§4.6) against a freshly-bound candidate. ValueTypeConstraint and
// RegexConstraint are schema-level invariants the type system already
// guarantees hold for every instance of a correctly-typed attribute, so
// they are not re-checked here.
func satisfiesPropertyConstraints(g *graph.Graph, sg *schema.Graph, v *structure.Vertex, candidate core.IID) (bool, error) {
	for _, raw := range v.PropertyConstraints {
		switch c := raw.(type) {
		case *pattern.LabelConstraint:
			t, err := sg.TypeByIID(candidate)
			if err != nil {
				return false, err
			}
			if t.Label != c.Label {
				return false, nil
			}

		case *pattern.IIDConstraint:
			if !candidate.Equal(core.IID(c.IID)) {
				return false, nil
			}

		case *pattern.ValueConstraint:
			concept, err := g.Concept(candidate)
			if err != nil {
				return false, err
			}
			if !compareValues(c.Op, concept.Value, c.Literal) {
				return false, nil
			}
		}
	}
	return true, nil
}

// compareValues evaluates a pattern.Operator between a concept's decoded
// value and a literal/other-concept operand, coercing both sides with
// spf13/cast, the library the encoding codecs' Encode uses (§4.3).
func compareValues(op pattern.Operator, actual, operand interface{}) bool {
	switch op {
	case pattern.OpEQ:
		return valuesEqual(actual, operand)
	case pattern.OpNEQ:
		return !valuesEqual(actual, operand)
	case pattern.OpContains:
		a, err1 := cast.ToStringE(actual)
		b, err2 := cast.ToStringE(operand)
		return err1 == nil && err2 == nil && strings.Contains(a, b)
	case pattern.OpLike:
		a, err1 := cast.ToStringE(actual)
		pat, err2 := cast.ToStringE(operand)
		if err1 != nil || err2 != nil {
			return false
		}
		re, err := regexp.Compile(pat)
		return err == nil && re.MatchString(a)
	}

	if at, aok := actual.(time.Time); aok {
		bt, err := cast.ToTimeE(operand)
		if err != nil {
			return false
		}
		return compareOrdered(op, at.UnixNano(), bt.UnixNano())
	}
	if af, err := cast.ToFloat64E(actual); err == nil {
		bf, err := cast.ToFloat64E(operand)
		if err != nil {
			return false
		}
		return compareOrdered(op, af, bf)
	}
	return false
}

func valuesEqual(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, err := cast.ToTimeE(b)
		return err == nil && at.Equal(bt)
	}
	if af, err := cast.ToFloat64E(a); err == nil {
		bf, err := cast.ToFloat64E(b)
		return err == nil && af == bf
	}
	as, err1 := cast.ToStringE(a)
	bs, err2 := cast.ToStringE(b)
	return err1 == nil && err2 == nil && as == bs
}

func compareOrdered[T int64 | float64](op pattern.Operator, a, b T) bool {
	switch op {
	case pattern.OpLT:
		return a < b
	case pattern.OpLTE:
		return a <= b
	case pattern.OpGT:
		return a > b
	case pattern.OpGTE:
		return a >= b
	default:
		return a == b
	}
}
