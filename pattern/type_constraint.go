package pattern

import "github.com/graphcore-db/graphcore/core"

// TypeConstraint is the closed variant family hung off a TypeVariable:
// label, sub, owns, plays, relates, valueType, regex (§3).
type TypeConstraint interface {
	Owner() *TypeVariable
	setOwner(*TypeVariable)
	isTypeConstraint()
}

type typeConstraintBase struct {
	owner *TypeVariable
}

func (b *typeConstraintBase) Owner() *TypeVariable    { return b.owner }
func (b *typeConstraintBase) setOwner(v *TypeVariable) { b.owner = v }
func (b *typeConstraintBase) isTypeConstraint()       {}

// LabelConstraint: $t type <label>.
type LabelConstraint struct {
	typeConstraintBase
	Label string
}

func NewLabel(label string) *LabelConstraint { return &LabelConstraint{Label: label} }

// SubConstraint: $t sub <type-or-type-variable>, optionally explicit
// (direct parent only, not transitive).
type SubConstraint struct {
	typeConstraintBase
	Parent   *TypeVariable
	Explicit bool
}

func NewSub(parent *TypeVariable) *SubConstraint { return &SubConstraint{Parent: parent} }

// OwnsConstraint: $t owns <attribute-type-or-variable>, optionally key.
type OwnsConstraint struct {
	typeConstraintBase
	Attribute *TypeVariable
	Key       bool
}

func NewOwns(attr *TypeVariable, key bool) *OwnsConstraint {
	return &OwnsConstraint{Attribute: attr, Key: key}
}

// PlaysConstraint: $t plays <role-type-or-variable>.
type PlaysConstraint struct {
	typeConstraintBase
	Role *TypeVariable
}

func NewPlays(role *TypeVariable) *PlaysConstraint { return &PlaysConstraint{Role: role} }

// RelatesConstraint: $t relates <role-type-or-variable>.
type RelatesConstraint struct {
	typeConstraintBase
	Role *TypeVariable
}

func NewRelates(role *TypeVariable) *RelatesConstraint { return &RelatesConstraint{Role: role} }

// ValueTypeConstraint: $t value <kind>, legal only on Attribute types.
type ValueTypeConstraint struct {
	typeConstraintBase
	Kind core.ValueKind
}

func NewValueType(kind core.ValueKind) *ValueTypeConstraint { return &ValueTypeConstraint{Kind: kind} }

// RegexConstraint: $t regex <pattern>, constrains a STRING attribute type.
type RegexConstraint struct {
	typeConstraintBase
	Pattern string
}

func NewRegex(pattern string) *RegexConstraint { return &RegexConstraint{Pattern: pattern} }
