package pattern

// ThingConstraint is the closed variant family hung off a ThingVariable:
// isa, has, relation, value, iid, is (§3). Each holds a back-reference to
// its owning variable, per the data model's stated invariant.
type ThingConstraint interface {
	Owner() *ThingVariable
	setOwner(*ThingVariable)
	isThingConstraint()
}

type thingConstraintBase struct {
	owner *ThingVariable
}

func (b *thingConstraintBase) Owner() *ThingVariable    { return b.owner }
func (b *thingConstraintBase) setOwner(v *ThingVariable) { b.owner = v }
func (b *thingConstraintBase) isThingConstraint()       {}

// IsaConstraint: $x isa <type-or-type-variable>, optionally explicit
// (non-transitive, matching only the named type and not its subtypes).
type IsaConstraint struct {
	thingConstraintBase
	Type     *TypeVariable
	Explicit bool
}

func NewIsa(t *TypeVariable) *IsaConstraint { return &IsaConstraint{Type: t} }

// HasConstraint: $x has <attribute-type-label> $a, or $x has <label> <lit>.
type HasConstraint struct {
	thingConstraintBase
	Attribute *ThingVariable // the bound/anonymous attribute variable
	Type      string         // attribute type label, empty if unconstrained
}

func NewHas(attr *ThingVariable, typeLabel string) *HasConstraint {
	return &HasConstraint{Attribute: attr, Type: typeLabel}
}

// RolePlayer is one (role, player) pair inside a RelationConstraint.
type RolePlayer struct {
	// RoleTypes is the allowed role-type label set for this role-player
	// edge (§4.4: "a role-player edge carries its allowed role-type
	// label set"); empty means unconstrained (any role of the relation).
	RoleTypes []string
	Player    *ThingVariable
	RoleVar   *TypeVariable // set instead of RoleTypes when the role itself is a variable
}

// RelationConstraint: $r (role:$x, role:$y, ...) isa relation-type.
type RelationConstraint struct {
	thingConstraintBase
	Players []RolePlayer
}

func NewRelation(players ...RolePlayer) *RelationConstraint {
	return &RelationConstraint{Players: players}
}

// Operator is a value comparator.
type Operator byte

const (
	OpEQ Operator = iota
	OpNEQ
	OpLT
	OpLTE
	OpGT
	OpGTE
	OpContains
	OpLike
)

// ValueConstraint: $a <op> <operand>, where operand is a literal or
// another ThingVariable (a Predicate edge in Structure terms, §4.4).
type ValueConstraint struct {
	thingConstraintBase
	Op           Operator
	Literal      interface{}
	OperandVar   *ThingVariable // set instead of Literal for variable-to-variable comparisons
}

func NewValueLiteral(op Operator, literal interface{}) *ValueConstraint {
	return &ValueConstraint{Op: op, Literal: literal}
}

func NewValueVariable(op Operator, operand *ThingVariable) *ValueConstraint {
	return &ValueConstraint{Op: op, OperandVar: operand}
}

// IsVariableComparison reports whether this is a Predicate edge between
// two thing variables rather than a literal comparison (§4.4 Predicate).
func (v *ValueConstraint) IsVariableComparison() bool { return v.OperandVar != nil }

// IIDConstraint: $x iid <bytes>. Illegal on an insert variable (§7 Write).
type IIDConstraint struct {
	thingConstraintBase
	IID []byte
}

func NewIID(iid []byte) *IIDConstraint { return &IIDConstraint{IID: iid} }

// IsConstraint: $x is $y, a thing-identity equality (an Equal edge in
// Structure terms, §4.4).
type IsConstraint struct {
	thingConstraintBase
	Other *ThingVariable
}

func NewIs(other *ThingVariable) *IsConstraint { return &IsConstraint{Other: other} }
