package pattern

// ExpandHasLiteral builds the sub-conjunction a surface `then $x has
// <label> <literal>;` rule head expands into (§8 scenario 3): a fresh
// ReferenceSystem attribute variable carrying its own Isa(label) and a
// literal Value constraint, wired onto owner via a HasConstraint. The
// returned HasConstraint is what PutRule's then *ThingVariable should
// carry — owner itself is unchanged except for that one added constraint,
// so ThenConcludables still sees a single has concludable on owner, not a
// second isa concludable for the anonymous attribute (§3 scenario 2's
// "thenConcludables: 0 isa, 1 has" holds for the literal-valued case too,
// since the anonymous variable's Isa/Value live off owner.Constraints).
func ExpandHasLiteral(ids *systemIDSource, owner *ThingVariable, attrLabel string, literal interface{}) *HasConstraint {
	attrType := NewTypeVariable(ids.Next())
	attrType.Constrain(NewLabel(attrLabel))

	attr := NewThingVariable(ids.Next())
	attr.Constrain(NewIsa(attrType))
	attr.Constrain(NewValueLiteral(OpEQ, literal))

	has := NewHas(attr, attrLabel)
	owner.Constrain(has)
	return has
}

// ExpandRelationSingletonPlayer builds the anonymous relation variable a
// surface `then (role: $player) isa relation-label;` rule head expands
// into (§8 scenario 4): a fresh ReferenceSystem thing variable bound by
// Isa(relation-label) and a single role-player edge naming role-label as
// its only allowed role type. The returned variable is what PutRule's
// then *ThingVariable should be — its two constraints, {Isa, Relation},
// are exactly the shape PutRule already accepts for a relation head, and
// ThenConcludables reports one isa plus one relation concludable for it,
// matching scenario 1's bare relation-insertion head.
func ExpandRelationSingletonPlayer(ids *systemIDSource, relationLabel, roleLabel string, player *ThingVariable) *ThingVariable {
	relationType := NewTypeVariable(ids.Next())
	relationType.Constrain(NewLabel(relationLabel))

	rel := NewThingVariable(ids.Next())
	rel.Constrain(NewIsa(relationType))
	rel.Constrain(NewRelation(RolePlayer{RoleTypes: []string{roleLabel}, Player: player}))
	return rel
}

// NewSystemIDSource starts a fresh counter for minting ReferenceSystem
// variables within one rule-head expansion call; callers expanding
// several heads in the same rule share one source so system references
// stay distinct within that rule.
func NewSystemIDSource() *systemIDSource { return &systemIDSource{} }
