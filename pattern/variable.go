package pattern

// Variable is the closed interface implemented by ThingVariable and
// TypeVariable (§9 design note: a closed set of variants, not an abstract
// class hierarchy).
type Variable interface {
	Ref() Reference
	isVariable()
}

// ThingVariable ranges over instance concepts (entities, relations,
// attributes). Its Constraints are isa/has/relation/value/iid/is.
type ThingVariable struct {
	Reference   Reference
	Constraints []ThingConstraint
}

func NewThingVariable(ref Reference) *ThingVariable { return &ThingVariable{Reference: ref} }

func (v *ThingVariable) Ref() Reference { return v.Reference }
func (v *ThingVariable) isVariable()    {}

func (v *ThingVariable) Constrain(c ThingConstraint) *ThingVariable {
	c.setOwner(v)
	v.Constraints = append(v.Constraints, c)
	return v
}

// TypeVariable ranges over type concepts. Its Constraints are
// label/sub/owns/plays/relates/valueType/regex.
type TypeVariable struct {
	Reference   Reference
	Constraints []TypeConstraint
}

func NewTypeVariable(ref Reference) *TypeVariable { return &TypeVariable{Reference: ref} }

func (v *TypeVariable) Ref() Reference { return v.Reference }
func (v *TypeVariable) isVariable()    {}

func (v *TypeVariable) Constrain(c TypeConstraint) *TypeVariable {
	c.setOwner(v)
	v.Constraints = append(v.Constraints, c)
	return v
}
