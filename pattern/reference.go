// Package pattern is the normalised query-pattern input form (§3, §4.4):
// conjunctions owning typed variables and their constraints, nested
// negations and disjunctions. The surface query language parser is an
// external collaborator (§1); pattern is what it is assumed to produce.
package pattern

import "fmt"

// ReferenceKind distinguishes how a variable was named.
type ReferenceKind byte

const (
	// ReferenceNamed is a user-written $x.
	ReferenceNamed ReferenceKind = iota
	// ReferenceAnonymous is a user-written $_, elided from Answers (§4.6).
	ReferenceAnonymous
	// ReferenceLabel is a type reference written as a label, e.g. `person`.
	ReferenceLabel
	// ReferenceSystem is a variable synthesised by expansion (e.g. the
	// anonymous relation/attribute variables a rule's then head expands
	// into, scenarios 3–4 of §8).
	ReferenceSystem
)

// Reference identifies a variable within a Conjunction. Two variables
// with equal References denote the same variable.
type Reference struct {
	Kind ReferenceKind
	Name string // user-given name, label text, or a synthesised id
}

func (r Reference) String() string {
	switch r.Kind {
	case ReferenceAnonymous:
		return "$_"
	case ReferenceLabel:
		return r.Name
	case ReferenceSystem:
		return "$_sys_" + r.Name
	default:
		return "$" + r.Name
	}
}

func (r Reference) IsAnonymous() bool { return r.Kind == ReferenceAnonymous }

// systemIDSource is used by rule-head expansion (scenarios 3–4) to mint
// fresh system-generated references deterministically within one call.
type systemIDSource struct{ n int }

func (s *systemIDSource) Next() Reference {
	s.n++
	return Reference{Kind: ReferenceSystem, Name: fmt.Sprintf("%d", s.n)}
}
