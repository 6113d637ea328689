// Package core holds the value types and error taxonomy shared by every
// component of the traversal core: concepts, value kinds, answers, query
// options and the session/transaction vocabulary the dispatcher speaks.
package core

import "gopkg.in/src-d/go-errors.v1"

// Error kinds, one per leaf in the taxonomy of §7. Each is instantiated
// with .New(args...) and tested with .Is(err).
var (
	// Schema errors.
	ErrUnknownLabel          = errors.NewKind("unknown label: %s")
	ErrSubCycle              = errors.NewKind("cycle detected in sub hierarchy rooted at %s")
	ErrIncompatibleOwnsPlays = errors.NewKind("type %s cannot own/play %s: incompatible with declared schema")
	ErrIllegalRuleHead       = errors.NewKind("illegal rule head for rule %q: %s")
	ErrOverriddenTypeUsed    = errors.NewKind("type %s is overridden and cannot be used in a traversal")

	// Write errors.
	ErrMissingIsa        = errors.NewKind("insert of variable %s is missing an isa constraint")
	ErrMultipleIsa       = errors.NewKind("variable %s has more than one isa constraint")
	ErrAttributeValue    = errors.NewKind("attribute %s insert requires exactly one value, got %d")
	ErrIllegalIID        = errors.NewKind("iid constraint is not allowed on an insert variable: %s")
	ErrIllegalAbstractWrite = errors.NewKind("cannot insert an instance of abstract type %s")
	ErrMissingRelationPlayers = errors.NewKind("relation insert for variable %s is missing role players")
	ErrReferentialIntegrity   = errors.NewKind("cannot delete %s: still referenced by %d edge(s)")
	ErrUnknownConcept         = errors.NewKind("no concept with iid %s")

	// Transaction errors.
	ErrSessionKindMismatch     = errors.NewKind("operation requires a %s session, got %s")
	ErrTransactionKindMismatch = errors.NewKind("operation requires a %s transaction, got %s")

	// Planning errors.
	ErrUnexpectedPlanningError = errors.NewKind("planner could not produce a procedure: solver status %s\n%s")

	// Reasoning errors.
	ErrReasoningBudgetExceeded = errors.NewKind("reasoning exceeded the configured iteration budget (%d)")
	ErrUnifierConstruction     = errors.NewKind("could not construct a unifier for rule %q: %s")

	// Query-lifetime errors.
	ErrQueryCancelled = errors.NewKind("query cancelled: %s")

	// Internal errors: unreachable branches, encoding invariants violated.
	ErrInternal = errors.NewKind("internal error: %s")

	// Encoding errors.
	ErrValueTooLong = errors.NewKind("value of %d bytes exceeds the maximum of %d for kind %s")
)
