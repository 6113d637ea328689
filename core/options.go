package core

import uuid "github.com/satori/go.uuid"

// SessionKind and TransactionKind gate which operations a dispatcher call
// may perform (§4.8, §6).
type SessionKind byte

const (
	SessionSchema SessionKind = iota
	SessionData
)

func (k SessionKind) String() string {
	if k == SessionSchema {
		return "schema"
	}
	return "data"
}

type TransactionKind byte

const (
	TransactionRead TransactionKind = iota
	TransactionWrite
)

func (k TransactionKind) String() string {
	if k == TransactionRead {
		return "read"
	}
	return "write"
}

// QueryKind enumerates the eight query surfaces the dispatcher accepts
// (§6): the six named in spec.md plus the two match variants supplemented
// in SPEC_FULL.md §3.
type QueryKind byte

const (
	QueryMatch QueryKind = iota
	QueryMatchAggregate
	QueryMatchGroup
	QueryInsert
	QueryDelete
	QueryUpdate
	QueryDefine
	QueryUndefine
)

// QueryOptions are the per-call knobs named in §6.
type QueryOptions struct {
	Infer bool
	// Explain, when set, makes Transaction.Match/MatchAggregate/
	// MatchGroup populate MatchResult.Procedure with the plan the
	// planner chose for the match (§3 supplement).
	Explain bool
	// Parallel, when set, fans the Start vertex's seed universe out over
	// several goroutines, each walking a disjoint partition of it and
	// feeding one merged answer stream (§5; rowexec.parallelExecute).
	Parallel bool
	// BatchSize sizes the merge channel rowexec.parallelExecute's shards
	// feed into when Parallel is set; zero means "use the package
	// default". Unused when Parallel is false.
	BatchSize    int
	TraceEnabled bool
	// ReasoningBudget bounds the Reasoner's fixpoint iterations; zero
	// means "use the engine-configured default".
	ReasoningBudget int
	// PlannerTimeLimitMS overrides the planner's solve time budget for
	// this call; zero means "use the engine-configured default".
	PlannerTimeLimitMS int
}

// TxID identifies a session or transaction (Session.ID, Transaction.ID),
// e.g. in log lines.
type TxID uuid.UUID

func NewTxID() TxID { return TxID(uuid.NewV4()) }

func (t TxID) String() string { return uuid.UUID(t).String() }
