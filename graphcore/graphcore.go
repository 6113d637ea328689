// Package graphcore is the query dispatcher (C9, §4.8): the thin
// composition root that wires a SchemaGraph and DataGraph to the planner,
// executor and reasoner, and routes an already-parsed query to the
// operation its kind names. It plays the same structural role the
// teacher's sqle.Engine plays over its own analyzer/executor stack, scaled
// down to the contract this core actually needs (§6: transaction/session
// lifecycle itself is an external collaborator, not reimplemented here).
package graphcore

import (
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/kvstore"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/reasoner"
	"github.com/graphcore-db/graphcore/schema"
)

// Config carries the engine-wide defaults a Transaction falls back to when
// a query's own QueryOptions leaves a knob at its zero value (§6 config:
// planner time limit, reasoning iteration budget).
type Config struct {
	PlannerTimeLimitMS int
	ReasoningBudget    int
}

// Engine owns one store-backed SchemaGraph/DataGraph pair and mints
// sessions against them. One Engine corresponds to one open database.
type Engine struct {
	store kvstore.OrderedStore
	sg    *schema.Graph
	g     *graph.Graph
	cfg   Config
}

// NewEngine binds an Engine to an already-open store and the SchemaGraph
// reconstructed (or freshly created) over it; callers that need a
// from-scratch database pass schema.NewGraph().
func NewEngine(store kvstore.OrderedStore, sg *schema.Graph, cfg Config) *Engine {
	return &Engine{store: store, sg: sg, g: graph.New(store, sg), cfg: cfg}
}

// Close releases the backing store. No in-flight session/transaction
// tracking happens here — the external session manager (spec.md §1) is
// responsible for draining open sessions before calling this.
func (e *Engine) Close() error { return e.store.Close() }

// Bootstrap applies a batch of schema definitions up front, the way a
// fresh database is seeded before any session opens (§6 config: "a
// schema-bootstrap file path consumed by graphcore.Engine.Bootstrap").
// The caller is expected to have already parsed the bootstrap file (via
// config.Load plus whatever surface parser produces a DefineBatch) — this
// method only applies it.
func (e *Engine) Bootstrap(batch DefineBatch) error {
	sess := e.OpenSession(core.SessionSchema)
	tx, err := sess.Begin(core.TransactionWrite)
	if err != nil {
		return err
	}
	if err := tx.Define(batch); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Session pins a session kind (§4.8: schema changes require a schema
// session, data reads/writes require a data session) a transaction is
// checked against before it runs any operation.
type Session struct {
	e    *Engine
	kind core.SessionKind
	id   core.TxID
}

// OpenSession starts a session of the given kind against e.
func (e *Engine) OpenSession(kind core.SessionKind) *Session {
	return &Session{e: e, kind: kind, id: core.NewTxID()}
}

func (s *Session) ID() core.TxID        { return s.id }
func (s *Session) Kind() core.SessionKind { return s.kind }

// Begin opens a transaction of the given kind under this session.
// Read transactions may run data queries only (match/match.aggregate/
// match.group); write transactions may additionally insert/delete/update
// (data session) or define/undefine (schema session) — §4.8's
// session/transaction-kind rejection rule is enforced per-call in
// dispatch.go, not here, since it depends on the query kind too.
func (s *Session) Begin(kind core.TransactionKind) (*Transaction, error) {
	return &Transaction{
		sess:     s,
		kind:     kind,
		id:       core.NewTxID(),
		g:        s.e.g,
		sg:       s.e.sg,
		cfg:      s.e.cfg,
		reasoner: reasoner.New(s.e.g, s.e.sg),
	}, nil
}

// Transaction is the unit of isolation a dispatcher call runs under (§5).
// Commit/Rollback here only decide whether the writer batch accumulated by
// a write operation is actually flushed to the store — the surrounding
// session/transaction lifecycle (locking, multi-statement atomicity across
// several dispatcher calls) belongs to the external collaborator named in
// spec.md §1.
type Transaction struct {
	sess *Session
	kind core.TransactionKind
	id   core.TxID

	g        *graph.Graph
	sg       *schema.Graph
	cfg      Config
	reasoner *reasoner.Reasoner
}

func (tx *Transaction) ID() core.TxID { return tx.id }

func (tx *Transaction) requireSession(want core.SessionKind) error {
	if tx.sess.kind != want {
		return core.ErrSessionKindMismatch.New(want.String(), tx.sess.kind.String())
	}
	return nil
}

func (tx *Transaction) requireWrite() error {
	if tx.kind != core.TransactionWrite {
		return core.ErrTransactionKindMismatch.New(core.TransactionWrite.String(), tx.kind.String())
	}
	return nil
}

func (tx *Transaction) writer() *graph.Writer {
	return tx.g.NewWriter()
}

// effectiveOptions folds the transaction's engine-configured defaults into
// a per-call QueryOptions wherever the caller left a knob at its zero
// value (§6).
func (tx *Transaction) effectiveOptions(opts core.QueryOptions) core.QueryOptions {
	if opts.ReasoningBudget == 0 {
		opts.ReasoningBudget = tx.cfg.ReasoningBudget
	}
	if opts.PlannerTimeLimitMS == 0 {
		opts.PlannerTimeLimitMS = tx.cfg.PlannerTimeLimitMS
	}
	return opts
}

// Commit is a no-op past what individual write operations already
// committed through their own graph.Writer batch (§4.3: each mutating
// dispatcher call is itself atomic); it exists so callers have a single,
// symmetric Commit/Rollback pair to drive regardless of query kind.
func (tx *Transaction) Commit() error { return nil }

// Rollback likewise has nothing left to undo once a write operation's own
// batch has committed; a dispatcher call that fails before committing its
// batch has made no persisted change in the first place.
func (tx *Transaction) Rollback() error { return nil }

// PutRule defines a new inference rule under a schema transaction (§6:
// "graphcore.PutRule(label, when, then)").
func (tx *Transaction) PutRule(label string, when *pattern.Conjunction, then *pattern.ThingVariable) (*schema.Rule, error) {
	if err := tx.requireSession(core.SessionSchema); err != nil {
		return nil, err
	}
	if err := tx.requireWrite(); err != nil {
		return nil, err
	}
	return tx.sg.PutRule(label, when, then)
}
