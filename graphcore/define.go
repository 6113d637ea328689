package graphcore

import (
	"github.com/hashicorp/go-multierror"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/pattern"
)

// TypeDef introduces one type vertex; Parent names an existing type in
// the same partition (the implicit partition root is itself addressable
// by its root label, e.g. "entity"). ValueKind is only meaningful for
// PartitionAttribute.
type TypeDef struct {
	Label     string
	Partition core.Partition
	Parent    string
	Abstract  bool
	ValueKind core.ValueKind
}

type OwnsDef struct {
	Owner, Attr string
	Key         bool
}

type PlaysDef struct {
	Player, Role string
}

type RelatesDef struct {
	Relation, Role string
}

type RuleDef struct {
	Label string
	When  *pattern.Conjunction
	Then  *pattern.ThingVariable
}

// DefineBatch is one `define` query's worth of schema mutations (§4.8:
// "define/undefine mutate the SchemaGraph under a schema transaction").
// Entries are applied in the order given — a type referencing a parent
// defined earlier in the same batch succeeds, referencing one defined
// later fails with ErrUnknownLabel for that entry alone.
type DefineBatch struct {
	Types   []TypeDef
	Owns    []OwnsDef
	Plays   []PlaysDef
	Relates []RelatesDef
	Rules   []RuleDef
}

// UndefineBatch is one `undefine` query's worth of removals.
type UndefineBatch struct {
	Types []string
	Rules []string
}

// Define applies batch under a schema write transaction, aggregating
// every entry's failure with go-multierror rather than stopping at the
// first (§4.8: "defining ten types where three have a bad sub parent
// reports all three", grounded on dolthub's analyzer convention of
// collecting every unresolved-column error for a query). Entries that
// succeeded before a later entry's failure are not rolled back — the
// SchemaGraph has no multi-statement undo, matching its "writers mutate
// under a lock and bump Snapshot" model (schema/graph.go); a caller that
// needs all-or-nothing batch semantics re-issues an Undefine for whatever
// Define partially applied.
func (tx *Transaction) Define(batch DefineBatch) error {
	if err := tx.requireSession(core.SessionSchema); err != nil {
		return err
	}
	if err := tx.requireWrite(); err != nil {
		return err
	}

	var errs error

	for _, d := range batch.Types {
		t, err := tx.sg.DefineType(d.Label, d.Partition, d.Parent)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		t.Abstract = d.Abstract
		if d.Partition == core.PartitionAttribute {
			t.ValueKind = d.ValueKind
		}
	}

	for _, d := range batch.Owns {
		owner, err := tx.sg.Type(d.Owner)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		attr, err := tx.sg.Type(d.Attr)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		tx.sg.DefineOwns(owner, attr, d.Key)
	}

	for _, d := range batch.Plays {
		player, err := tx.sg.Type(d.Player)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		role, err := tx.sg.Type(d.Role)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := tx.sg.DefinePlays(player, role); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	for _, d := range batch.Relates {
		relation, err := tx.sg.Type(d.Relation)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		role, err := tx.sg.Type(d.Role)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if err := tx.sg.DefineRelates(relation, role); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	for _, d := range batch.Rules {
		if _, err := tx.sg.PutRule(d.Label, d.When, d.Then); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	return errs
}

// Undefine removes every named type and rule, aggregating failures the
// same way Define does. Referential-integrity checking for a type with
// live instances is the DataGraph's job at delete time, not here (§4.3);
// a type that still has instances simply stops being definable as an
// isa/has/relation target in subsequent queries once removed from the
// SchemaGraph — it does not cascade-delete its instances.
func (tx *Transaction) Undefine(batch UndefineBatch) error {
	if err := tx.requireSession(core.SessionSchema); err != nil {
		return err
	}
	if err := tx.requireWrite(); err != nil {
		return err
	}

	var errs error
	for _, label := range batch.Types {
		if err := tx.sg.Undefine(label); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	for _, label := range batch.Rules {
		if err := tx.sg.UndefineRule(label); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}
