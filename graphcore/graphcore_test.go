package graphcore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graphcore"
	"github.com/graphcore-db/graphcore/kvstore/boltkv"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
)

func newEngine(t *testing.T) *graphcore.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := boltkv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return graphcore.NewEngine(store, schema.NewGraph(), graphcore.Config{})
}

func defineBaseSchema(t *testing.T, e *graphcore.Engine) {
	t.Helper()
	sess := e.OpenSession(core.SessionSchema)
	tx, err := sess.Begin(core.TransactionWrite)
	require.NoError(t, err)

	err = tx.Define(graphcore.DefineBatch{
		Types: []graphcore.TypeDef{
			{Label: "person", Partition: core.PartitionEntity, Parent: "entity"},
			{Label: "name", Partition: core.PartitionAttribute, Parent: "attribute", ValueKind: core.ValueKindString},
			{Label: "employment", Partition: core.PartitionRelation, Parent: "relation"},
			{Label: "employee", Partition: core.PartitionRole, Parent: "role"},
		},
	})
	require.NoError(t, err)

	err = tx.Define(graphcore.DefineBatch{
		Owns:    []graphcore.OwnsDef{{Owner: "person", Attr: "name"}},
		Relates: []graphcore.RelatesDef{{Relation: "employment", Role: "employee"}},
		Plays:   []graphcore.PlaysDef{{Player: "person", Role: "employee"}},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}

func personQuery(varName string) *pattern.Conjunction {
	personType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "person"})
	personType.Constrain(pattern.NewLabel("person"))
	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: varName})
	x.Constrain(pattern.NewIsa(personType))

	c := pattern.NewConjunction()
	c.AddThing(x)
	c.AddType(personType)
	return c
}

func TestSessionKindMismatchRejectsSchemaOpInDataSession(t *testing.T) {
	e := newEngine(t)
	defineBaseSchema(t, e)

	sess := e.OpenSession(core.SessionData)
	tx, err := sess.Begin(core.TransactionWrite)
	require.NoError(t, err)

	err = tx.Define(graphcore.DefineBatch{Types: []graphcore.TypeDef{{Label: "x", Partition: core.PartitionEntity, Parent: "entity"}}})
	require.Error(t, err)
	require.True(t, core.ErrSessionKindMismatch.Is(err))
}

func TestTransactionKindMismatchRejectsWriteInReadTransaction(t *testing.T) {
	e := newEngine(t)
	defineBaseSchema(t, e)

	sess := e.OpenSession(core.SessionData)
	tx, err := sess.Begin(core.TransactionRead)
	require.NoError(t, err)

	_, err = tx.Insert(context.Background(), nil, personQuery("x"), core.QueryOptions{})
	require.Error(t, err)
	require.True(t, core.ErrTransactionKindMismatch.Is(err))
}

func TestInsertThenMatchRoundTrip(t *testing.T) {
	e := newEngine(t)
	defineBaseSchema(t, e)

	sess := e.OpenSession(core.SessionData)
	tx, err := sess.Begin(core.TransactionWrite)
	require.NoError(t, err)

	inserted, err := tx.Insert(context.Background(), nil, personQuery("x"), core.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	require.NoError(t, tx.Commit())

	readSess := e.OpenSession(core.SessionData)
	readTx, err := readSess.Begin(core.TransactionRead)
	require.NoError(t, err)

	it, err := readTx.Match(context.Background(), personQuery("y"), core.QueryOptions{})
	require.NoError(t, err)
	defer it.Close()

	var rows []core.Answer
	for {
		ans, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		rows = append(rows, ans)
	}
	require.Len(t, rows, 1)
	require.True(t, rows[0]["y"].IID.Equal(inserted[0]["x"].IID))
}

func TestDeleteRemovesMatchedInstance(t *testing.T) {
	e := newEngine(t)
	defineBaseSchema(t, e)

	sess := e.OpenSession(core.SessionData)
	tx, err := sess.Begin(core.TransactionWrite)
	require.NoError(t, err)

	_, err = tx.Insert(context.Background(), nil, personQuery("x"), core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	deleteTx, err := e.OpenSession(core.SessionData).Begin(core.TransactionWrite)
	require.NoError(t, err)
	require.NoError(t, deleteTx.Delete(context.Background(), personQuery("x"), personQuery("x"), core.QueryOptions{}))
	require.NoError(t, deleteTx.Commit())

	readTx, err := e.OpenSession(core.SessionData).Begin(core.TransactionRead)
	require.NoError(t, err)
	it, err := readTx.Match(context.Background(), personQuery("z"), core.QueryOptions{})
	require.NoError(t, err)
	defer it.Close()
	_, ok, err := it.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "the deleted person must no longer match")
}

func TestDefineAggregatesEveryBadEntry(t *testing.T) {
	e := newEngine(t)
	sess := e.OpenSession(core.SessionSchema)
	tx, err := sess.Begin(core.TransactionWrite)
	require.NoError(t, err)

	err = tx.Define(graphcore.DefineBatch{
		Types: []graphcore.TypeDef{
			{Label: "a", Partition: core.PartitionEntity, Parent: "no-such-parent-1"},
			{Label: "b", Partition: core.PartitionEntity, Parent: "no-such-parent-2"},
			{Label: "person", Partition: core.PartitionEntity, Parent: "entity"},
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no-such-parent-1")
	require.Contains(t, err.Error(), "no-such-parent-2")
	require.NoError(t, tx.Commit())

	// The third, valid entry still applied despite the first two failing:
	// a later query against it succeeds instead of reporting unknown-label.
	readTx, err := e.OpenSession(core.SessionData).Begin(core.TransactionRead)
	require.NoError(t, err)
	it, err := readTx.Match(context.Background(), personQuery("z"), core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, it.Close())
}
