package graph_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/kvstore/boltkv"
	"github.com/graphcore-db/graphcore/schema"
)

func openStore(t *testing.T) *boltkv.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := boltkv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAttributeIsContentAddressed(t *testing.T) {
	store := openStore(t)
	sg := schema.NewGraph()
	name, err := sg.DefineType("name", core.PartitionAttribute, "attribute")
	require.NoError(t, err)
	name.ValueKind = core.ValueKindString

	g := graph.New(store, sg)
	w := g.NewWriter()
	a, err := w.InsertAttribute(name, "alice")
	require.NoError(t, err)
	b, err := w.InsertAttribute(name, "alice")
	require.NoError(t, err)
	require.True(t, a.IID.Equal(b.IID))
	require.NoError(t, w.Commit())

	require.Equal(t, int64(1), sg.InstancesCount(name))
}

func TestEntityInsertAndDeleteRoundTrip(t *testing.T) {
	store := openStore(t)
	sg := schema.NewGraph()
	person, err := sg.DefineType("person", core.PartitionEntity, "entity")
	require.NoError(t, err)

	g := graph.New(store, sg)
	w := g.NewWriter()
	p := w.InsertEntity(person)
	require.NoError(t, w.Commit())
	require.Equal(t, int64(1), sg.InstancesCount(person))

	resolvedType, err := g.TypeOf(p.IID)
	require.NoError(t, err)
	require.Equal(t, "person", resolvedType.Label)

	w2 := g.NewWriter()
	require.NoError(t, w2.DeleteThing(p.IID))
	require.NoError(t, w2.Commit())
	require.Equal(t, int64(0), sg.InstancesCount(person))
}

func TestDeleteThingRejectsWhileReferenced(t *testing.T) {
	store := openStore(t)
	sg := schema.NewGraph()
	person, err := sg.DefineType("person", core.PartitionEntity, "entity")
	require.NoError(t, err)
	name, err := sg.DefineType("name", core.PartitionAttribute, "attribute")
	require.NoError(t, err)
	name.ValueKind = core.ValueKindString
	sg.DefineOwns(person, name, false)

	g := graph.New(store, sg)
	w := g.NewWriter()
	p := w.InsertEntity(person)
	a, err := w.InsertAttribute(name, "alice")
	require.NoError(t, err)
	require.NoError(t, w.PutHas(p.IID, a.IID))
	require.NoError(t, w.Commit())

	w2 := g.NewWriter()
	err = w2.DeleteThing(a.IID)
	require.Error(t, err)
	require.True(t, core.ErrReferentialIntegrity.Is(err))
}

func TestRolePlayerEdgesAreBidirectionallyQueryable(t *testing.T) {
	store := openStore(t)
	sg := schema.NewGraph()
	person, err := sg.DefineType("person", core.PartitionEntity, "entity")
	require.NoError(t, err)
	employment, err := sg.DefineType("employment", core.PartitionRelation, "relation")
	require.NoError(t, err)
	employee, err := sg.DefineType("employee", core.PartitionRole, "role")
	require.NoError(t, err)
	require.NoError(t, sg.DefineRelates(employment, employee))
	require.NoError(t, sg.DefinePlays(person, employee))

	g := graph.New(store, sg)
	w := g.NewWriter()
	pers := w.InsertEntity(person)
	rel := w.InsertRelation(employment)
	require.NoError(t, w.PutRolePlayer(rel.IID, employee, pers.IID))
	require.NoError(t, w.Commit())

	players, err := g.PlayersOf(rel.IID, nil)
	require.NoError(t, err)
	require.True(t, players.Valid())
	require.True(t, players.Other().Equal(pers.IID))
	players.Close()

	relations, err := g.RelationsOf(pers.IID, nil)
	require.NoError(t, err)
	require.True(t, relations.Valid())
	require.True(t, relations.Other().Equal(rel.IID))
	relations.Close()
}
