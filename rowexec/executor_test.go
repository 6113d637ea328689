package rowexec_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/kvstore/boltkv"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/planner"
	"github.com/graphcore-db/graphcore/rowexec"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

func openStore(t *testing.T) *boltkv.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := boltkv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// $x isa person; $x has name $n;
func ownsConjunction() *pattern.Conjunction {
	c := pattern.NewConjunction()
	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})
	n := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "n"})
	personType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "person"})
	personType.Constrain(pattern.NewLabel("person"))
	x.Constrain(pattern.NewIsa(personType))
	x.Constrain(pattern.NewHas(n, "name"))
	c.AddThing(x)
	c.AddThing(n)
	c.AddType(personType)
	return c
}

func drain(t *testing.T, it core.AnswerIterator) []core.Answer {
	t.Helper()
	defer it.Close()
	var out []core.Answer
	for {
		ans, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, ans)
	}
}

func TestExecutorWalksHasEdge(t *testing.T) {
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
	alice := w.InsertEntity(person)
	bob := w.InsertEntity(person)
	aliceName, err := w.InsertAttribute(name, "alice")
	require.NoError(t, err)
	require.NoError(t, w.PutHas(alice.IID, aliceName.IID))
	require.NoError(t, w.Commit())
	_ = bob

	s := structure.Project(ownsConjunction())
	p := planner.New(s)
	proc, err := p.Optimise(context.Background(), sg, core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, proc.Validate())

	it, err := rowexec.Execute(context.Background(), proc, g, sg, core.QueryOptions{})
	require.NoError(t, err)
	answers := drain(t, it)

	require.Len(t, answers, 1)
	require.True(t, answers[0]["x"].IID.Equal(alice.IID))
	require.Equal(t, "alice", answers[0]["n"].Value)
}

// $r (employee: $x) isa employment; $x isa person;
func rolePlayerConjunction() *pattern.Conjunction {
	c := pattern.NewConjunction()
	r := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "r"})
	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})
	employmentType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "employment"})
	employmentType.Constrain(pattern.NewLabel("employment"))
	personType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "person"})
	personType.Constrain(pattern.NewLabel("person"))
	r.Constrain(pattern.NewIsa(employmentType))
	r.Constrain(pattern.NewRelation(pattern.RolePlayer{RoleTypes: []string{"employee"}, Player: x}))
	x.Constrain(pattern.NewIsa(personType))
	c.AddThing(r)
	c.AddThing(x)
	c.AddType(employmentType)
	c.AddType(personType)
	return c
}

func TestExecutorWalksRolePlayerEdge(t *testing.T) {
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

	s := structure.Project(rolePlayerConjunction())
	require.True(t, s.Connected())
	p := planner.New(s)
	proc, err := p.Optimise(context.Background(), sg, core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, proc.Validate())

	it, err := rowexec.Execute(context.Background(), proc, g, sg, core.QueryOptions{})
	require.NoError(t, err)
	answers := drain(t, it)

	require.Len(t, answers, 1)
	require.True(t, answers[0]["r"].IID.Equal(rel.IID))
	require.True(t, answers[0]["x"].IID.Equal(pers.IID))
}
