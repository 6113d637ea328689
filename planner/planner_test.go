package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/structure"
)

func personOwnsNameSchema(t *testing.T) *schema.Graph {
	t.Helper()
	g := schema.NewGraph()
	person, err := g.DefineType("person", core.PartitionEntity, "entity")
	require.NoError(t, err)
	name, err := g.DefineType("name", core.PartitionAttribute, "attribute")
	require.NoError(t, err)
	name.ValueKind = core.ValueKindString
	g.DefineOwns(person, name, false)
	for i := 0; i < 5; i++ {
		g.RecordInstance(person, 1)
	}
	for i := 0; i < 5; i++ {
		g.RecordInstance(name, 1)
	}
	g.RecordHasEdge(person, name, 5)
	return g
}

// $x isa person; $x has name $n.
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

func TestPlannerOptimiseProducesValidProcedure(t *testing.T) {
	g := personOwnsNameSchema(t)
	s := structure.Project(ownsConjunction())
	require.True(t, s.Connected())

	p := New(s)
	proc, err := p.Optimise(context.Background(), g, core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, proc.Validate())
	require.Len(t, proc.Edges, len(s.Edges))
}

func TestPlannerOptimiseReusesUnchangedSnapshot(t *testing.T) {
	g := personOwnsNameSchema(t)
	s := structure.Project(ownsConjunction())
	p := New(s)

	first, err := p.Optimise(context.Background(), g, core.QueryOptions{})
	require.NoError(t, err)

	second, err := p.Optimise(context.Background(), g, core.QueryOptions{})
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestPlannerOptimiseRecomputesAfterSignificantDrift(t *testing.T) {
	g := personOwnsNameSchema(t)
	s := structure.Project(ownsConjunction())
	p := New(s)

	first, err := p.Optimise(context.Background(), g, core.QueryOptions{})
	require.NoError(t, err)

	person, err := g.Type("person")
	require.NoError(t, err)
	name, err := g.Type("name")
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		g.RecordInstance(person, 1)
		g.RecordHasEdge(person, name, 1)
	}

	second, err := p.Optimise(context.Background(), g, core.QueryOptions{})
	require.NoError(t, err)
	require.NoError(t, second.Validate())
	require.NotSame(t, first, second)
}
