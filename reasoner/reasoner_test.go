package reasoner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/kvstore/boltkv"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/reasoner"
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

// when {$x isa person; $y isa person; $r (spouse:$x, spouse:$y) isa marriage}
// then $f (friend:$x, friend:$y) isa friendship
//
// Scenario 1 of spec §8: "rule.whenConcludables contains: 2 isa, 0 has, 1
// relation, 0 value. rule.thenConcludables: 1 isa, 0 has, 1 relation, 0
// value."
func marriageIsFriendshipRule() (when *pattern.Conjunction, then *pattern.ThingVariable) {
	personType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "person"})
	personType.Constrain(pattern.NewLabel("person"))
	marriageType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "marriage"})
	marriageType.Constrain(pattern.NewLabel("marriage"))

	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})
	y := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "y"})
	r := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "r"})
	x.Constrain(pattern.NewIsa(personType))
	y.Constrain(pattern.NewIsa(personType))
	r.Constrain(pattern.NewIsa(marriageType))
	r.Constrain(pattern.NewRelation(
		pattern.RolePlayer{RoleTypes: []string{"spouse"}, Player: x},
		pattern.RolePlayer{RoleTypes: []string{"spouse"}, Player: y},
	))

	when = pattern.NewConjunction()
	when.AddThing(x)
	when.AddThing(y)
	when.AddThing(r)
	when.AddType(personType)
	when.AddType(marriageType)

	friendshipType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "friendship"})
	friendshipType.Constrain(pattern.NewLabel("friendship"))
	f := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceSystem, Name: "f"})
	f.Constrain(pattern.NewIsa(friendshipType))
	f.Constrain(pattern.NewRelation(
		pattern.RolePlayer{RoleTypes: []string{"friend"}, Player: x},
		pattern.RolePlayer{RoleTypes: []string{"friend"}, Player: y},
	))
	then = f
	return when, then
}

func TestConcludablesMatchMarriageIsFriendshipCounts(t *testing.T) {
	when, then := marriageIsFriendshipRule()

	whenC := reasoner.ConjunctionConcludables(when)
	var isaN, hasN, relN, valN int
	for _, c := range whenC {
		switch c.Kind {
		case reasoner.ConcludableIsa:
			isaN++
		case reasoner.ConcludableHas:
			hasN++
		case reasoner.ConcludableRelation:
			relN++
		case reasoner.ConcludableValue:
			valN++
		}
	}
	require.Equal(t, 2, isaN)
	require.Equal(t, 0, hasN)
	require.Equal(t, 1, relN)
	require.Equal(t, 0, valN)

	sg := schema.NewGraph()
	rule, err := sg.PutRule("marriage-is-friendship", when, then)
	require.NoError(t, err)

	thenC := reasoner.ThenConcludables(rule)
	isaN, hasN, relN, valN = 0, 0, 0, 0
	for _, c := range thenC {
		switch c.Kind {
		case reasoner.ConcludableIsa:
			isaN++
		case reasoner.ConcludableHas:
			hasN++
		case reasoner.ConcludableRelation:
			relN++
		case reasoner.ConcludableValue:
			valN++
		}
	}
	require.Equal(t, 1, isaN)
	require.Equal(t, 0, hasN)
	require.Equal(t, 1, relN)
	require.Equal(t, 0, valN)
}

// (friend:$a, friend:$b) isa friendship;
func friendshipQuery() *pattern.Conjunction {
	friendshipType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "friendship"})
	friendshipType.Constrain(pattern.NewLabel("friendship"))
	a := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "a"})
	b := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "b"})
	q := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "q"})
	q.Constrain(pattern.NewIsa(friendshipType))
	q.Constrain(pattern.NewRelation(
		pattern.RolePlayer{RoleTypes: []string{"friend"}, Player: a},
		pattern.RolePlayer{RoleTypes: []string{"friend"}, Player: b},
	))

	c := pattern.NewConjunction()
	c.AddThing(a)
	c.AddThing(b)
	c.AddThing(q)
	c.AddType(friendshipType)
	return c
}

func TestReasonerInfersFriendshipFromMarriage(t *testing.T) {
	store := openStore(t)
	sg := schema.NewGraph()

	person, err := sg.DefineType("person", core.PartitionEntity, "entity")
	require.NoError(t, err)
	marriage, err := sg.DefineType("marriage", core.PartitionRelation, "relation")
	require.NoError(t, err)
	spouse, err := sg.DefineType("spouse", core.PartitionRole, "role")
	require.NoError(t, err)
	friendship, err := sg.DefineType("friendship", core.PartitionRelation, "relation")
	require.NoError(t, err)
	friend, err := sg.DefineType("friend", core.PartitionRole, "role")
	require.NoError(t, err)
	require.NoError(t, sg.DefineRelates(marriage, spouse))
	require.NoError(t, sg.DefineRelates(friendship, friend))
	require.NoError(t, sg.DefinePlays(person, spouse))
	require.NoError(t, sg.DefinePlays(person, friend))

	when, then := marriageIsFriendshipRule()
	_, err = sg.PutRule("marriage-is-friendship", when, then)
	require.NoError(t, err)

	g := graph.New(store, sg)
	w := g.NewWriter()
	alice := w.InsertEntity(person)
	bob := w.InsertEntity(person)
	marriageRel := w.InsertRelation(marriage)
	require.NoError(t, w.PutRolePlayer(marriageRel.IID, spouse, alice.IID))
	require.NoError(t, w.PutRolePlayer(marriageRel.IID, spouse, bob.IID))
	require.NoError(t, w.Commit())

	r := reasoner.New(g, sg)

	it, _, err := r.Match(context.Background(), friendshipQuery(), core.QueryOptions{Infer: false})
	require.NoError(t, err)
	var baseAnswers []core.Answer
	for {
		ans, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		baseAnswers = append(baseAnswers, ans)
	}
	require.NoError(t, it.Close())
	require.Empty(t, baseAnswers, "no friendship relation was ever inserted, so a non-inferring match must be empty")

	it, _, err = r.Match(context.Background(), friendshipQuery(), core.QueryOptions{Infer: true})
	require.NoError(t, err)
	var inferred []core.Answer
	for {
		ans, ok, err := it.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		inferred = append(inferred, ans)
	}
	require.NoError(t, it.Close())

	require.Len(t, inferred, 1)
	ans := inferred[0]
	gotA, gotB := ans["a"].IID, ans["b"].IID
	samePair := (gotA.Equal(alice.IID) && gotB.Equal(bob.IID)) || (gotA.Equal(bob.IID) && gotB.Equal(alice.IID))
	require.True(t, samePair, "inferred friendship should pair alice and bob, got a=%x b=%x", gotA, gotB)
}

func concludableCounts(cs []*reasoner.Concludable) (isaN, hasN, relN, valN int) {
	for _, c := range cs {
		switch c.Kind {
		case reasoner.ConcludableIsa:
			isaN++
		case reasoner.ConcludableHas:
			hasN++
		case reasoner.ConcludableRelation:
			relN++
		case reasoner.ConcludableValue:
			valN++
		}
	}
	return
}

// when {$x isa milk; $a 10 isa age-in-days} then $x has $a
//
// Scenario 2 of §8: "whenConcludables: 2 isa; thenConcludables: 0 isa, 1
// has" — a has head naming an already-bound variable needs no expansion.
func TestConcludablesHasWithVariableAttribute(t *testing.T) {
	milkType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "milk"})
	milkType.Constrain(pattern.NewLabel("milk"))
	ageType := pattern.NewTypeVariable(pattern.Reference{Kind: pattern.ReferenceLabel, Name: "age-in-days"})
	ageType.Constrain(pattern.NewLabel("age-in-days"))

	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})
	x.Constrain(pattern.NewIsa(milkType))
	a := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "a"})
	a.Constrain(pattern.NewIsa(ageType))
	a.Constrain(pattern.NewValueLiteral(pattern.OpEQ, int64(10)))

	when := pattern.NewConjunction()
	when.AddThing(x)
	when.AddThing(a)
	when.AddType(milkType)
	when.AddType(ageType)

	isaN, hasN, relN, valN := concludableCounts(reasoner.ConjunctionConcludables(when))
	require.Equal(t, 2, isaN)
	require.Equal(t, 0, hasN)
	require.Equal(t, 0, relN)
	require.Equal(t, 1, valN, "the $a 10 literal is itself a value concludable alongside its isa")

	x2 := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})
	x2.Constrain(pattern.NewHas(a, "age-in-days"))

	sg := schema.NewGraph()
	rule, err := sg.PutRule("milk-has-age", when, x2)
	require.NoError(t, err)

	isaN, hasN, relN, valN = concludableCounts(reasoner.ThenConcludables(rule))
	require.Equal(t, 0, isaN)
	require.Equal(t, 1, hasN)
	require.Equal(t, 0, relN)
	require.Equal(t, 0, valN)
}

// then $x has is-still-good false
//
// Scenario 3 of §8: expands to a sub-conjunction with an anonymous
// attribute variable bearing isa is-still-good, value = false, and a has
// edge from $x; thenConcludables still reports a single has concludable.
func TestRuleHeadExpandsHasLiteral(t *testing.T) {
	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})

	ids := pattern.NewSystemIDSource()
	has := pattern.ExpandHasLiteral(ids, x, "is-still-good", false)

	require.True(t, has.Attribute.Ref().Kind == pattern.ReferenceSystem, "the minted attribute variable must be a system reference, not user-named")
	require.Equal(t, "is-still-good", has.Type)

	var gotIsa bool
	var gotValue interface{}
	for _, con := range has.Attribute.Constraints {
		switch c := con.(type) {
		case *pattern.IsaConstraint:
			gotIsa = true
			var label string
			for _, tc := range c.Type.Constraints {
				if l, ok := tc.(*pattern.LabelConstraint); ok {
					label = l.Label
				}
			}
			require.Equal(t, "is-still-good", label)
		case *pattern.ValueConstraint:
			require.Equal(t, pattern.OpEQ, c.Op)
			gotValue = c.Literal
		}
	}
	require.True(t, gotIsa)
	require.Equal(t, false, gotValue)

	sg := schema.NewGraph()
	when := pattern.NewConjunction()
	when.AddThing(x)
	rule, err := sg.PutRule("milk-goes-bad", when, x)
	require.NoError(t, err)

	isaN, hasN, relN, valN := concludableCounts(reasoner.ThenConcludables(rule))
	require.Equal(t, 0, isaN)
	require.Equal(t, 1, hasN)
	require.Equal(t, 0, relN)
	require.Equal(t, 0, valN)
}

// then (employee: $x) isa employment
//
// Scenario 4 of §8: expands to an anonymous relation variable bound by
// isa employment and a single role-player edge of role-type
// employment:employee; thenConcludables reports one isa plus one
// relation concludable, matching the bare relation-insertion head shape.
func TestRuleHeadExpandsRelationSingletonPlayer(t *testing.T) {
	x := pattern.NewThingVariable(pattern.Reference{Kind: pattern.ReferenceNamed, Name: "x"})

	ids := pattern.NewSystemIDSource()
	rel := pattern.ExpandRelationSingletonPlayer(ids, "employment", "employee", x)

	require.Equal(t, pattern.ReferenceSystem, rel.Ref().Kind)
	require.Len(t, rel.Constraints, 2)

	var gotIsa, gotRelation bool
	for _, con := range rel.Constraints {
		switch c := con.(type) {
		case *pattern.IsaConstraint:
			gotIsa = true
			var label string
			for _, tc := range c.Type.Constraints {
				if l, ok := tc.(*pattern.LabelConstraint); ok {
					label = l.Label
				}
			}
			require.Equal(t, "employment", label)
		case *pattern.RelationConstraint:
			gotRelation = true
			require.Len(t, c.Players, 1)
			require.Equal(t, []string{"employee"}, c.Players[0].RoleTypes)
			require.Same(t, x, c.Players[0].Player)
		}
	}
	require.True(t, gotIsa)
	require.True(t, gotRelation)

	sg := schema.NewGraph()
	when := pattern.NewConjunction()
	when.AddThing(x)
	rule, err := sg.PutRule("hires-to-employment", when, rel)
	require.NoError(t, err)

	isaN, hasN, relN, valN := concludableCounts(reasoner.ThenConcludables(rule))
	require.Equal(t, 1, isaN)
	require.Equal(t, 0, hasN)
	require.Equal(t, 1, relN)
	require.Equal(t, 0, valN)
}
