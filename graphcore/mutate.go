package graphcore

import (
	"context"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graph"
	"github.com/graphcore-db/graphcore/pattern"
	"github.com/graphcore-db/graphcore/schema"
)

// Insert runs when first (when non-nil) to bind outer variables, then
// materialises every thing variable insert introduces that when didn't
// already bind — an isa constraint mints a fresh entity/relation/
// attribute instance, a has/relation constraint on an already-bound
// variable instead adds an edge off the existing concept (§4.8: "insert
// runs match first if a when-clause is present, then materialises the
// insert variables").
func (tx *Transaction) Insert(ctx context.Context, when, insert *pattern.Conjunction, opts core.QueryOptions) ([]core.Answer, error) {
	if err := tx.requireSession(core.SessionData); err != nil {
		return nil, err
	}
	if err := tx.requireWrite(); err != nil {
		return nil, err
	}

	bases, err := tx.matchOrEmpty(ctx, when, opts)
	if err != nil {
		return nil, err
	}

	w := tx.writer()
	out := make([]core.Answer, 0, len(bases))
	for _, base := range bases {
		row, err := insertRow(w, insert, base, tx.sg)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete matches, then removes the edges (or whole instance, for a bare
// isa constraint) each delete variable names off every matched answer
// (§4.8). It never runs under inference: only a stored fact can be
// deleted, so the match driving it always runs with Infer forced false
// regardless of what the caller's QueryOptions asked for.
func (tx *Transaction) Delete(ctx context.Context, match, del *pattern.Conjunction, opts core.QueryOptions) error {
	if err := tx.requireSession(core.SessionData); err != nil {
		return err
	}
	if err := tx.requireWrite(); err != nil {
		return err
	}

	opts.Infer = false
	bases, err := tx.matchOrEmpty(ctx, match, opts)
	if err != nil {
		return err
	}

	w := tx.writer()
	for _, base := range bases {
		if err := deleteRow(w, del, base, tx.sg); err != nil {
			return err
		}
	}
	return w.Commit()
}

// Update is delete ∘ insert over each matched answer (§4.8): every row
// matched by match first has del's edges/instances removed, then has
// insert's variables materialised against that same row's bindings, all
// inside one writer batch.
func (tx *Transaction) Update(ctx context.Context, match, del, insert *pattern.Conjunction, opts core.QueryOptions) ([]core.Answer, error) {
	if err := tx.requireSession(core.SessionData); err != nil {
		return nil, err
	}
	if err := tx.requireWrite(); err != nil {
		return nil, err
	}

	matchOpts := opts
	matchOpts.Infer = false
	bases, err := tx.matchOrEmpty(ctx, match, matchOpts)
	if err != nil {
		return nil, err
	}

	w := tx.writer()
	out := make([]core.Answer, 0, len(bases))
	for _, base := range bases {
		if err := deleteRow(w, del, base, tx.sg); err != nil {
			return nil, err
		}
		row, err := insertRow(w, insert, base, tx.sg)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// matchOrEmpty runs conj to exhaustion and collects its answers, or
// returns a single empty-bindings row when conj is nil (a bare insert with
// no preceding when-clause).
func (tx *Transaction) matchOrEmpty(ctx context.Context, conj *pattern.Conjunction, opts core.QueryOptions) ([]core.Answer, error) {
	if conj == nil {
		return []core.Answer{{}}, nil
	}
	it, _, err := tx.reasoner.Match(ctx, conj, tx.effectiveOptions(opts))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []core.Answer
	for {
		ans, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, ans)
	}
	if out == nil {
		out = []core.Answer{}
	}
	return out, nil
}

// insertRow materialises insert's thing variables against base's existing
// bindings, in two passes: pass one mints every new variable's own
// instance (so a has/relation constraint in pass two can always resolve
// both endpoints regardless of which constraint appeared first on the
// conjunction), pass two wires the has/relation edges.
func insertRow(w *graph.Writer, insert *pattern.Conjunction, base core.Answer, sg *schema.Graph) (core.Answer, error) {
	bindings := base.Clone()

	for _, tv := range insert.ThingVariables {
		name := tv.Ref().Name
		if _, bound := bindings[name]; bound {
			continue
		}
		c, err := mintThing(w, tv, sg)
		if err != nil {
			return nil, err
		}
		bindings[name] = c
	}

	for _, tv := range insert.ThingVariables {
		for _, con := range tv.Constraints {
			switch c := con.(type) {
			case *pattern.HasConstraint:
				owner := bindings[tv.Ref().Name]
				attr, ok := bindings[c.Attribute.Ref().Name]
				if !ok {
					return nil, core.ErrInternal.New("insert has attribute variable unresolved: " + c.Attribute.Ref().Name)
				}
				if err := w.PutHas(owner.IID, attr.IID); err != nil {
					return nil, err
				}

			case *pattern.RelationConstraint:
				rel := bindings[tv.Ref().Name]
				for _, rp := range c.Players {
					player, ok := bindings[rp.Player.Ref().Name]
					if !ok {
						return nil, core.ErrInternal.New("insert relation player variable unresolved: " + rp.Player.Ref().Name)
					}
					role, err := roleType(sg, rp)
					if err != nil {
						return nil, err
					}
					if err := w.PutRolePlayer(rel.IID, role, player.IID); err != nil {
						return nil, err
					}
				}

			case *pattern.IIDConstraint:
				return nil, core.ErrIllegalIID.New(tv.Ref().Name)
			}
		}
	}

	return bindings, nil
}

// mintThing allocates tv's instance per its isa constraint (§7 Write:
// ErrMissingIsa/ErrMultipleIsa/ErrIllegalAbstractWrite/ErrAttributeValue/
// ErrMissingRelationPlayers).
func mintThing(w *graph.Writer, tv *pattern.ThingVariable, sg *schema.Graph) (core.Concept, error) {
	var isa *pattern.IsaConstraint
	var value *pattern.ValueConstraint
	var valueCount int
	var relation *pattern.RelationConstraint

	for _, con := range tv.Constraints {
		switch c := con.(type) {
		case *pattern.IsaConstraint:
			if isa != nil {
				return core.Concept{}, core.ErrMultipleIsa.New(tv.Ref().Name)
			}
			isa = c
		case *pattern.ValueConstraint:
			valueCount++
			value = c
		case *pattern.RelationConstraint:
			relation = c
		}
	}
	if isa == nil {
		return core.Concept{}, core.ErrMissingIsa.New(tv.Ref().Name)
	}

	label := isaTypeLabel(isa.Type)
	t, err := sg.Type(label)
	if err != nil {
		return core.Concept{}, err
	}
	if t.Abstract {
		return core.Concept{}, core.ErrIllegalAbstractWrite.New(t.Label)
	}

	switch t.Partition {
	case core.PartitionEntity:
		return w.InsertEntity(t), nil

	case core.PartitionRelation:
		if relation == nil {
			return core.Concept{}, core.ErrMissingRelationPlayers.New(tv.Ref().Name)
		}
		return w.InsertRelation(t), nil

	case core.PartitionAttribute:
		if valueCount != 1 {
			return core.Concept{}, core.ErrAttributeValue.New(tv.Ref().Name, valueCount)
		}
		return w.InsertAttribute(t, value.Literal)

	default:
		return core.Concept{}, core.ErrInternal.New("cannot insert an instance of partition " + t.Partition.String())
	}
}

// isaTypeLabel recovers the label an isa constraint's type variable names;
// insert isa targets are always a concrete label (a type variable, not
// another thing variable), per the Write error taxonomy's assumption that
// the type is always resolvable without its own sub-match.
func isaTypeLabel(tv *pattern.TypeVariable) string {
	for _, con := range tv.Constraints {
		if l, ok := con.(*pattern.LabelConstraint); ok {
			return l.Label
		}
	}
	return tv.Ref().Name
}

func roleType(sg *schema.Graph, rp pattern.RolePlayer) (*schema.TypeVertex, error) {
	if len(rp.RoleTypes) == 0 {
		return nil, core.ErrMissingRelationPlayers.New(rp.Player.Ref().Name)
	}
	return sg.Type(rp.RoleTypes[0])
}

// deleteRow removes, for every delete variable bound in base, the edges
// (or whole instance, for a bare isa) its constraints name — leaving
// referential-integrity enforcement to graph.Writer.DeleteThing, which
// counts edges in the committed store: edges removed earlier in the same
// delete clause are still pending in w's batch and still count, so an
// instance whose edges are deleted in the same clause is rejected with
// ErrReferentialIntegrity rather than cascade-deleted. A variable carrying
// isa alongside a has/relation constraint is treated as edge-only: isa
// there serves to type-disambiguate which edge is meant, not as its own
// deletion instruction, so only a variable with isa and nothing else
// deletes the whole instance.
func deleteRow(w *graph.Writer, del *pattern.Conjunction, base core.Answer, sg *schema.Graph) error {
	for _, tv := range del.ThingVariables {
		concept, ok := base[tv.Ref().Name]
		if !ok {
			return core.ErrInternal.New("delete variable not bound by match: " + tv.Ref().Name)
		}

		var sawIsa, sawEdge bool
		for _, con := range tv.Constraints {
			switch c := con.(type) {
			case *pattern.IsaConstraint:
				sawIsa = true

			case *pattern.HasConstraint:
				attr, ok := base[c.Attribute.Ref().Name]
				if !ok {
					return core.ErrInternal.New("delete has attribute variable not bound: " + c.Attribute.Ref().Name)
				}
				if err := w.DeleteHas(concept.IID, attr.IID); err != nil {
					return err
				}
				sawEdge = true

			case *pattern.RelationConstraint:
				for _, rp := range c.Players {
					player, ok := base[rp.Player.Ref().Name]
					if !ok {
						return core.ErrInternal.New("delete relation player variable not bound: " + rp.Player.Ref().Name)
					}
					role, err := roleType(sg, rp)
					if err != nil {
						return err
					}
					w.DeleteRolePlayer(concept.IID, role, player.IID)
				}
				sawEdge = true
			}
		}

		if sawIsa && !sawEdge {
			if err := w.DeleteThing(concept.IID); err != nil {
				return err
			}
		}
	}
	return nil
}
