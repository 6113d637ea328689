package main

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graphcore"
)

// bootstrapDoc is the YAML shape a schema-bootstrap file takes: plain
// scalar fields only, since the bootstrap file predates any running
// dispatcher and so can't carry a pattern.Conjunction-shaped rule body —
// rule definitions belong in a `define` query issued after the engine is
// up, not in this file.
type bootstrapDoc struct {
	Types []struct {
		Label     string `yaml:"label"`
		Partition string `yaml:"partition"`
		Parent    string `yaml:"parent"`
		Abstract  bool   `yaml:"abstract"`
		ValueKind string `yaml:"value_kind"`
	} `yaml:"types"`
	Owns []struct {
		Owner string `yaml:"owner"`
		Attr  string `yaml:"attr"`
		Key   bool   `yaml:"key"`
	} `yaml:"owns"`
	Plays []struct {
		Player string `yaml:"player"`
		Role   string `yaml:"role"`
	} `yaml:"plays"`
	Relates []struct {
		Relation string `yaml:"relation"`
		Role     string `yaml:"role"`
	} `yaml:"relates"`
}

func loadBootstrap(path string) (*graphcore.DefineBatch, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap: could not read "+path)
	}
	var doc bootstrapDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "bootstrap: could not parse "+path)
	}

	batch := &graphcore.DefineBatch{}
	for _, t := range doc.Types {
		batch.Types = append(batch.Types, graphcore.TypeDef{
			Label:     t.Label,
			Partition: partitionOf(t.Partition),
			Parent:    t.Parent,
			Abstract:  t.Abstract,
			ValueKind: valueKindOf(t.ValueKind),
		})
	}
	for _, o := range doc.Owns {
		batch.Owns = append(batch.Owns, graphcore.OwnsDef{Owner: o.Owner, Attr: o.Attr, Key: o.Key})
	}
	for _, p := range doc.Plays {
		batch.Plays = append(batch.Plays, graphcore.PlaysDef{Player: p.Player, Role: p.Role})
	}
	for _, r := range doc.Relates {
		batch.Relates = append(batch.Relates, graphcore.RelatesDef{Relation: r.Relation, Role: r.Role})
	}
	return batch, nil
}

func partitionOf(s string) core.Partition {
	switch s {
	case "attribute":
		return core.PartitionAttribute
	case "relation":
		return core.PartitionRelation
	case "role":
		return core.PartitionRole
	default:
		return core.PartitionEntity
	}
}

func valueKindOf(s string) core.ValueKind {
	switch s {
	case "BOOL":
		return core.ValueKindBool
	case "LONG":
		return core.ValueKindLong
	case "DOUBLE":
		return core.ValueKindDouble
	case "STRING":
		return core.ValueKindString
	case "DATETIME":
		return core.ValueKindDateTime
	default:
		return core.ValueKindUnknown
	}
}
