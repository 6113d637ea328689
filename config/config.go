// Package config is the YAML-driven engine configuration surface (§6):
// planner time limits, the reasoning iteration budget, and a schema
// bootstrap file path consumed by graphcore.Engine.Bootstrap.
package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is the top-level document Load parses.
type Config struct {
	// Store is the path to the boltkv database file.
	Store string `yaml:"store"`

	// BootstrapPath names a schema-definition file applied via
	// graphcore.Engine.Bootstrap each time graphcored starts; empty means
	// no bootstrap.
	BootstrapPath string `yaml:"bootstrap_path"`

	Planner   PlannerConfig   `yaml:"planner"`
	Reasoning ReasoningConfig `yaml:"reasoning"`
}

// PlannerConfig mirrors the planner's own solve-time knobs (§4.5).
type PlannerConfig struct {
	// TimeLimitMS bounds the MIP solver's per-call wall time; zero means
	// planner.DefaultTimeLimit (planner.ExtendedTimeLimit when re-solving
	// from a previous plan).
	TimeLimitMS int `yaml:"time_limit_ms"`
}

// ReasoningConfig mirrors the reasoner's fixpoint knobs (§4.7).
type ReasoningConfig struct {
	// Budget bounds the reasoner's fixpoint iteration count; zero means
	// reasoner.DefaultBudget.
	Budget int `yaml:"budget"`
}

// Load reads and parses a YAML config document at path, wrapping whatever
// read or parse failure occurs with the path that caused it — the same
// errors.Wrap(err, ctx) idiom the teacher's own engine.go uses to attach
// call-site context before an error propagates up to the caller.
func Load(path string) (*Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: could not read "+path)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "config: could not parse "+path)
	}
	return &cfg, nil
}
