// Command graphcored is the composition root wiring config -> boltkv ->
// schema/graph -> graphcore into one runnable process (§6). It does not
// itself speak any wire protocol — the surface query language and network
// listener are the external collaborators named in spec.md §1 — it only
// demonstrates that the pieces assemble and bootstraps the schema file
// named in config, if any.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/graphcore-db/graphcore/config"
	"github.com/graphcore-db/graphcore/core"
	"github.com/graphcore-db/graphcore/graphcore"
	"github.com/graphcore-db/graphcore/kvstore/boltkv"
	"github.com/graphcore-db/graphcore/schema"
	"github.com/graphcore-db/graphcore/telemetry"
)

func main() {
	configPath := flag.String("config", "graphcored.yaml", "path to the engine config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		telemetry.Log.WithError(err).Fatal("graphcored: could not load config")
	}

	store, err := boltkv.Open(cfg.Store)
	if err != nil {
		telemetry.Log.WithError(err).Fatal("graphcored: could not open store")
	}

	sg := schema.NewGraph()
	engine := graphcore.NewEngine(store, sg, graphcore.Config{
		PlannerTimeLimitMS: cfg.Planner.TimeLimitMS,
		ReasoningBudget:    cfg.Reasoning.Budget,
	})
	defer engine.Close()

	if cfg.BootstrapPath != "" {
		bootstrap, err := loadBootstrap(cfg.BootstrapPath)
		if err != nil {
			telemetry.Log.WithError(err).Fatal("graphcored: could not load bootstrap file")
		}
		if err := engine.Bootstrap(*bootstrap); err != nil {
			telemetry.Log.WithError(err).Fatal("graphcored: bootstrap failed")
		}
	}

	// Opening and immediately discarding a data session proves the
	// composition root wires end to end; a real listener would hold this
	// session open and drive it from parsed queries instead.
	sess := engine.OpenSession(core.SessionData)
	telemetry.Log.WithFields(logrus.Fields{"store": cfg.Store, "session": sess.ID()}).Info("graphcored: engine ready")
	os.Exit(0)
}
