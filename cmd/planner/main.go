// Command planner is the single entry point of the industrial production
// planner: no flags, load config/snapshot/catalog, build the production
// graph, run the greedy scheduler, and emit output.json. Grounded on the
// teacher's root main.go start/log/exit-code conventions, minus the
// embedded HTTP server this batch tool has no use for.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/stadam23/orejita-planner/internal/catalog"
	"github.com/stadam23/orejita-planner/internal/config"
	"github.com/stadam23/orejita-planner/internal/logger"
	"github.com/stadam23/orejita-planner/internal/plan"
	"github.com/stadam23/orejita-planner/internal/planerr"
	"github.com/stadam23/orejita-planner/internal/report"
	"github.com/stadam23/orejita-planner/internal/snapshot"
)

const version = "0.1.0"

const (
	configPath   = "config.yaml"
	snapshotDir  = "."
	catalogPath  = "db.sqlite"
	outputPath   = "output.json"
)

func main() {
	logger.Banner(version)

	if err := run(); err != nil {
		var perr *planerr.Error
		if errors.As(err, &perr) {
			logger.Error("FATAL", fmt.Sprintf("%s: %v", perr.Kind, perr.Err))
		} else {
			logger.Error("FATAL", err.Error())
		}
		os.Exit(1)
	}

	logger.Success("DONE", "plan written to "+outputPath)
}

func run() error {
	ctx := context.Background()

	logger.Section("Loading inputs")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Stats("locations", len(cfg.Locations))

	snap, err := snapshot.Load(snapshotDir)
	if err != nil {
		return err
	}
	logger.Stats("locations with assets", len(snap.Assets))

	db, err := catalog.OpenSQLite(catalogPath)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Section("Fetching catalog")
	logger.Loading("CATALOG", "fetching blueprint rows and decryptor table")
	start := time.Now()
	rows, decryptors, err := plan.FetchCatalogRows(ctx, db, cfg)
	if err != nil {
		return err
	}
	logger.Done(time.Since(start).Round(time.Millisecond).String())
	logger.Stats("catalog rows", len(rows))
	logger.Stats("decryptor entries", len(decryptors))

	logger.Section("Building production graph")
	graph, err := plan.NewGraph(cfg, snap, db, rows, decryptors)
	if err != nil {
		return err
	}
	logger.Stats("locations", len(graph.Locations))
	logger.Stats("pipes", len(graph.Pipes))
	logger.Stats("lines", len(graph.Lines))

	logger.Section("Scheduling")
	plan.Run(graph)
	var builds int64
	for _, line := range graph.Lines {
		builds += line.NumBuilds()
	}
	logger.Stats("committed builds", builds)

	logger.Section("Emitting report")
	out, err := report.Generate(ctx, graph)
	if err != nil {
		return err
	}
	data, jsonErr := json.MarshalIndent(out, "", "  ")
	if jsonErr != nil {
		return planerr.Wrap(jsonErr, planerr.InputParse, "main.run")
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return planerr.Wrap(err, planerr.InputIO, "main.run")
	}
	logger.Stats("grand total cost", out.GrandTotalCost)

	return nil
}
