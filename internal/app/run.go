package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/dagbench/internal/ctxlog"
	"github.com/vk/dagbench/internal/executor"
	"github.com/vk/dagbench/internal/generator"
	"github.com/vk/dagbench/internal/graph"
	"github.com/vk/dagbench/internal/scenario"
)

// workloadReport is one JSON line of benchmark output.
type workloadReport struct {
	Workload string            `json:"workload"`
	Metrics  *executor.Metrics `json:"metrics"`
}

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	workloads, err := a.resolveWorkloads(ctx, cfg)
	if err != nil {
		return err
	}
	a.logger.Debug("Workloads resolved.", "count", len(workloads))

	for _, w := range workloads {
		if err := a.runWorkload(ctx, cfg, w, len(workloads) > 1); err != nil {
			return fmt.Errorf("workload %q: %w", w.Name, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// resolveWorkloads loads the scenario file if one was given, or builds a
// single ad-hoc workload from the CLI parameters.
func (a *App) resolveWorkloads(ctx context.Context, cfg *Config) ([]*scenario.Workload, error) {
	if cfg.ScenarioPath != "" {
		workloads, err := scenario.Load(ctx, cfg.ScenarioPath, cfg.Vars)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		return workloads, nil
	}

	return []*scenario.Workload{{
		Name:            "adhoc",
		Nodes:           cfg.Nodes,
		EdgeProbability: cfg.EdgeProbability,
		Seed:            cfg.Seed,
		TimeScaleMS:     cfg.TimeScaleMS,
	}}, nil
}

// runWorkload generates one DAG, optionally exports its schema, executes it,
// and emits the metrics record.
func (a *App) runWorkload(ctx context.Context, cfg *Config, w *scenario.Workload, multi bool) error {
	dag, err := generator.Generate(ctx, w.GeneratorConfig())
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	a.logger.Info("DAG generated.", "workload", w.Name,
		"nodes", dag.Graph.Len(), "edges", len(dag.Graph.Edges()), "source", dag.Source)

	if cfg.OutPath != "" {
		if err := a.exportSchema(dag, cfg, w.Name, multi); err != nil {
			return err
		}
	}

	strat, err := w.BuildStrategy()
	if err != nil {
		return err
	}

	exec := executor.New(dag, strat)
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	metrics, err := exec.Metrics()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.outW)
	return enc.Encode(workloadReport{Workload: w.Name, Metrics: metrics})
}

// exportSchema writes the generated graph's schema to the configured path.
// With several workloads the name is spliced in before the extension so the
// exports do not clobber each other.
func (a *App) exportSchema(dag *generator.DAG, cfg *Config, name string, multi bool) error {
	path := cfg.OutPath
	if multi {
		ext := filepath.Ext(path)
		path = strings.TrimSuffix(path, ext) + "-" + name + ext
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create schema file: %w", err)
	}
	defer f.Close()

	if cfg.FlatSchema {
		err = dag.Graph.Flatten(dag.Source).WriteJSON(f)
	} else {
		err = graph.WriteAdjacencyJSON(f, dag.Graph.Adjacency())
	}
	if err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	a.logger.Info("Schema exported.", "path", path, "flat", cfg.FlatSchema)
	return nil
}
