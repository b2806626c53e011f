package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ScenarioPath points at a .hcl file or directory of workload blocks.
	// Empty means a single ad-hoc workload built from the fields below.
	ScenarioPath string

	// Ad-hoc workload parameters, used only when ScenarioPath is empty.
	Nodes           int
	EdgeProbability float64
	Seed            int64
	TimeScaleMS     int64

	// OutPath, when set, receives the generated graph schema as JSON.
	// FlatSchema selects the flattened export over the adjacency list.
	OutPath    string
	FlatSchema bool

	// Vars are -var CLI values exposed to HCL expressions as var.<name>.
	Vars map[string]string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cross-field constraints and returns the config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlatSchema && cfg.OutPath == "" {
		return nil, errors.New("flat schema export requires an output path")
	}
	return &cfg, nil
}
