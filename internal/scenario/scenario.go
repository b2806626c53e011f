package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dagbench/internal/ctxlog"
	"github.com/vk/dagbench/internal/fsutil"
	"github.com/vk/dagbench/internal/generator"
	"github.com/vk/dagbench/internal/strategy"
)

// Workload is one `workload` block from a scenario file: a single
// generate-and-execute benchmark configuration.
type Workload struct {
	Name            string  `hcl:"name,label"`
	Nodes           int     `hcl:"nodes"`
	EdgeProbability float64 `hcl:"edge_probability"`
	Seed            int64   `hcl:"seed,optional"`
	Strategy        string  `hcl:"strategy,optional"`
	TimeScaleMS     int64   `hcl:"time_scale_ms,optional"`
}

// fileRoot is a struct used to decode all top-level blocks from a file.
type fileRoot struct {
	Workloads []*Workload `hcl:"workload,block"`
	Remain    hcl.Body    `hcl:",remain"`
}

// GeneratorConfig maps the workload to the generator's configuration.
// Validation of the numeric ranges is the generator's responsibility.
func (w *Workload) GeneratorConfig() generator.Config {
	return generator.Config{
		Nodes:           w.Nodes,
		EdgeProbability: w.EdgeProbability,
		Seed:            w.Seed,
	}
}

// BuildStrategy instantiates the execution strategy named by the workload.
// An empty name means the delay reference strategy.
func (w *Workload) BuildStrategy() (strategy.Strategy, error) {
	switch w.Strategy {
	case "", "delay":
		return strategy.Delay{Scale: time.Duration(w.TimeScaleMS) * time.Millisecond}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q in workload %q", w.Strategy, w.Name)
	}
}

// Load parses every workload block from the scenario path, which may be a
// single .hcl file or a directory of them. CLI variables are exposed to HCL
// expressions as `var.<name>` string values.
func Load(ctx context.Context, path string, vars map[string]string) ([]*Workload, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl scenario files found under %s", path)
	}
	logger.Debug("Discovered scenario files.", "count", len(files))

	evalCtx := evalContext(vars)
	parser := hclparse.NewParser()

	var workloads []*Workload
	seen := make(map[string]bool)
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse scenario file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode scenario file %s: %w", file, diags)
		}

		for _, w := range root.Workloads {
			if seen[w.Name] {
				return nil, fmt.Errorf("duplicate workload name %q in %s", w.Name, file)
			}
			seen[w.Name] = true
			if _, err := w.BuildStrategy(); err != nil {
				return nil, err
			}
			workloads = append(workloads, w)
		}
	}

	logger.Debug("Scenario loaded.", "workloads", len(workloads))
	return workloads, nil
}

// evalContext builds the HCL evaluation context carrying the `var` object.
func evalContext(vars map[string]string) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}

	varObj := cty.EmptyObjectVal
	if len(values) > 0 {
		varObj = cty.ObjectVal(values)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": varObj},
	}
}
