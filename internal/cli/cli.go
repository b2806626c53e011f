package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/dagbench/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlags collects repeatable -var name=value assignments.
type varFlags map[string]string

func (v varFlags) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, k+"="+val)
	}
	return strings.Join(pairs, ",")
}

func (v varFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", raw)
	}
	v[name] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("dagbench", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
dagbench - generates random weighted DAGs and measures how much concurrency
their dependency structure admits.

Usage:
  dagbench [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Path to a single .hcl scenario file or a directory containing .hcl files.
    When omitted, a single workload is built from the -nodes/-p/-seed flags.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", "", "Path to the scenario file or directory.")
	sFlag := flagSet.String("s", "", "Path to the scenario file or directory (shorthand).")
	nodesFlag := flagSet.Int("nodes", 15, "Number of nodes for an ad-hoc workload.")
	probFlag := flagSet.Float64("p", 0.3, "Edge probability for an ad-hoc workload, within [0,1].")
	seedFlag := flagSet.Int64("seed", 0, "RNG seed for an ad-hoc workload. 0 means time-seeded.")
	timeScaleFlag := flagSet.Int64("time-scale-ms", 100, "Delay-strategy milliseconds per duration unit.")
	outFlag := flagSet.String("out", "", "Write the generated graph schema to this JSON file.")
	flatFlag := flagSet.Bool("flat", false, "Export the flattened schema instead of the adjacency list.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	vars := make(varFlags)
	flagSet.Var(vars, "var", "Scenario variable as name=value. May be repeated.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *scenarioFlag != "" {
		path = *scenarioFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ScenarioPath:    path,
		Nodes:           *nodesFlag,
		EdgeProbability: *probFlag,
		Seed:            *seedFlag,
		TimeScaleMS:     *timeScaleFlag,
		OutPath:         *outFlag,
		FlatSchema:      *flatFlag,
		Vars:            vars,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
