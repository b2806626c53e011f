package executor

import (
	"math"
	"time"
)

// Metrics is the aggregate performance record of one run. Time fields are
// in seconds.
type Metrics struct {
	WallTime       float64 `json:"wall_time"`
	SequentialTime float64 `json:"sequential_time"`
	TimeSaved      float64 `json:"time_saved"`
	Speedup        float64 `json:"speedup"`
	Alpha          float64 `json:"alpha"`
	CriticalPath   float64 `json:"critical_path"`
	NodeCount      int     `json:"node_count"`
	MaxParallelism int     `json:"max_parallelism"`
}

// Metrics reduces the recorded timings into aggregate statistics. It fails
// with ErrNotRun until Run has completed.
func (e *Executor) Metrics() (*Metrics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.finished {
		return nil, ErrNotRun
	}

	var sequential time.Duration
	var longest time.Duration
	for _, d := range e.timings {
		sequential += d
		if d > longest {
			longest = d
		}
	}

	wall := e.wallEnd.Sub(e.wallStart)
	saved := sequential - wall

	speedup := math.Inf(1)
	if wall > 0 {
		speedup = sequential.Seconds() / wall.Seconds()
	}

	// Amdahl serial-fraction estimate, clamped to [0, 1]. With no measured
	// work the run is all-serial by definition.
	alpha := 1.0
	if sequential > 0 {
		alpha = math.Min(1, math.Max(0, 1-saved.Seconds()/sequential.Seconds()))
	}

	return &Metrics{
		WallTime:       wall.Seconds(),
		SequentialTime: sequential.Seconds(),
		TimeSaved:      saved.Seconds(),
		Speedup:        speedup,
		Alpha:          alpha,
		// The single slowest node, not the longest dependency chain. A
		// deliberate proxy kept for comparability with prior measurements.
		CriticalPath:   longest.Seconds(),
		NodeCount:      len(e.timings),
		MaxParallelism: e.maxParallelism,
	}, nil
}
