package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/dagbench/internal/ctxlog"
	"github.com/vk/dagbench/internal/generator"
	"github.com/vk/dagbench/internal/strategy"
)

var (
	// ErrAlreadyRun is returned when Run is invoked twice on one instance.
	// Scheduler state is write-once within a run, so instances are single-use.
	ErrAlreadyRun = errors.New("executor instance has already run")

	// ErrUnreachable is returned by the pre-flight check when some node can
	// never start, which would otherwise stall the run forever.
	ErrUnreachable = errors.New("node unreachable from source")

	// ErrNotRun is returned when results are requested before a completed run.
	ErrNotRun = errors.New("run has not completed")
)

// Executor drives one concurrent execution of a DAG. Every node that becomes
// ready is started immediately in its own goroutine; there is no parallelism
// cap. The instrument measures maximum achievable concurrency, not
// resource-constrained scheduling.
type Executor struct {
	dag   *generator.DAG
	strat strategy.Strategy
	runID string

	// mu guards all scheduler state below. Strategy calls happen outside the
	// lock so slow node work never blocks bookkeeping for other nodes.
	mu             sync.Mutex
	inDegree       map[string]int
	childInputs    map[string][]string
	results        map[string]string
	timings        map[string]time.Duration
	activeTasks    int
	maxParallelism int
	started        bool
	finished       bool

	wg        sync.WaitGroup
	wallStart time.Time
	wallEnd   time.Time
}

// New creates a single-use executor over the given DAG and strategy.
func New(dag *generator.DAG, strat strategy.Strategy) *Executor {
	e := &Executor{
		dag:         dag,
		strat:       strat,
		runID:       uuid.NewString(),
		inDegree:    make(map[string]int),
		childInputs: make(map[string][]string),
		results:     make(map[string]string),
		timings:     make(map[string]time.Duration),
	}
	for _, id := range dag.Graph.Nodes() {
		e.inDegree[id] = dag.Graph.InDegree(id)
	}
	return e
}

// preflight rejects graphs the run could never complete: a missing or
// non-root source, or nodes unreachable from it.
func (e *Executor) preflight() error {
	if !e.dag.Graph.HasNode(e.dag.Source) {
		return fmt.Errorf("source node not found: %s", e.dag.Source)
	}
	if d := e.dag.Graph.InDegree(e.dag.Source); d != 0 {
		return fmt.Errorf("source %s has in-degree %d, want 0", e.dag.Source, d)
	}
	reachable := e.dag.Graph.ReachableFrom(e.dag.Source)
	for _, id := range e.dag.Graph.Nodes() {
		if !reachable[id] {
			return fmt.Errorf("%w: %s", ErrUnreachable, id)
		}
	}
	return nil
}

// Run executes the whole graph and blocks until every node has finished or
// the context is canceled. A second call returns ErrAlreadyRun.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("run_id", e.runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyRun
	}
	e.started = true
	e.mu.Unlock()

	if err := e.preflight(); err != nil {
		return err
	}

	nodeCount := e.dag.Graph.Len()
	logger.Info("🚀 Starting concurrent execution.", "nodes", nodeCount, "source", e.dag.Source)

	e.wg.Add(nodeCount)
	e.wallStart = time.Now()
	go e.runNode(ctx, e.dag.Source)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// In-flight strategies observe the same ctx and drain on their own.
		return ctx.Err()
	}

	e.mu.Lock()
	e.wallEnd = time.Now()
	e.finished = true
	e.mu.Unlock()

	logger.Info("🏁 Execution finished.", "wall_time", e.wallEnd.Sub(e.wallStart))
	return nil
}

// runNode executes one node and releases its successors. It is always
// launched on its own goroutine, exactly once per node: in-degree decrements
// are serialized under mu, so only one predecessor ever observes zero.
func (e *Executor) runNode(ctx context.Context, node string) {
	defer e.wg.Done()
	logger := ctxlog.FromContext(ctx)

	e.mu.Lock()
	e.activeTasks++
	if e.activeTasks > e.maxParallelism {
		e.maxParallelism = e.activeTasks
	}
	e.mu.Unlock()

	logger.Debug("Node started.", "node", node)
	start := time.Now()

	// The budget is the static design weight: the sum of all incoming edge
	// durations, independent of when those predecessors actually finished.
	budget := 0
	for _, pred := range e.dag.Graph.Predecessors(node) {
		d, _ := e.dag.Graph.Duration(pred, node)
		budget += d
	}

	// Inputs are deliberately not threaded through; accumulated predecessor
	// results live in childInputs for observability only. See DESIGN.md.
	result, err := e.strat.Execute(ctx, node, nil, budget)
	if err != nil {
		// One failing node must not deadlock the graph: record the error as
		// the node's result and release successors as usual.
		logger.Error("Strategy failed for node.", "node", node, "error", err)
		result = fmt.Sprintf("ERROR: %v", err)
	}
	elapsed := time.Since(start)
	logger.Debug("Node finished.", "node", node, "elapsed", elapsed)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.results[node] = result
	e.timings[node] = elapsed
	e.activeTasks--

	for _, succ := range e.dag.Graph.Successors(node) {
		e.inDegree[succ]--
		e.childInputs[succ] = append(e.childInputs[succ], result)
		if e.inDegree[succ] == 0 {
			logger.Debug("Releasing successor.", "node", succ)
			go e.runNode(ctx, succ)
		}
	}
}

// Results returns a copy of the per-node result strings.
func (e *Executor) Results() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]string, len(e.results))
	for k, v := range e.results {
		out[k] = v
	}
	return out
}

// Timings returns a copy of the per-node elapsed durations.
func (e *Executor) Timings() map[string]time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string]time.Duration, len(e.timings))
	for k, v := range e.timings {
		out[k] = v
	}
	return out
}

// Inputs returns a copy of the accumulated predecessor results per node.
// Entry order within a node's slice reflects predecessor completion order
// and is not deterministic.
func (e *Executor) Inputs() map[string][]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(map[string][]string, len(e.childInputs))
	for k, v := range e.childInputs {
		out[k] = append([]string(nil), v...)
	}
	return out
}
