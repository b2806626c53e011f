package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/vk/dagbench/internal/ctxlog"
	"github.com/vk/dagbench/internal/graph"
)

// VirtualSource is the reserved node ID inserted when the generated topology
// has more than one natural entry point.
const VirtualSource = "virtual"

// Edge durations are drawn uniformly from this closed range.
const (
	minDuration = 1
	maxDuration = 10
)

// ErrRepairFailed is returned when an unreachable node admits no acyclic
// splice during the connectivity repair pass. Generation fails loudly rather
// than emitting a graph that would stall execution.
var ErrRepairFailed = errors.New("connectivity repair failed")

// Config holds the generation parameters.
type Config struct {
	// Nodes is the number of natural nodes to generate. Must be >= 1.
	Nodes int
	// EdgeProbability is the independent probability of each forward edge.
	// Must be within [0, 1].
	EdgeProbability float64
	// Seed seeds the generator's private RNG. Zero means time-seeded.
	Seed int64
}

func (c Config) validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("invalid config: nodes must be >= 1, got %d", c.Nodes)
	}
	if c.EdgeProbability < 0 || c.EdgeProbability > 1 {
		return fmt.Errorf("invalid config: edge probability must be within [0, 1], got %g", c.EdgeProbability)
	}
	return nil
}

// DAG is a generated workflow graph together with its resolved single source.
// Both are immutable once Generate returns.
type DAG struct {
	Graph  *graph.Graph
	Source string
}

// Generate builds a random connected DAG satisfying the structural
// invariants: acyclic, no duplicate or self-referential edges, exactly one
// in-degree-zero node, and every node reachable from that node.
func Generate(ctx context.Context, cfg Config) (*DAG, error) {
	logger := ctxlog.FromContext(ctx)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	g, ordering := buildRandomDAG(rng, cfg)
	logger.Debug("Random DAG built.", "nodes", g.Len(), "edges", len(g.Edges()), "seed", seed)

	if err := repairConnectivity(ctx, g, ordering, rng); err != nil {
		return nil, err
	}

	source := resolveSource(ctx, g, rng)
	logger.Debug("Source resolved.", "source", source)

	// Re-verify the invariants the construction is supposed to guarantee.
	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("generated graph is not acyclic: %w", err)
	}
	if unreached := unreachableFrom(g, source); len(unreached) > 0 {
		return nil, fmt.Errorf("%w: nodes %v unreachable from source %s", ErrRepairFailed, unreached, source)
	}

	return &DAG{Graph: g, Source: source}, nil
}

// buildRandomDAG creates the nodes along a shuffled topological ordering and
// adds forward-only random edges, so the result is acyclic by construction.
func buildRandomDAG(rng *rand.Rand, cfg Config) (*graph.Graph, []string) {
	g := graph.New()

	perm := rng.Perm(cfg.Nodes)
	ordering := make([]string, cfg.Nodes)
	for i, v := range perm {
		ordering[i] = fmt.Sprintf("node_%d", v)
		g.AddNode(ordering[i])
	}

	for i := 0; i < cfg.Nodes; i++ {
		for j := i + 1; j < cfg.Nodes; j++ {
			if rng.Float64() < cfg.EdgeProbability {
				// Earlier-to-later in the ordering, so never a cycle.
				if err := g.AddEdge(ordering[i], ordering[j], randDuration(rng)); err != nil {
					panic(fmt.Sprintf("generator: forward edge rejected: %v", err))
				}
			}
		}
	}

	return g, ordering
}

// repairConnectivity splices every node not reachable from the first node in
// the ordering into the reachable component. For each orphan it tries an
// orphan->member edge first and the reverse on a cycle, stopping at the first
// acyclic success.
func repairConnectivity(ctx context.Context, g *graph.Graph, ordering []string, rng *rand.Rand) error {
	logger := ctxlog.FromContext(ctx)

	reachable := g.ReachableFrom(ordering[0])

	var orphans []string
	for _, id := range g.Nodes() {
		if !reachable[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return nil
	}
	logger.Debug("Repairing connectivity.", "orphans", len(orphans))

	for _, orphan := range orphans {
		if err := spliceNode(g, orphan, reachable, rng); err != nil {
			return fmt.Errorf("%w: node %s: %v", ErrRepairFailed, orphan, err)
		}
		reachable[orphan] = true
	}
	return nil
}

// spliceNode attaches a single orphan to some member of the reachable set
// without introducing a cycle.
func spliceNode(g *graph.Graph, orphan string, reachable map[string]bool, rng *rand.Rand) error {
	members := make([]string, 0, len(reachable))
	for id := range reachable {
		members = append(members, id)
	}
	sort.Strings(members)

	for _, member := range members {
		if tryEdge(g, orphan, member, rng) {
			return nil
		}
		if tryEdge(g, member, orphan, rng) {
			return nil
		}
	}
	return errors.New("no acyclic splice found")
}

// tryEdge adds the edge and keeps it only if the graph stays acyclic.
func tryEdge(g *graph.Graph, from, to string, rng *rand.Rand) bool {
	if err := g.AddEdge(from, to, randDuration(rng)); err != nil {
		return false
	}
	if g.DetectCycles() != nil {
		g.RemoveEdge(from, to)
		return false
	}
	return true
}

// resolveSource returns the unique in-degree-zero node, inserting the
// virtual source when the natural topology has several entry points.
func resolveSource(ctx context.Context, g *graph.Graph, rng *rand.Rand) string {
	var sources []string
	for _, id := range g.Nodes() {
		if g.InDegree(id) == 0 {
			sources = append(sources, id)
		}
	}

	if len(sources) == 1 {
		return sources[0]
	}

	ctxlog.FromContext(ctx).Debug("Multiple natural sources, inserting virtual source.", "sources", len(sources))
	g.AddNode(VirtualSource)
	for _, src := range sources {
		if err := g.AddEdge(VirtualSource, src, randDuration(rng)); err != nil {
			panic(fmt.Sprintf("generator: virtual source edge rejected: %v", err))
		}
	}
	return VirtualSource
}

func unreachableFrom(g *graph.Graph, source string) []string {
	reachable := g.ReachableFrom(source)
	var missing []string
	for _, id := range g.Nodes() {
		if !reachable[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func randDuration(rng *rand.Rand) int {
	return rng.Intn(maxDuration-minDuration+1) + minDuration
}
