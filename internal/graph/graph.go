package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Graph is a weighted directed graph keyed by string node IDs. Edge weights
// are positive integer durations. All operations are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
}

// node represents a single vertex. It is un-exported to enforce interaction
// with the graph via the public API (using string IDs), not by direct struct
// manipulation.
type node struct {
	// id is the unique identifier for the node.
	id string
	// preds holds incoming edges keyed by predecessor ID, valued by duration.
	preds map[string]int
	// succs holds outgoing edges keyed by successor ID, valued by duration.
	succs map[string]int
}

// Edge is the exported view of a single directed weighted edge.
type Edge struct {
	From     string
	To       string
	Duration int
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:    id,
		preds: make(map[string]int),
		succs: make(map[string]int),
	}
}

// AddEdge creates a directed edge from `fromID` to `toID` carrying the given
// duration. An error is returned if either node does not exist, if the edge
// would be a self-reference or a duplicate, or if the duration is not a
// positive integer.
func (g *Graph) AddEdge(fromID, toID string, duration int) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	if duration <= 0 {
		return fmt.Errorf("edge duration must be positive, got %d for %s -> %s", duration, fromID, toID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, ok := fromNode.succs[toID]; ok {
		return fmt.Errorf("duplicate edge: %s -> %s", fromID, toID)
	}

	fromNode.succs[toID] = duration
	toNode.preds[fromID] = duration

	return nil
}

// RemoveEdge deletes the directed edge from `fromID` to `toID` if present.
// Removing a non-existent edge is a no-op.
func (g *Graph) RemoveEdge(fromID, toID string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return
	}

	delete(fromNode.succs, toID)
	delete(toNode.preds, fromID)
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the directed edge fromID -> toID exists.
func (g *Graph) HasEdge(fromID, toID string) bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	_, ok = fromNode.succs[toID]
	return ok
}

// Duration returns the weight of the edge fromID -> toID and whether the
// edge exists.
func (g *Graph) Duration(fromID, toID string) (int, bool) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return 0, false
	}
	d, ok := fromNode.succs[toID]
	return d, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.nodes)
}

// Nodes returns all node IDs in lexicographic order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Edges returns every directed edge with its duration, ordered by source
// then target ID.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	var edges []Edge
	for id, n := range g.nodes {
		for succ, d := range n.succs {
			edges = append(edges, Edge{From: id, To: succ, Duration: d})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// InDegree returns the number of direct predecessors of the given node, or
// zero if the node does not exist.
func (g *Graph) InDegree(id string) int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.preds)
}

// OutDegree returns the number of direct successors of the given node, or
// zero if the node does not exist.
func (g *Graph) OutDegree(id string) int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(n.succs)
}

// Predecessors returns the IDs of nodes with an edge into the given node,
// in lexicographic order.
func (g *Graph) Predecessors(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	preds := make([]string, 0, len(n.preds))
	for predID := range n.preds {
		preds = append(preds, predID)
	}
	sort.Strings(preds)
	return preds
}

// Successors returns the IDs of nodes the given node has an edge into, in
// lexicographic order.
func (g *Graph) Successors(id string) []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	succs := make([]string, 0, len(n.succs))
	for succID := range n.succs {
		succs = append(succs, succID)
	}
	sort.Strings(succs)
	return succs
}

// ReachableFrom returns the set of node IDs reachable from the given node
// via directed edges, including the node itself. An unknown ID yields an
// empty set.
func (g *Graph) ReachableFrom(id string) map[string]bool {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	reachable := make(map[string]bool)
	start, ok := g.nodes[id]
	if !ok {
		return reachable
	}

	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[n.id] {
			continue
		}
		reachable[n.id] = true
		for succID := range n.succs {
			if !reachable[succID] {
				stack = append(stack, g.nodes[succID])
			}
		}
	}
	return reachable
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, indicating the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil // Already visited and known to be safe.
		}
		if temporary[n.id] {
			// We've hit a node that's already in our recursion stack, so we have a cycle.
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true

		for succID := range n.succs {
			if err := visit(g.nodes[succID]); err != nil {
				return err // Propagate the error up.
			}
		}

		// All successors have been visited, so we can move this node from temporary to permanent.
		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	// Visit every node in the graph.
	for _, n := range g.nodes {
		if !permanent[n.id] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}
