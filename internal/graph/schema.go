package graph

import (
	"encoding/json"
	"fmt"
	"io"
)

// Hop is one entry of the adjacency-list schema: a successor node and the
// duration of the edge leading to it.
type Hop struct {
	Target   string `json:"target"`
	Duration int    `json:"duration"`
}

// FlatSchema is the flattened graph view consumed by external visualization
// tooling. Duration keys use the "from->to" form so the whole structure is
// JSON-serializable as-is.
type FlatSchema struct {
	Nodes     []string       `json:"nodes"`
	Edges     [][2]string    `json:"edges"`
	Durations map[string]int `json:"durations"`
	Source    string         `json:"source"`
}

// EdgeKey renders the flattened-schema key for a directed edge.
func EdgeKey(fromID, toID string) string {
	return fmt.Sprintf("%s->%s", fromID, toID)
}

// Adjacency returns a read-only snapshot of the graph as an adjacency list:
// each node with at least one outgoing edge maps to its successors and the
// corresponding durations, ordered by target ID.
func (g *Graph) Adjacency() map[string][]Hop {
	adj := make(map[string][]Hop)
	for _, e := range g.Edges() {
		adj[e.From] = append(adj[e.From], Hop{Target: e.To, Duration: e.Duration})
	}
	return adj
}

// Flatten returns the flattened schema snapshot of the graph with the given
// node recorded as the entry point.
func (g *Graph) Flatten(source string) *FlatSchema {
	edges := g.Edges()
	schema := &FlatSchema{
		Nodes:     g.Nodes(),
		Edges:     make([][2]string, 0, len(edges)),
		Durations: make(map[string]int, len(edges)),
		Source:    source,
	}
	for _, e := range edges {
		schema.Edges = append(schema.Edges, [2]string{e.From, e.To})
		schema.Durations[EdgeKey(e.From, e.To)] = e.Duration
	}
	return schema
}

// WriteJSON serializes the flattened schema as indented JSON.
func (s *FlatSchema) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteAdjacencyJSON serializes an adjacency snapshot as indented JSON.
func WriteAdjacencyJSON(w io.Writer, adj map[string][]Hop) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(adj)
}
