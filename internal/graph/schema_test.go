package graph

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDiamond(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b", 3))
	require.NoError(t, g.AddEdge("a", "c", 5))
	require.NoError(t, g.AddEdge("b", "d", 2))
	require.NoError(t, g.AddEdge("c", "d", 4))
	return g
}

func TestAdjacency(t *testing.T) {
	g := buildDiamond(t)

	adj := g.Adjacency()
	assert.Equal(t, map[string][]Hop{
		"a": {{Target: "b", Duration: 3}, {Target: "c", Duration: 5}},
		"b": {{Target: "d", Duration: 2}},
		"c": {{Target: "d", Duration: 4}},
	}, adj)

	// Sink nodes carry no adjacency entry, matching the sparse export format.
	_, ok := adj["d"]
	assert.False(t, ok)
}

// Reducing the adjacency view back to (from, to, duration) triples must
// reproduce the graph's edge set exactly.
func TestAdjacencyRoundTrip(t *testing.T) {
	g := buildDiamond(t)

	var got []Edge
	for from, hops := range g.Adjacency() {
		for _, hop := range hops {
			got = append(got, Edge{From: from, To: hop.Target, Duration: hop.Duration})
		}
	}
	assert.ElementsMatch(t, g.Edges(), got)
}

func TestFlatten(t *testing.T) {
	g := buildDiamond(t)

	flat := g.Flatten("a")
	assert.Equal(t, []string{"a", "b", "c", "d"}, flat.Nodes)
	assert.Equal(t, "a", flat.Source)
	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, flat.Edges)
	assert.Equal(t, map[string]int{
		"a->b": 3,
		"a->c": 5,
		"b->d": 2,
		"c->d": 4,
	}, flat.Durations)
}

func TestWriteJSON(t *testing.T) {
	g := buildDiamond(t)

	var buf bytes.Buffer
	require.NoError(t, g.Flatten("a").WriteJSON(&buf))

	var decoded FlatSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *g.Flatten("a"), decoded)

	buf.Reset()
	require.NoError(t, WriteAdjacencyJSON(&buf, g.Adjacency()))

	var adj map[string][]Hop
	require.NoError(t, json.Unmarshal(buf.Bytes(), &adj))
	assert.Equal(t, g.Adjacency(), adj)
}
