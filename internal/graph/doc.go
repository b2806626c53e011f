// Package graph implements the weighted directed graph underlying workflow
// generation and execution. It guarantees structural hygiene (no self-loops,
// no duplicate edges) and offers cycle detection and reachability queries so
// callers can maintain the acyclicity invariant while mutating the edge set.
package graph
