// Package executor runs a generated DAG concurrently, starting each node the
// moment its last predecessor completes, and reduces the recorded timings
// into parallelism metrics (wall time, sequential-equivalent time, speedup,
// Amdahl alpha).
//
// Scheduling is spawn-on-ready with unbounded fan-out: the completing node's
// goroutine decrements successor in-degrees under the executor's single lock
// and launches any successor that reaches zero. The lock serializes all
// decrements, so a node with several predecessors finishing close together
// is still started exactly once.
package executor
