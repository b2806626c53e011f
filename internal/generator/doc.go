// Package generator builds random weighted DAGs with a guaranteed single
// entry point. A shuffled node ordering fixes a topological order, forward
// edges are added probabilistically, unreachable nodes are spliced into the
// main component, and a virtual source is inserted when several natural
// entry points remain.
package generator
