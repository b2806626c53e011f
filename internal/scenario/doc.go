// Package scenario loads benchmark workload definitions from HCL files.
// Each `workload` block names a DAG shape (node count, edge probability,
// seed) and the execution strategy to drive it with.
package scenario
