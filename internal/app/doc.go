// Package app wires configuration, logging, generation, and execution into
// the dagbench application lifecycle.
package app
