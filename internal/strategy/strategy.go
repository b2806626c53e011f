// Package strategy defines the pluggable unit of work executed per workflow
// node. The executor treats every implementation identically: only the
// calling goroutine blocks, never the scheduler.
package strategy

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Strategy executes the work for a single node. The budget is the
// non-negative sum of the node's incoming edge durations. Implementations
// must be safe for concurrent invocation across different nodes.
type Strategy interface {
	Execute(ctx context.Context, node string, inputs []string, budget int) (string, error)
}

// Func adapts an ordinary function to the Strategy interface.
type Func func(ctx context.Context, node string, inputs []string, budget int) (string, error)

// Execute implements Strategy.
func (f Func) Execute(ctx context.Context, node string, inputs []string, budget int) (string, error) {
	return f(ctx, node, inputs, budget)
}

// DefaultScale is the sleep time per budget unit, one tenth of a second per
// duration point.
const DefaultScale = 100 * time.Millisecond

// Delay is the reference strategy: it sleeps proportionally to the incoming
// duration budget and returns a deterministic result string. A zero Scale
// means DefaultScale.
type Delay struct {
	Scale time.Duration
}

// Execute sleeps Scale x budget, honouring context cancellation, then
// returns the formatted node result.
func (d Delay) Execute(ctx context.Context, node string, inputs []string, budget int) (string, error) {
	scale := d.Scale
	if scale == 0 {
		scale = DefaultScale
	}

	if wait := scale * time.Duration(budget); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return FormatResult(node, inputs), nil
}

// FormatResult renders a node's canonical result string: the joined inputs,
// or an init marker when the node has none (i.e. it is the source).
func FormatResult(node string, inputs []string) string {
	if len(inputs) == 0 {
		return fmt.Sprintf("%s_result(init_%s)", node, node)
	}
	return fmt.Sprintf("%s_result(%s)", node, strings.Join(inputs, " + "))
}
