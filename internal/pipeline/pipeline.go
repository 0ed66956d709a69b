// Package pipeline provides a generic ordered-step runner with
// short-circuit-on-failure semantics. Steps execute strictly in order; the
// first failure halts the run and becomes the overall result. There is no
// rollback: a step that already performed an external action is not undone
// when a later step fails, so callers must order irreversible actions last.
package pipeline

import "context"

// Step is one named, fallible transformation over a shared context value.
// A successful step returns the next context, which may extend or overwrite
// fields of the previous one. Failure messages must be self-describing; the
// runner does not annotate which step failed.
type Step[C any] struct {
	Name string
	Run  func(ctx context.Context, c C) (C, error)
}

// Run executes steps strictly in order over the initial context. On the first
// failure it stops immediately and returns that step's error; no subsequent
// steps run. On success it returns the final context.
func Run[C any](ctx context.Context, initial C, steps ...Step[C]) (C, error) {
	current := initial
	for _, step := range steps {
		next, err := step.Run(ctx, current)
		if err != nil {
			var zero C
			return zero, err
		}
		current = next
	}
	return current, nil
}
