// Package pipeline runs per-item stages: steps inside a stage run in
// parallel, stages run one after another.
package pipeline

import "context"

// Step mutates item in place. Steps sharing a stage run concurrently on the
// same item and must not write the same fields. A returned error is logged by
// the pipeline and does not stop later stages; steps that depend on an earlier
// result check the item themselves.
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that are safe to execute in parallel for a single item.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
