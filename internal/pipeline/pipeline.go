package pipeline

import (
	"context"
	"sync"

	"cuisinemap/internal/worker"

	"go.uber.org/zap"
)

type Pipeline[T any] struct {
	stages  []Stage[T]
	workers int
	log     *zap.Logger
}

// New builds a pipeline that processes up to workers items at once.
func New[T any](log *zap.Logger, workers int, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, workers: workers, log: log}
}

// Apply runs every stage for one item. Each stage is a barrier: all of its
// steps finish before the next stage starts.
func (p *Pipeline[T]) Apply(ctx context.Context, item *T) {
	for _, stage := range p.stages {
		var wg sync.WaitGroup
		for _, step := range stage.steps {
			wg.Add(1)
			go func(step Step[T]) {
				defer wg.Done()
				if err := step(ctx, item); err != nil {
					p.log.Warn("step failed", zap.String("stage", stage.name), zap.Error(err))
				}
			}(step)
		}
		wg.Wait()
	}
}

// Process applies the pipeline to every item received from in and returns
// once in is closed and all items are done. It stops taking new items when
// ctx is canceled.
func (p *Pipeline[T]) Process(ctx context.Context, in <-chan *T) error {
	pool := worker.New(ctx, p.workers)
	for item := range in {
		if ctx.Err() != nil {
			break
		}
		pool.Go(func(ctx context.Context) error {
			p.Apply(ctx, item)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
