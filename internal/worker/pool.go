// Package worker bounds how many jobs run at once.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs jobs with at most limit in flight. A job error cancels the pool
// context and is returned by Wait.
type Pool struct {
	g   *errgroup.Group
	ctx context.Context
}

// New returns a pool and the context its jobs observe. Limits below one are
// treated as one.
func New(ctx context.Context, limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	return &Pool{g: g, ctx: gctx}
}

// Go blocks until a slot is free, then runs job.
func (p *Pool) Go(job func(ctx context.Context) error) {
	p.g.Go(func() error { return job(p.ctx) })
}

func (p *Pool) Wait() error {
	return p.g.Wait()
}
