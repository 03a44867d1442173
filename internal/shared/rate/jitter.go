// Package rate paces periodic background work through a token channel fed by
// a leaky-bucket limiter, so sweeps spread evenly instead of bursting on
// ticker edges.
package rate

import (
	"context"

	"go.uber.org/ratelimit"
)

type Jitter struct {
	ch    chan struct{}
	l     ratelimit.Limiter
	limit int
}

// NewJitter emits at most limit tokens per second on Chan. The channel is
// closed when ctx ends.
func NewJitter(ctx context.Context, limit int) *Jitter {
	if limit < 1 {
		limit = 1
	}
	burst := limit / 10
	if burst < 1 {
		burst = 1
	}
	j := &Jitter{
		limit: limit,
		ch:    make(chan struct{}, burst),
		l:     ratelimit.New(limit),
	}
	go j.provider(ctx)
	return j
}

func (j *Jitter) provider(ctx context.Context) {
	defer close(j.ch)
	for {
		j.l.Take()
		select {
		case <-ctx.Done():
			return
		case j.ch <- struct{}{}:
		}
	}
}

func (j *Jitter) Chan() <-chan struct{} {
	return j.ch
}
