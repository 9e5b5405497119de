package scheduler

import "context"

// Exclusive lets at most one of the jobs it wraps run at a time. Cron starts
// every entry in its own goroutine, so jobs that share files or caches must
// be wrapped by the same Exclusive.
type Exclusive struct {
	sem chan struct{}
}

// NewExclusive creates an unlocked Exclusive
func NewExclusive() *Exclusive {
	return &Exclusive{sem: make(chan struct{}, 1)}
}

// Wrap guards job. A job still waiting for its turn when its context ends
// returns the context error without running.
func (e *Exclusive) Wrap(job Job) Job {
	return func(ctx context.Context) error {
		select {
		case e.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		defer func() { <-e.sem }()
		return job(ctx)
	}
}
