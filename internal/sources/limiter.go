// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limiter bounds one source's simultaneous in-flight requests and,
// optionally, the rate at which new requests start. Each source owns its
// own Limiter so a slow source cannot starve the others. A nil *Limiter
// imposes no limit.
type Limiter struct {
	sem   *semaphore.Weighted
	pace  *rate.Limiter
	limit int
}

// NewLimiter returns a Limiter allowing concurrency simultaneous requests
// (at least 1) started at no more than perSecond per second. perSecond
// <= 0 disables pacing.
func NewLimiter(concurrency int, perSecond float64) *Limiter {
	if concurrency < 1 {
		concurrency = 1
	}
	l := &Limiter{
		sem:   semaphore.NewWeighted(int64(concurrency)),
		limit: concurrency,
	}
	if perSecond > 0 {
		l.pace = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return l
}

// Cap returns the concurrency limit.
func (l *Limiter) Cap() int {
	if l == nil {
		return 0
	}
	return l.limit
}

// Acquire blocks until a slot is free and the pacing allows a new
// request, or ctx is done. On success the caller must call Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	if l.pace != nil {
		if err := l.pace.Wait(ctx); err != nil {
			l.sem.Release(1)
			return err
		}
	}
	return nil
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	if l == nil {
		return
	}
	l.sem.Release(1)
}
