package analytics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status is what the dashboard polls.
type Status struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Refreshing  bool      `json:"refreshing"`
}

// Refresher stamps a last-updated time after a fixed delay. Concurrent callers
// (manual button and scheduled job) share a single in-flight refresh.
type Refresher struct {
	Delay time.Duration
	Now   func() time.Time
	// Observe, if set, receives every completed refresh and its source.
	Observe func(source string, took time.Duration)

	group singleflight.Group

	mu          sync.RWMutex
	lastUpdated time.Time
	refreshing  bool
}

func NewRefresher(delay time.Duration) *Refresher {
	r := &Refresher{Delay: delay, Now: time.Now}
	r.lastUpdated = r.now()
	return r
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Refresh blocks until the shared refresh finishes or ctx is done. shared
// reports whether the caller joined a refresh started by someone else.
func (r *Refresher) Refresh(ctx context.Context, source string) (status Status, shared bool, err error) {
	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.run(source)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Status{}, res.Shared, res.Err
		}
		return res.Val.(Status), res.Shared, nil
	case <-ctx.Done():
		return r.Status(), false, ctx.Err()
	}
}

func (r *Refresher) run(source string) (Status, error) {
	r.mu.Lock()
	r.refreshing = true
	r.mu.Unlock()

	start := r.now()
	if r.Delay > 0 {
		time.Sleep(r.Delay)
	}

	r.mu.Lock()
	r.lastUpdated = r.now()
	r.refreshing = false
	st := Status{LastUpdated: r.lastUpdated}
	r.mu.Unlock()

	if r.Observe != nil {
		r.Observe(source, r.now().Sub(start))
	}
	return st, nil
}

func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Status{LastUpdated: r.lastUpdated, Refreshing: r.refreshing}
}
