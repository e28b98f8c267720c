// internal/poller/poller.go
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"commit-watcher/internal/model"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 5 * time.Minute

// Fetcher is the slice of the commit feed client the poller depends on.
type Fetcher interface {
	GetCommits(ctx context.Context, page int) []model.Commit
}

// Observer receives the ordered batch of newly observed commits for one poll
// cycle. Observers are invoked synchronously within the loop iteration.
type Observer func(commits []model.Commit)

// Poller periodically fetches page 1 of the default branch and notifies
// observers of commits that were not present in the previous cycle.
//
// The loop is driven by a single goroutine; the identifier cache has exactly
// one writer. The mutex exists because Latest and Subscribe may be called
// from other goroutines while the loop is running.
type Poller struct {
	fetcher  Fetcher
	logger   *slog.Logger
	interval time.Duration

	mu        sync.RWMutex
	observers []Observer
	seen      map[int]struct{}
	latest    []model.Commit

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a Poller around the given fetcher. A non-positive interval
// falls back to DefaultInterval.
func New(fetcher Fetcher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		logger:   logger,
		interval: interval,
		seen:     map[int]struct{}{},
		stop:     make(chan struct{}),
	}
}

// Subscribe registers an observer for new-commit batches. Observers added
// mid-run take effect from the next poll cycle.
func (p *Poller) Subscribe(fn Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Start runs the polling loop until the context is cancelled or the poller is
// closed. The first cycle runs immediately; it populates the cache and never
// notifies. Subsequent cycles run once per interval, so no fetch ever happens
// before its scheduled time.
func (p *Poller) Start(ctx context.Context) {
	select {
	case <-p.stop:
		return
	case <-ctx.Done():
		return
	default:
	}

	p.logger.Info("Starting poller", "interval", p.interval.String())
	p.runCycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.runCycle(ctx)
		case <-p.stop:
			p.logger.Info("Poller closed, stopping loop")
			return
		case <-ctx.Done():
			p.logger.Info("Poller shutting down", "reason", ctx.Err())
			return
		}
	}
}

// Close signals the loop to stop and releases the fetcher's network client if
// it exposes one. Idempotent; it does not cancel an in-flight request.
func (p *Poller) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		if c, ok := p.fetcher.(interface{ Close() }); ok {
			c.Close()
		}
	})
}

// Latest returns a copy of the most recent cycle's fetched page.
func (p *Poller) Latest() []model.Commit {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Commit, len(p.latest))
	copy(out, p.latest)
	return out
}

// runCycle performs one fetch-diff-notify pass.
func (p *Poller) runCycle(ctx context.Context) {
	commits := p.fetcher.GetCommits(ctx, 1)

	p.mu.Lock()
	var fresh []model.Commit
	for _, c := range commits {
		if _, ok := p.seen[c.ID]; !ok {
			fresh = append(fresh, c)
		}
	}
	notify := len(p.seen) > 0 && len(fresh) > 0

	// The cache is replaced wholesale every cycle, even when the fetch
	// came back empty.
	seen := make(map[int]struct{}, len(commits))
	for _, c := range commits {
		seen[c.ID] = struct{}{}
	}
	p.seen = seen
	p.latest = commits

	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	if !notify {
		p.logger.Debug("Poll cycle finished", "fetched", len(commits), "new", len(fresh))
		return
	}

	p.logger.Info("Found new commits", "count", len(fresh))
	for _, fn := range observers {
		fn(fresh)
	}
}
