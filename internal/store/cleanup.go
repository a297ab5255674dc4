package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evicter is the slice of the store the cleanup loop needs.
type Evicter interface {
	EvictOlderThan(maxAge time.Duration) int
	Count() int
}

// CleanupService periodically evicts idle sessions.
type CleanupService struct {
	store    Evicter
	maxAge   time.Duration
	interval time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewCleanupService(store Evicter, maxAge, interval time.Duration, log *zap.Logger) *CleanupService {
	return &CleanupService{
		store:    store,
		maxAge:   maxAge,
		interval: interval,
		log:      log.Named("store.cleanup"),
	}
}

// Start launches the loop. It is a no-op when already running or when the
// interval or max age is not positive.
func (c *CleanupService) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running || c.interval <= 0 || c.maxAge <= 0 {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	go c.run(loopCtx, c.done)
}

// Stop cancels the loop and waits for it to exit.
func (c *CleanupService) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done
}

func (c *CleanupService) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// RunOnce performs a single eviction pass and returns the count removed.
func (c *CleanupService) RunOnce() int {
	start := time.Now()
	removed := c.store.EvictOlderThan(c.maxAge)
	if removed > 0 {
		c.log.Info("evicted idle sessions",
			zap.Int("removed", removed),
			zap.Int("remaining", c.store.Count()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return removed
}

func (c *CleanupService) run(ctx context.Context, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.log.Debug("cleanup loop stopping")
			return
		case <-ticker.C:
			c.RunOnce()
		}
	}
}
