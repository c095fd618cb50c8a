package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localpulse/pulse/app/database"
)

// Cache holds the current taxonomy snapshot and refreshes it in the
// background. A failed refresh logs and keeps the previous snapshot, so
// readers never observe a partial or invalid taxonomy.
type Cache struct {
	repo    database.TaxonomyRepository
	ttl     time.Duration
	mu      sync.RWMutex
	current *Snapshot
	version int64
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewCache(repo database.TaxonomyRepository, ttl time.Duration) *Cache {
	return &Cache{
		repo:   repo,
		ttl:    ttl,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Run performs the initial load and starts the background refresh loop.
// The initial load must succeed; later refresh failures only log.
func (c *Cache) Run(ctx context.Context) error {
	if err := c.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load taxonomy: %w", err)
	}

	go c.refreshLoop()

	return nil
}

func (c *Cache) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// Current returns the active snapshot. Callers hold it for a whole
// article run so one article is scored against one taxonomy version.
func (c *Cache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Reload rebuilds the snapshot from the database and swaps it in.
func (c *Cache) Reload(ctx context.Context) error {
	c.mu.RLock()
	nextVersion := c.version + 1
	c.mu.RUnlock()

	snapshot, err := buildSnapshot(ctx, c.repo, nextVersion)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.current = snapshot
	c.version = nextVersion
	c.mu.Unlock()

	slog.Debug("Taxonomy snapshot loaded",
		"version", snapshot.Version,
		"type_patterns", len(snapshot.TypePatterns),
		"sports", len(snapshot.Sports),
		"hype_indicators", len(snapshot.Hypes))

	return nil
}

func (c *Cache) refreshLoop() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := c.Reload(ctx); err != nil {
				slog.Error("Taxonomy refresh failed, keeping previous snapshot", "error", err)
			}
			cancel()
		case <-c.stopCh:
			return
		}
	}
}
