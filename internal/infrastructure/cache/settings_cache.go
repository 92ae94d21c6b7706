// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tillbook/internal/domain/settings"
	"tillbook/pkg/logger"
)

// SettingsCache serves store settings from memory with automatic
// invalidation via PostgreSQL LISTEN/NOTIFY. This eliminates TTL-based
// polling and provides near-realtime updates after a settings write.
type SettingsCache struct {
	pool *pgxpool.Pool
	repo settings.Repository

	mu      sync.RWMutex
	current *settings.Settings

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewSettingsCache creates a new settings cache.
func NewSettingsCache(pool *pgxpool.Pool, repo settings.Repository) *SettingsCache {
	return &SettingsCache{
		pool: pool,
		repo: repo,
	}
}

// Get returns the cached settings, loading them on a cold cache.
func (c *SettingsCache) Get(ctx context.Context) (settings.Settings, error) {
	c.mu.RLock()
	if c.current != nil {
		s := *c.current
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	return c.reload(ctx)
}

// Invalidate drops the cached copy. The next Get reloads from the store.
func (c *SettingsCache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

func (c *SettingsCache) reload(ctx context.Context) (settings.Settings, error) {
	s, err := c.repo.Load(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	c.mu.Lock()
	c.current = &s
	c.mu.Unlock()

	return s, nil
}

// Start loads the initial settings and begins listening for NOTIFY events.
func (c *SettingsCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if _, err := c.reload(c.ctx); err != nil {
		c.Stop()
		return err
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "settings cache started")
	return nil
}

// Stop gracefully stops the cache listener.
func (c *SettingsCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "settings cache stopped")
}

// listenLoop listens for PostgreSQL NOTIFY events.
func (c *SettingsCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(c.ctx, "LISTEN settings_changed;")
		if err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(c.ctx, "listening for settings_changed notifications")

		c.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (c *SettingsCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return // Shutting down
			}
			// Timeout is expected, continue listening
			continue
		}

		logger.Debug(c.ctx, "received notification", "channel", notification.Channel)

		if _, err := c.reload(c.ctx); err != nil {
			logger.Error(c.ctx, "failed to reload settings", "error", err)
			c.Invalidate()
		}
	}
}

var _ settings.Provider = (*SettingsCache)(nil)
