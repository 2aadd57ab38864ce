package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/infrastructure/metrics"
)

// Cache holds the live bridges, keyed by session ID. Bridges expire after a
// fixed idle window measured from last use, independent of the session's own
// lifetime: the session is durable conversation identity, the bridge is a
// capacity-bounded connection cache.
//
// Per-key entry locks serialize creation, so N concurrent requests for one
// session yield exactly one bridge.
type Cache struct {
	provider    ProviderClient
	transcripts transcript.Store
	idleTTL     time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry

	sweepInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup
	startOnce     sync.Once
	stopOnce      sync.Once
}

type cacheEntry struct {
	mu         sync.Mutex
	bridge     *Bridge
	lastActive time.Time
}

// NewCache creates a bridge cache.
func NewCache(provider ProviderClient, transcripts transcript.Store, idleTTL, sweepInterval time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		provider:      provider,
		transcripts:   transcripts,
		idleTTL:       idleTTL,
		sweepInterval: sweepInterval,
		log:           log.With().Str("component", "bridge-cache").Logger(),
		entries:       make(map[string]*cacheEntry),
		done:          make(chan struct{}),
	}
}

// Get returns the live bridge for a session, or absent when none exists or
// the idle window has elapsed. A hit refreshes the idle clock.
func (c *Cache) Get(sessionID string) (*Bridge, bool) {
	c.mu.Lock()
	entry, ok := c.entries[sessionID]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.bridge == nil {
		return nil, false
	}
	if c.expiredLocked(entry) {
		c.evict(sessionID, entry)
		return nil, false
	}

	entry.lastActive = time.Now()
	return entry.bridge, true
}

// GetOrCreate returns the session's live bridge, creating one when absent or
// expired. Creation is at-most-one-in-flight per session ID.
func (c *Cache) GetOrCreate(ctx context.Context, sessionID, clientID, voice string) (*Bridge, error) {
	for {
		c.mu.Lock()
		entry, ok := c.entries[sessionID]
		if !ok {
			entry = &cacheEntry{}
			c.entries[sessionID] = entry
		}
		c.mu.Unlock()

		entry.mu.Lock()

		if entry.bridge != nil {
			if !c.expiredLocked(entry) {
				entry.lastActive = time.Now()
				b := entry.bridge
				entry.mu.Unlock()
				return b, nil
			}
			entry.bridge.Close()
			entry.bridge = nil
			metrics.ActiveBridges.Dec()
		}

		// An eviction may have removed this entry's map slot while we
		// waited on its lock, and another caller may have installed a
		// fresh entry in its place. Creating against a stale entry would
		// yield two live bridges for one session, so confirm we still
		// own the slot (re-inserting if the slot is empty) and retry
		// against the current entry otherwise.
		c.mu.Lock()
		if current, ok := c.entries[sessionID]; ok && current != entry {
			c.mu.Unlock()
			entry.mu.Unlock()
			continue
		}
		c.entries[sessionID] = entry
		c.mu.Unlock()

		b := NewBridge(sessionID, clientID, voice, c.provider, c.transcripts, c.log)
		if err := b.Initialize(); err != nil {
			entry.mu.Unlock()
			return nil, ErrProviderInit
		}

		entry.bridge = b
		entry.lastActive = time.Now()
		metrics.ActiveBridges.Inc()
		entry.mu.Unlock()

		c.log.Info().
			Str("session_id", sessionID).
			Str("client_id", clientID).
			Str("voice", voice).
			Msg("bridge created")

		return b, nil
	}
}

// Delete tears down and removes a session's bridge. Returns false when no
// bridge existed.
func (c *Cache) Delete(sessionID string) bool {
	c.mu.Lock()
	entry, ok := c.entries[sessionID]
	c.mu.Unlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.bridge == nil {
		return false
	}
	c.evict(sessionID, entry)
	return true
}

// Start begins the idle sweep loop. Safe to call multiple times.
func (c *Cache) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.wg.Add(1)
		go c.run(ctx)
		c.log.Info().
			Dur("idle_ttl", c.idleTTL).
			Dur("interval", c.sweepInterval).
			Msg("bridge sweeper started")
	})
}

// Stop shuts down the sweep loop and closes all bridges. Safe to call
// multiple times.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.wg.Wait()

		c.mu.Lock()
		entries := c.entries
		c.entries = make(map[string]*cacheEntry)
		c.mu.Unlock()

		for _, entry := range entries {
			entry.mu.Lock()
			if entry.bridge != nil {
				entry.bridge.Close()
				entry.bridge = nil
				metrics.ActiveBridges.Dec()
			}
			entry.mu.Unlock()
		}
		c.log.Info().Msg("bridge cache stopped")
	})
}

func (c *Cache) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes every bridge past its idle window, bounding memory even
// absent reads.
func (c *Cache) sweep() {
	c.mu.Lock()
	snapshot := make(map[string]*cacheEntry, len(c.entries))
	for id, entry := range c.entries {
		snapshot[id] = entry
	}
	c.mu.Unlock()

	evicted := 0
	for id, entry := range snapshot {
		entry.mu.Lock()
		if entry.bridge != nil && c.expiredLocked(entry) {
			c.evict(id, entry)
			evicted++
		}
		entry.mu.Unlock()
	}

	if evicted > 0 {
		c.log.Info().Int("evicted", evicted).Msg("idle bridges evicted")
	}
}

// expiredLocked reports whether the entry's idle window has elapsed.
// Caller holds entry.mu.
func (c *Cache) expiredLocked(entry *cacheEntry) bool {
	return c.idleTTL > 0 && time.Since(entry.lastActive) > c.idleTTL
}

// evict closes the entry's bridge and removes the map slot.
// Caller holds entry.mu.
func (c *Cache) evict(sessionID string, entry *cacheEntry) {
	entry.bridge.Close()
	entry.bridge = nil
	metrics.ActiveBridges.Dec()
	metrics.BridgesEvicted.Inc()

	c.mu.Lock()
	if current, ok := c.entries[sessionID]; ok && current == entry {
		delete(c.entries, sessionID)
	}
	c.mu.Unlock()
}
