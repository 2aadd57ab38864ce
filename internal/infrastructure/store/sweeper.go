package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Purger removes expired entries from a store.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// Sweeper periodically purges expired sessions so memory stays bounded even
// when nothing reads them.
type Sweeper struct {
	purger    Purger
	interval  time.Duration
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewSweeper creates a session sweeper.
func NewSweeper(purger Purger, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		purger:   purger,
		interval: interval,
		log:      log.With().Str("component", "session-sweeper").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background.
// Safe to call multiple times - only the first call starts the sweeper.
func (s *Sweeper) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
		s.log.Info().Dur("interval", s.interval).Msg("session sweeper started")
	})
}

// Stop gracefully shuts down the sweeper.
// Safe to call multiple times - only the first call stops the sweeper.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.log.Info().Msg("session sweeper stopped")
	})
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("context cancelled, shutting down sweeper")
			return
		case <-s.done:
			s.log.Debug().Msg("done signal received, shutting down sweeper")
			return
		case <-ticker.C:
			purged, err := s.purger.PurgeExpired(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("session purge failed")
				continue
			}
			if purged > 0 {
				s.log.Info().Int("purged", purged).Msg("expired sessions removed")
			}
		}
	}
}
