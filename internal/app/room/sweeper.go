/*
Package room holds the in-memory room registry and the room data model.

This file defines the Sweeper, an optional background loop that bounds the
store's memory. The read path already evicts expired rooms lazily; the
sweeper additionally removes rooms that nobody revisits.
*/
package room

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fadechat/internal/pkg/logx"
)

// Sweeper periodically evicts expired rooms from a Store.
type Sweeper struct {
	store    *Store
	interval time.Duration

	// onExpire, when set, is called once per evicted room ID. The relay
	// uses it to push room_expired to any lingering connections.
	onExpire func(roomID string)

	logger zerolog.Logger
}

// NewSweeper builds a sweeper over store firing every interval.
func NewSweeper(store *Store, interval time.Duration, onExpire func(roomID string)) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		onExpire: onExpire,
		logger:   logx.Logger().With().Str("component", "Sweeper").Logger(),
	}
}

// Run blocks sweeping on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Sweeper started.")

	for {
		select {
		case <-ticker.C:
			s.SweepOnce()
		case <-ctx.Done():
			s.logger.Info().Msg("Sweeper stopped.")
			return
		}
	}
}

// SweepOnce evicts expired rooms immediately and reports how many went.
func (s *Sweeper) SweepOnce() int {
	evicted := s.store.SweepExpired()

	if s.onExpire != nil {
		for _, roomID := range evicted {
			s.onExpire(roomID)
		}
	}

	return len(evicted)
}
