package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IdleReaper finishes matches that have seen no moves for longer than the
// idle limit, so abandoned engines do not pile up in memory.
type IdleReaper struct {
	svc      *MatchService
	idle     time.Duration
	interval time.Duration
}

// NewIdleReaper creates an IdleReaper that polls every interval.
func NewIdleReaper(svc *MatchService, idle, interval time.Duration) *IdleReaper {
	return &IdleReaper{svc: svc, idle: idle, interval: interval}
}

// Start polls until ctx is cancelled.
func (r *IdleReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Info().Dur("idle", r.idle).Dur("interval", r.interval).Msg("Idle match reaper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Idle match reaper stopped")
			return
		case now := <-ticker.C:
			if n := r.Sweep(ctx, now); n > 0 {
				log.Info().Int("count", n).Msg("Finished idle matches")
			}
		}
	}
}

// Sweep finishes every match idle since before now minus the idle limit and
// returns how many were finished.
func (r *IdleReaper) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-r.idle)

	r.svc.mu.Lock()
	candidates := make([]*session, 0, len(r.svc.sessions))
	for _, sess := range r.svc.sessions {
		candidates = append(candidates, sess)
	}
	r.svc.mu.Unlock()

	finished := 0
	for _, sess := range candidates {
		sess.mu.Lock()
		if !sess.done && sess.lastActive.Before(cutoff) {
			if m, err := r.svc.finishLocked(ctx, sess); err != nil {
				log.Error().Err(err).Str("matchId", sess.match.ID).Msg("Failed to finish idle match")
			} else {
				r.svc.broadcaster.BroadcastPlayerEvent(m.PlayerID, m.ID, EventMatchExpired, m)
				finished++
			}
		}
		sess.mu.Unlock()
	}
	return finished
}
