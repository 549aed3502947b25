package reaper

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"partycards/internal/rooms"
)

const (
	DefaultInterval    = 60 * time.Second
	DefaultIdleTimeout = 60 * time.Minute

	minInterval    = 10 * time.Second
	minIdleTimeout = time.Minute

	InactivityReason = "Room closed due to inactivity."
)

// Notifier tells a room's members what the reaper is doing. Calls happen
// outside every lock. Evict receives the connections seated in the removed
// room, so a newer room under the same id is left alone.
type Notifier interface {
	Evict(roomID string, connIDs []string, reason string)
	IdleWarning(roomID string, secondsRemaining int)
}

// Policy is the idle policy after clamping.
type Policy struct {
	Interval    time.Duration
	IdleTimeout time.Duration
	WarnAfter   time.Duration
}

// NewPolicy clamps the configured values: interval at least 10s, timeout at
// least a minute, warning within [1m, timeout-1m]. A zero warning means a
// minute before the timeout.
func NewPolicy(interval, idleTimeout, warnAfter time.Duration) Policy {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	interval = max(interval, minInterval)
	idleTimeout = max(idleTimeout, minIdleTimeout)
	if warnAfter <= 0 {
		warnAfter = idleTimeout - time.Minute
	}
	warnAfter = min(max(warnAfter, time.Minute), max(time.Minute, idleTimeout-time.Minute))
	return Policy{Interval: interval, IdleTimeout: idleTimeout, WarnAfter: warnAfter}
}

type SweepResult struct {
	Warned  int
	Deleted int
}

type Reaper struct {
	store    *rooms.Store
	notifier Notifier
	policy   Policy

	// OnSweep, when set, receives every sweep's result.
	OnSweep func(SweepResult)
}

func New(store *rooms.Store, notifier Notifier, policy Policy) *Reaper {
	return &Reaper{store: store, notifier: notifier, policy: policy}
}

func (r *Reaper) Policy() Policy {
	return r.policy
}

// Run sweeps on every tick until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.policy.Interval)
	defer ticker.Stop()

	log.Info().
		Dur("interval", r.policy.Interval).
		Dur("idle_timeout", r.policy.IdleTimeout).
		Dur("warn_after", r.policy.WarnAfter).
		Msg("idle reaper started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := r.Sweep(ctx)
			if r.OnSweep != nil {
				r.OnSweep(res)
			}
		}
	}
}

// Sweep checks every room once. It works from a snapshot of the room list
// and never holds the repository lock while notifying. Expiry acts on the
// room that was found idle, never on whatever is registered under its id.
func (r *Reaper) Sweep(ctx context.Context) SweepResult {
	var res SweepResult

	for _, room := range r.store.List() {
		if ctx.Err() != nil {
			break
		}

		check := r.store.CheckIdle(room, r.policy.IdleTimeout, r.policy.WarnAfter)
		switch check.Verdict {
		case rooms.IdleExpired:
			res.Deleted++
			r.notifier.Evict(room.ID, check.Members, InactivityReason)
			log.Info().Str("room_id", room.ID).Int("members", len(check.Members)).Msg("room removed due to inactivity")
		case rooms.IdleWarn:
			secs := int(math.Ceil(check.Remaining.Seconds()))
			r.notifier.IdleWarning(room.ID, secs)
			res.Warned++
			log.Info().Str("room_id", room.ID).Int("seconds_remaining", secs).Msg("room idle warning sent")
		}
	}
	return res
}
