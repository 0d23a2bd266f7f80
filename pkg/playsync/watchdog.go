package playsync

import (
	"context"
	"math"
)

// sanity bounds for the elapsed time since the last authoritative update; a
// tick outside them means a wildly wrong clock and is skipped
const (
	minWatchdogElapsedMillis = -5_000
	maxWatchdogElapsedMillis = 86_400_000
)

// RunWatchdog periodically corrects silent drift, such as buffering stalls,
// that produces no authoritative push. It runs until ctx is cancelled.
func (e *Engine) RunWatchdog(ctx context.Context) {
	ticker := e.clock.NewTicker(e.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			e.watchdogTick()
		}
	}
}

// watchdogTick re-checks drift against the latest known snapshot. It uses a
// larger threshold than the push path and re-asserts playback if the player
// silently stalled to paused.
func (e *Engine) watchdogTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.latest
	if state == nil || !state.IsPlaying {
		return
	}

	elapsed := e.authorityNow() - state.UpdatedAt
	if elapsed < minWatchdogElapsedMillis || elapsed > maxWatchdogElapsedMillis {
		return
	}

	target := state.CurrentTime
	if elapsed > 0 {
		target += float64(elapsed) / 1000
	}

	drift := math.Abs(e.player.Position() - target)
	if drift > e.cfg.WatchdogSeekThreshold {
		if e.logger != nil {
			e.logger.Debug("periodic sync", "drift", drift, "target", target)
		}
		e.markProgrammatic()
		e.player.SetPosition(target)
		e.syncingUntil = e.clock.Now().Add(e.cfg.SyncingWindow)
	}

	if e.player.Paused() {
		e.markProgrammatic()
		e.player.Play()
	}
}
