package playsync

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Engine reconciles a local MediaPlayer against the room's authoritative
// timeline. Two independent suppressors keep the feedback loop open in both
// directions: localActionInFlight makes the writer ignore the echo of its
// own mutation, programmaticUntil makes corrective player calls invisible to
// the outbound path. Collapsing them into one flag causes either missed
// corrections or broadcast storms.
type Engine struct {
	roomId    string
	player    MediaPlayer
	authority Authority
	clock     clockwork.Clock
	logger    *slog.Logger
	cfg       Config

	mu                  sync.Mutex
	offsetMillis        int64
	localActionInFlight bool
	programmaticUntil   time.Time
	syncingUntil        time.Time
	lastProcessedAt     int64
	latest              *State
}

func NewEngine(roomId string, player MediaPlayer, authority Authority, clock clockwork.Clock, logger *slog.Logger, cfg *Config) *Engine {
	return &Engine{
		roomId:    roomId,
		player:    player,
		authority: authority,
		clock:     clock,
		logger:    logger,
		cfg:       cfg.withDefaults(),
	}
}

// Resync fetches the current snapshot and applies it, used once after
// connecting before pushes start arriving.
func (e *Engine) Resync(ctx context.Context) error {
	state, err := e.authority.GetSyncState(ctx, e.roomId)
	if err != nil {
		return fmt.Errorf("failed to get sync state: %w", err)
	}

	e.ApplyState(state)

	return nil
}

// HandleLocalPlay reports a play event from the local player. Events caused
// by the engine's own corrections are discarded.
func (e *Engine) HandleLocalPlay(ctx context.Context) error {
	return e.handleLocal(ctx, e.authority.Play)
}

func (e *Engine) HandleLocalPause(ctx context.Context) error {
	return e.handleLocal(ctx, e.authority.Pause)
}

func (e *Engine) HandleLocalSeeked(ctx context.Context) error {
	return e.handleLocal(ctx, e.authority.Seek)
}

func (e *Engine) handleLocal(ctx context.Context, mutate func(ctx context.Context, roomId string, currentTime float64) error) error {
	e.mu.Lock()

	if e.programmaticActive() {
		e.mu.Unlock()
		return nil
	}

	if e.cfg.CanControl != nil && !e.cfg.CanControl() {
		// residual listener on a client without control rights
		e.mu.Unlock()
		return nil
	}

	e.localActionInFlight = true
	position := e.player.Position()
	e.mu.Unlock()

	if err := mutate(ctx, e.roomId, position); err != nil {
		// clear immediately so the next push is not misread as our echo
		e.mu.Lock()
		e.localActionInFlight = false
		e.mu.Unlock()

		return fmt.Errorf("failed to report local action: %w", err)
	}

	return nil
}

// ApplyState processes one authoritative snapshot. Snapshots whose UpdatedAt
// is not strictly newer than the last processed one are ignored, which makes
// duplicate or reordered delivery harmless.
func (e *Engine) ApplyState(state *State) {
	if state == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if state.UpdatedAt <= e.lastProcessedAt {
		return
	}
	e.latest = state

	if e.localActionInFlight {
		// echo of our own mutation, reprocessing it would fight the player
		e.localActionInFlight = false
		e.lastProcessedAt = state.UpdatedAt
		return
	}

	target := e.targetPosition(state)
	drift := math.Abs(e.player.Position() - target)

	if e.logger != nil {
		e.logger.Debug("sync update",
			"is_playing", state.IsPlaying,
			"target", target,
			"drift", drift,
		)
	}

	if math.Abs(e.player.PlaybackRate()-state.PlaybackRate) > e.cfg.RateTolerance {
		e.player.SetPlaybackRate(state.PlaybackRate)
	}

	if state.IsPlaying && e.player.Paused() {
		e.markProgrammatic()
		e.player.Play()
	} else if !state.IsPlaying && !e.player.Paused() {
		e.markProgrammatic()
		e.player.Pause()
	}

	if drift > e.cfg.SeekThreshold {
		e.markProgrammatic()
		e.player.SetPosition(target)
		e.syncingUntil = e.clock.Now().Add(e.cfg.SyncingWindow)
	}

	e.lastProcessedAt = state.UpdatedAt
}

// Syncing reports whether a corrective seek happened recently, for a
// transient indicator in the UI.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.clock.Now().Before(e.syncingUntil)
}

// LastProcessedAt returns the authority timestamp of the newest snapshot the
// engine has consumed.
func (e *Engine) LastProcessedAt() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastProcessedAt
}

// targetPosition computes the true current position of the given snapshot.
// Callers must hold e.mu.
func (e *Engine) targetPosition(state *State) float64 {
	target := state.CurrentTime
	if state.IsPlaying {
		elapsed := e.authorityNow() - state.UpdatedAt
		if elapsed > 0 {
			target += float64(elapsed) / 1000
		}
	}

	return target
}

func (e *Engine) authorityNow() int64 {
	return e.clock.Now().UnixMilli() + e.offsetMillis
}

func (e *Engine) markProgrammatic() {
	e.programmaticUntil = e.clock.Now().Add(e.cfg.ProgrammaticWindow)
}

func (e *Engine) programmaticActive() bool {
	return e.clock.Now().Before(e.programmaticUntil)
}
