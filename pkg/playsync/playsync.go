// Package playsync keeps a local media player in lock-step with a room's
// authoritative playback timeline. It estimates the offset between the local
// wall clock and the authority's clock, reconciles every pushed state change
// against the local player and periodically corrects silent drift.
package playsync

import (
	"context"
	"time"
)

// State is the authoritative playback snapshot of a room. CurrentTime is the
// reference position in seconds as of UpdatedAt (authority clock, ms); the
// true position while playing is CurrentTime plus the elapsed authority time.
type State struct {
	RoomId        string  `json:"room_id"`
	IsPlaying     bool    `json:"is_playing"`
	CurrentTime   float64 `json:"current_time"`
	PlaybackRate  float64 `json:"playback_rate"`
	UpdatedBy     string  `json:"updated_by"`
	UpdatedByName string  `json:"updated_by_name,omitempty"`
	UpdatedAt     int64   `json:"updated_at"`
	LastAction    string  `json:"last_action"`
}

// MediaPlayer is the local playback engine driven by the reconciliation
// loop. Positions are in seconds.
type MediaPlayer interface {
	Position() float64
	SetPosition(seconds float64)
	Play()
	Pause()
	Paused() bool
	PlaybackRate() float64
	SetPlaybackRate(rate float64)
}

// Authority is the server holding the room's timeline. Now is a side-effect
// free probe of the authority clock in ms.
type Authority interface {
	GetSyncState(ctx context.Context, roomId string) (*State, error)
	Play(ctx context.Context, roomId string, currentTime float64) error
	Pause(ctx context.Context, roomId string, currentTime float64) error
	Seek(ctx context.Context, roomId string, currentTime float64) error
	Now(ctx context.Context) (int64, error)
}

const (
	// DefaultSeekThreshold is the drift in seconds above which an
	// event-triggered reconciliation seeks the local player. Smaller drift
	// is left alone to avoid visible judder on network jitter.
	DefaultSeekThreshold = 0.5

	// DefaultWatchdogSeekThreshold is the larger drift threshold used by the
	// periodic check, so it does not fight normal playback jitter between
	// ticks.
	DefaultWatchdogSeekThreshold = 2.0

	// DefaultRateTolerance is the playback rate mismatch above which the
	// local rate is forced to the authoritative one.
	DefaultRateTolerance = 0.1

	// DefaultProgrammaticWindow must outlast the player's asynchronous event
	// dispatch so that events caused by our own corrections are still
	// recognized as programmatic when they arrive.
	DefaultProgrammaticWindow = 100 * time.Millisecond

	// DefaultSyncingWindow bounds how long the "syncing" indicator stays up
	// after a corrective seek.
	DefaultSyncingWindow = 500 * time.Millisecond

	DefaultWatchdogInterval = 5 * time.Second
)

// Config tunes the engine. Zero values fall back to the defaults above.
// CanControl reports whether the local user may mutate the room timeline;
// nil means allowed.
type Config struct {
	SeekThreshold         float64
	WatchdogSeekThreshold float64
	RateTolerance         float64
	ProgrammaticWindow    time.Duration
	SyncingWindow         time.Duration
	WatchdogInterval      time.Duration
	CanControl            func() bool
}

func (cfg *Config) withDefaults() Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}
	if out.SeekThreshold == 0 {
		out.SeekThreshold = DefaultSeekThreshold
	}
	if out.WatchdogSeekThreshold == 0 {
		out.WatchdogSeekThreshold = DefaultWatchdogSeekThreshold
	}
	if out.RateTolerance == 0 {
		out.RateTolerance = DefaultRateTolerance
	}
	if out.ProgrammaticWindow == 0 {
		out.ProgrammaticWindow = DefaultProgrammaticWindow
	}
	if out.SyncingWindow == 0 {
		out.SyncingWindow = DefaultSyncingWindow
	}
	if out.WatchdogInterval == 0 {
		out.WatchdogInterval = DefaultWatchdogInterval
	}

	return out
}
