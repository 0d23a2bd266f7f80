package playsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	position float64
	paused   bool
	rate     float64

	playCalls  int
	pauseCalls int
	seekCalls  int
	rateCalls  int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{paused: true, rate: 1.0}
}

func (p *fakePlayer) Position() float64 { return p.position }

func (p *fakePlayer) SetPosition(seconds float64) {
	p.position = seconds
	p.seekCalls++
}

func (p *fakePlayer) Play() {
	p.paused = false
	p.playCalls++
}

func (p *fakePlayer) Pause() {
	p.paused = true
	p.pauseCalls++
}

func (p *fakePlayer) Paused() bool { return p.paused }

func (p *fakePlayer) PlaybackRate() float64 { return p.rate }

func (p *fakePlayer) SetPlaybackRate(rate float64) {
	p.rate = rate
	p.rateCalls++
}

type fakeAuthority struct {
	state   *State
	nowFn   func() (int64, error)
	playErr error

	playAt  []float64
	pauseAt []float64
	seekAt  []float64
}

func (a *fakeAuthority) GetSyncState(_ context.Context, _ string) (*State, error) {
	if a.state == nil {
		return nil, errors.New("no state")
	}
	return a.state, nil
}

func (a *fakeAuthority) Play(_ context.Context, _ string, currentTime float64) error {
	if a.playErr != nil {
		return a.playErr
	}
	a.playAt = append(a.playAt, currentTime)
	return nil
}

func (a *fakeAuthority) Pause(_ context.Context, _ string, currentTime float64) error {
	a.pauseAt = append(a.pauseAt, currentTime)
	return nil
}

func (a *fakeAuthority) Seek(_ context.Context, _ string, currentTime float64) error {
	a.seekAt = append(a.seekAt, currentTime)
	return nil
}

func (a *fakeAuthority) Now(_ context.Context) (int64, error) {
	if a.nowFn != nil {
		return a.nowFn()
	}
	return 0, errors.New("no probe")
}

func newTestEngine(clock clockwork.Clock, player *fakePlayer, authority *fakeAuthority, cfg *Config) *Engine {
	return NewEngine("room-1", player, authority, clock, nil, cfg)
}

func TestApplyStateIgnoresStaleSnapshots(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	engine := newTestEngine(clock, player, &fakeAuthority{}, nil)

	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 50, PlaybackRate: 1.0, UpdatedAt: 5_000})
	require.Equal(t, int64(5_000), engine.LastProcessedAt())
	assert.Equal(t, 1, player.seekCalls)

	// same timestamp again, and an older one
	player.position = 0
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 80, PlaybackRate: 1.0, UpdatedAt: 5_000})
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 80, PlaybackRate: 1.0, UpdatedAt: 4_000})
	assert.Equal(t, 1, player.seekCalls, "stale snapshots must not touch the player")
	assert.Equal(t, int64(5_000), engine.LastProcessedAt())
}

func TestApplyStatePausedTarget(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(15_000))
	player := newFakePlayer()
	engine := newTestEngine(clock, player, &fakeAuthority{}, nil)

	// paused: target is the stored position, elapsed time does not count
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 10_000})
	assert.Equal(t, 100.0, player.position)
	assert.Equal(t, 0, player.playCalls)
}

func TestApplyStatePlayingTargetAddsElapsed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(15_000))
	player := newFakePlayer()
	engine := newTestEngine(clock, player, &fakeAuthority{}, nil)

	// playing, updated 5s ago: target is 100 + 5
	engine.ApplyState(&State{IsPlaying: true, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 10_000})
	assert.Equal(t, 105.0, player.position)
	assert.Equal(t, 1, player.playCalls)
	assert.False(t, player.Paused())
}

func TestApplyStateSeekThreshold(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	engine := newTestEngine(clock, player, &fakeAuthority{}, nil)

	player.position = 99.6
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 1_000})
	assert.Equal(t, 0, player.seekCalls, "drift below threshold must not seek")
	assert.False(t, engine.Syncing())

	player.position = 99.4
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 100, PlaybackRate: 1.0, UpdatedAt: 2_000})
	assert.Equal(t, 1, player.seekCalls)
	assert.Equal(t, 100.0, player.position)
	assert.True(t, engine.Syncing())

	clock.Advance(DefaultSyncingWindow + time.Millisecond)
	assert.False(t, engine.Syncing(), "syncing indicator must expire")
}

func TestApplyStatePlaybackRate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	engine := newTestEngine(clock, player, &fakeAuthority{}, nil)

	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 0, PlaybackRate: 1.05, UpdatedAt: 1_000})
	assert.Equal(t, 0, player.rateCalls, "rate mismatch within tolerance is left alone")

	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 0, PlaybackRate: 1.5, UpdatedAt: 2_000})
	assert.Equal(t, 1, player.rateCalls)
	assert.Equal(t, 1.5, player.rate)
}

func TestLocalActionEchoIsSuppressed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	authority := &fakeAuthority{}
	engine := newTestEngine(clock, player, authority, nil)

	player.position = 42
	require.NoError(t, engine.HandleLocalSeeked(context.Background()))
	require.Equal(t, []float64{42}, authority.seekAt)

	// the echo of our own mutation arrives
	player.position = 0
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 42, PlaybackRate: 1.0, UpdatedAt: 11_000})
	assert.Equal(t, 0, player.seekCalls, "own echo must not be reprocessed")
	assert.Equal(t, int64(11_000), engine.LastProcessedAt())

	// the flag is consumed exactly once, the next push reconciles normally
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 42, PlaybackRate: 1.0, UpdatedAt: 12_000})
	assert.Equal(t, 1, player.seekCalls)
	assert.Equal(t, 42.0, player.position)
}

func TestLocalActionFailureClearsFlag(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	authority := &fakeAuthority{playErr: errors.New("permission denied")}
	engine := newTestEngine(clock, player, authority, nil)

	require.Error(t, engine.HandleLocalPlay(context.Background()))

	// the push that arrives next is someone else's mutation, not our echo
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 10, PlaybackRate: 1.0, UpdatedAt: 11_000})
	assert.Equal(t, 10.0, player.position)
	assert.Equal(t, 1, player.seekCalls)
}

func TestProgrammaticEventsAreNotReported(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	authority := &fakeAuthority{}
	engine := newTestEngine(clock, player, authority, nil)

	// the correction starts playback, the player fires a play event back at us
	engine.ApplyState(&State{IsPlaying: true, CurrentTime: 10, PlaybackRate: 1.0, UpdatedAt: 10_000})
	require.Equal(t, 1, player.playCalls)

	require.NoError(t, engine.HandleLocalPlay(context.Background()))
	assert.Empty(t, authority.playAt, "programmatic play must not reach the authority")

	// once the window expires, user events flow again
	clock.Advance(DefaultProgrammaticWindow + time.Millisecond)
	require.NoError(t, engine.HandleLocalPlay(context.Background()))
	assert.Len(t, authority.playAt, 1)
}

func TestHandleLocalWithoutControlRights(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	player := newFakePlayer()
	authority := &fakeAuthority{}
	engine := newTestEngine(clock, player, authority, &Config{
		CanControl: func() bool { return false },
	})

	require.NoError(t, engine.HandleLocalPause(context.Background()))
	assert.Empty(t, authority.pauseAt)

	// the viewer's player still follows pushes
	engine.ApplyState(&State{IsPlaying: false, CurrentTime: 30, PlaybackRate: 1.0, UpdatedAt: 11_000})
	assert.Equal(t, 30.0, player.position)
}

func TestResyncAppliesSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(4_000))
	player := newFakePlayer()
	authority := &fakeAuthority{
		state: &State{IsPlaying: true, CurrentTime: 30, PlaybackRate: 1.0, UpdatedAt: 1_000},
	}
	engine := newTestEngine(clock, player, authority, nil)

	require.NoError(t, engine.Resync(context.Background()))

	// play(30) stamped at 1000, local clock at 4000: position is 33
	assert.Equal(t, 33.0, player.position)
	assert.False(t, player.Paused())
}

func TestResyncError(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(4_000))
	engine := newTestEngine(clock, newFakePlayer(), &fakeAuthority{}, nil)

	require.Error(t, engine.Resync(context.Background()))
}
