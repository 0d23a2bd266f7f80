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

func TestSyncClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(0))
	authority := &fakeAuthority{
		nowFn: func() (int64, error) {
			// the round trip takes 100ms of local time
			clock.Advance(100 * time.Millisecond)
			return 1_050, nil
		},
	}
	engine := newTestEngine(clock, newFakePlayer(), authority, nil)

	engine.SyncClock(context.Background())

	// latency (100-0)/2 = 50, offset 1050 - (100 - 50) = 1000
	assert.Equal(t, int64(1_000), engine.Offset())
}

func TestSyncClockZeroLatency(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(2_000))
	authority := &fakeAuthority{
		nowFn: func() (int64, error) { return 2_000, nil },
	}
	engine := newTestEngine(clock, newFakePlayer(), authority, nil)

	engine.SyncClock(context.Background())
	assert.Equal(t, int64(0), engine.Offset(), "matching clocks have zero offset")
}

func TestSyncClockFailureKeepsPreviousOffset(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(0))
	probeErr := error(nil)
	authority := &fakeAuthority{
		nowFn: func() (int64, error) {
			if probeErr != nil {
				return 0, probeErr
			}
			return clock.Now().UnixMilli() + 500, nil
		},
	}
	engine := newTestEngine(clock, newFakePlayer(), authority, nil)

	engine.SyncClock(context.Background())
	require.Equal(t, int64(500), engine.Offset())

	probeErr = errors.New("connection refused")
	engine.SyncClock(context.Background())
	assert.Equal(t, int64(500), engine.Offset(), "failed probe must keep the previous offset")
}

func TestOffsetShiftsReconciliationTarget(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(10_000))
	authority := &fakeAuthority{
		// authority clock runs 2s ahead of the local one
		nowFn: func() (int64, error) { return clock.Now().UnixMilli() + 2_000, nil },
	}
	player := newFakePlayer()
	engine := newTestEngine(clock, player, authority, nil)

	engine.SyncClock(context.Background())
	require.Equal(t, int64(2_000), engine.Offset())

	// snapshot stamped at authority time 9000, authority now is 12000:
	// 3 seconds of playback elapsed
	engine.ApplyState(&State{IsPlaying: true, CurrentTime: 60, PlaybackRate: 1.0, UpdatedAt: 9_000})
	assert.Equal(t, 63.0, player.position)
}
