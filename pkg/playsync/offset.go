package playsync

import "context"

// SyncClock estimates the offset between the local clock and the authority
// clock with a single round-trip probe, assuming symmetric network latency.
// A failed probe keeps the previous offset (initially 0) so playback never
// blocks on clock synchronization.
func (e *Engine) SyncClock(ctx context.Context) {
	t0 := e.clock.Now()
	serverTime, err := e.authority.Now(ctx)
	t1 := e.clock.Now()
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("clock probe failed, keeping previous offset", "error", err)
		}
		return
	}

	latency := t1.Sub(t0).Milliseconds() / 2
	offset := serverTime - (t1.UnixMilli() - latency)

	e.mu.Lock()
	e.offsetMillis = offset
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Debug("clock synced", "latency_ms", latency, "offset_ms", offset)
	}
}

// Offset returns the current estimate of authorityNow - localNow in ms.
func (e *Engine) Offset() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.offsetMillis
}
