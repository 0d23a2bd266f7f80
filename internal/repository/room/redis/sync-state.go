package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/server/internal/repository/room"
)

func (r repo) SetSyncState(ctx context.Context, params *room.SetSyncStateParams) error {
	syncStateKey := r.getSyncStateKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, syncStateKey,
		"is_playing", params.IsPlaying,
		"current_time", params.CurrentTime,
		"playback_rate", params.PlaybackRate,
		"updated_by", params.UpdatedBy,
		"updated_at", params.UpdatedAt,
		"last_action", params.LastAction,
	)
	pipe.Expire(ctx, syncStateKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set sync state: %w", err)
	}

	return nil
}

func (r repo) GetSyncState(ctx context.Context, roomId string) (room.SyncState, error) {
	syncStateKey := r.getSyncStateKey(roomId)
	res, err := r.rc.Exists(ctx, syncStateKey).Result()
	if err != nil {
		return room.SyncState{}, fmt.Errorf("failed to check if sync state exists: %w", err)
	}
	if res == 0 {
		return room.SyncState{}, room.ErrSyncStateNotFound
	}

	var state room.SyncState
	if err := r.rc.HGetAll(ctx, syncStateKey).Scan(&state); err != nil {
		return room.SyncState{}, fmt.Errorf("failed to get sync state: %w", err)
	}

	r.rc.Expire(ctx, syncStateKey, r.expireDuration)

	return state, nil
}

// UpdateSyncState writes the provided playback fields together with the
// writer metadata as a single HSET, so concurrent writers resolve to
// last-write-wins at the record level rather than interleaving fields.
func (r repo) UpdateSyncState(ctx context.Context, params *room.UpdateSyncStateParams) error {
	syncStateKey := r.getSyncStateKey(params.RoomId)
	cmd := r.rc.Exists(ctx, syncStateKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to check if sync state exists: %w", err)
	}
	if cmd.Val() == 0 {
		return room.ErrSyncStateNotFound
	}

	fields := []any{
		"updated_by", params.UpdatedBy,
		"updated_at", params.UpdatedAt,
		"last_action", params.LastAction,
	}
	if params.IsPlaying != nil {
		fields = append(fields, "is_playing", *params.IsPlaying)
	}
	if params.CurrentTime != nil {
		fields = append(fields, "current_time", *params.CurrentTime)
	}
	if params.PlaybackRate != nil {
		fields = append(fields, "playback_rate", *params.PlaybackRate)
	}

	if err := r.rc.HSet(ctx, syncStateKey, fields...).Err(); err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}

	r.rc.Expire(ctx, syncStateKey, r.expireDuration)

	return nil
}
