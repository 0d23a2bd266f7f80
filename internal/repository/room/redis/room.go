package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/server/internal/repository/room"
)

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	roomKey := r.getRoomKey(params.RoomId)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, roomKey,
		"name", params.Name,
		"movie_title", params.MovieTitle,
		"movie_file_name", params.MovieFileName,
		"admin_id", params.AdminId,
		"is_public", params.IsPublic,
		"everyone_can_control", params.EveryoneCanControl,
		"created_at", params.CreatedAt,
	)
	pipe.Expire(ctx, roomKey, r.expireDuration)
	if params.IsPublic {
		pipe.SAdd(ctx, r.getPublicRoomsKey(), params.RoomId)
	}

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)
	res, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if res == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var rm room.Room
	if err := r.rc.HGetAll(ctx, roomKey).Scan(&rm); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return rm, nil
}

func (r repo) GetPublicRoomIds(ctx context.Context) ([]string, error) {
	roomIds, err := r.rc.SMembers(ctx, r.getPublicRoomsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get public room ids: %w", err)
	}

	return roomIds, nil
}

func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getRoomKey(roomId))
	pipe.Del(ctx, r.getSyncStateKey(roomId))
	pipe.SRem(ctx, r.getPublicRoomsKey(), roomId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	return nil
}

func (r repo) AddWatchLog(ctx context.Context, params *room.AddWatchLogParams) error {
	watchLogKey := r.getWatchLogKey(params.UserId)
	if err := r.rc.RPush(ctx, watchLogKey, params.Log).Err(); err != nil {
		return fmt.Errorf("failed to add watch log: %w", err)
	}

	return nil
}

func (r repo) GetWatchLogs(ctx context.Context, userId string) ([]room.WatchLog, error) {
	entries, err := r.rc.LRange(ctx, r.getWatchLogKey(userId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get watch logs: %w", err)
	}

	logs := make([]room.WatchLog, 0, len(entries))
	for _, entry := range entries {
		var log room.WatchLog
		if err := log.UnmarshalBinary([]byte(entry)); err != nil {
			return nil, fmt.Errorf("failed to unmarshal watch log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, nil
}
