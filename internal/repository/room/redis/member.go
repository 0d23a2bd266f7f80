package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/server/internal/repository/room"
)

func (r repo) SetMember(ctx context.Context, params *room.SetMemberParams) error {
	memberKey := r.getMemberKey(params.RoomId, params.UserId)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, memberKey,
		"user_id", params.UserId,
		"is_ready", false,
		"local_file_path", "",
		"joined_at", params.JoinedAt,
	)
	pipe.Expire(ctx, memberKey, r.expireDuration)
	pipe.SAdd(ctx, r.getMemberListKey(params.RoomId), params.UserId)
	pipe.Expire(ctx, r.getMemberListKey(params.RoomId), r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set member: %w", err)
	}

	return nil
}

func (r repo) GetMember(ctx context.Context, roomId, userId string) (room.Member, error) {
	memberKey := r.getMemberKey(roomId, userId)
	res, err := r.rc.Exists(ctx, memberKey).Result()
	if err != nil {
		return room.Member{}, fmt.Errorf("failed to check if member exists: %w", err)
	}
	if res == 0 {
		return room.Member{}, room.ErrMemberNotFound
	}

	var member room.Member
	if err := r.rc.HGetAll(ctx, memberKey).Scan(&member); err != nil {
		return room.Member{}, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

func (r repo) GetMemberIds(ctx context.Context, roomId string) ([]string, error) {
	memberIds, err := r.rc.SMembers(ctx, r.getMemberListKey(roomId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	return memberIds, nil
}

func (r repo) RemoveMember(ctx context.Context, params *room.RemoveMemberParams) error {
	pipe := r.rc.TxPipeline()
	pipe.Del(ctx, r.getMemberKey(params.RoomId, params.UserId))
	pipe.SRem(ctx, r.getMemberListKey(params.RoomId), params.UserId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (r repo) UpdateMemberFile(ctx context.Context, params *room.UpdateMemberFileParams) error {
	memberKey := r.getMemberKey(params.RoomId, params.UserId)
	cmd := r.rc.Exists(ctx, memberKey)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("failed to check if member exists: %w", err)
	}
	if cmd.Val() == 0 {
		return room.ErrMemberNotFound
	}

	if err := r.rc.HSet(ctx, memberKey,
		"local_file_path", params.LocalFilePath,
		"is_ready", params.IsReady,
	).Err(); err != nil {
		return fmt.Errorf("failed to update member file: %w", err)
	}

	return nil
}
