package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/internal/service/sync"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type EmptyPayload struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyPayload) error {
	return nil
}

type PlayerPlayInput struct {
	CurrentTime float64 `json:"current_time"`
}

func (c controller) handlePlayerPlay(ctx context.Context, _ *websocket.Conn, input PlayerPlayInput) error {
	resp, err := c.syncService.Play(ctx, &sync.PlayParams{
		Token:       c.getTokenFromCtx(ctx),
		RoomId:      c.getRoomIdFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	return c.broadcastSyncState(ctx, resp)
}

type PlayerPauseInput struct {
	CurrentTime float64 `json:"current_time"`
}

func (c controller) handlePlayerPause(ctx context.Context, _ *websocket.Conn, input PlayerPauseInput) error {
	resp, err := c.syncService.Pause(ctx, &sync.PauseParams{
		Token:       c.getTokenFromCtx(ctx),
		RoomId:      c.getRoomIdFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}

	return c.broadcastSyncState(ctx, resp)
}

type PlayerSeekInput struct {
	CurrentTime float64 `json:"current_time"`
}

func (c controller) handlePlayerSeek(ctx context.Context, _ *websocket.Conn, input PlayerSeekInput) error {
	resp, err := c.syncService.Seek(ctx, &sync.SeekParams{
		Token:       c.getTokenFromCtx(ctx),
		RoomId:      c.getRoomIdFromCtx(ctx),
		CurrentTime: input.CurrentTime,
	})
	if err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return c.broadcastSyncState(ctx, resp)
}

type PlayerUpdateInput struct {
	IsPlaying    *bool    `json:"is_playing,omitempty"`
	CurrentTime  *float64 `json:"current_time,omitempty"`
	PlaybackRate *float64 `json:"playback_rate,omitempty"`
}

func (c controller) handlePlayerUpdate(ctx context.Context, _ *websocket.Conn, input PlayerUpdateInput) error {
	resp, err := c.syncService.UpdateState(ctx, &sync.UpdateStateParams{
		Token:        c.getTokenFromCtx(ctx),
		RoomId:       c.getRoomIdFromCtx(ctx),
		IsPlaying:    input.IsPlaying,
		CurrentTime:  input.CurrentTime,
		PlaybackRate: input.PlaybackRate,
	})
	if err != nil {
		return fmt.Errorf("failed to update player state: %w", err)
	}

	return c.broadcastSyncState(ctx, resp)
}

type MemberFileInput struct {
	LocalFilePath string `json:"local_file_path"`
}

func (c controller) handleMemberFile(ctx context.Context, _ *websocket.Conn, input MemberFileInput) error {
	resp, err := c.roomService.SetMemberFile(ctx, &room.SetMemberFileParams{
		Token:         c.getTokenFromCtx(ctx),
		RoomId:        c.getRoomIdFromCtx(ctx),
		LocalFilePath: input.LocalFilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to set member file: %w", err)
	}

	return c.broadcast(ctx, resp.Conns, &Output{
		Type: "MEMBER_UPDATED",
		Payload: map[string]any{
			"member":  resp.Member,
			"members": resp.Members,
		},
	})
}

func (c controller) broadcastSyncState(ctx context.Context, resp sync.UpdateResponse) error {
	return c.broadcast(ctx, resp.Conns, &Output{
		Type:    "PLAYER_STATE_UPDATED",
		Payload: resp.State,
	})
}

func (c controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) error {
	for _, conn := range conns {
		if err := conn.WriteJSON(output); err != nil {
			c.logger.WarnContext(ctx, "failed to write to conn", "error", err)
		}
	}

	return nil
}
