package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cineroom/server/internal/repository/room"
)

type PlayParams struct {
	Token       string
	RoomId      string
	CurrentTime float64
}

type PauseParams struct {
	Token       string
	RoomId      string
	CurrentTime float64
}

type SeekParams struct {
	Token       string
	RoomId      string
	CurrentTime float64
}

// UpdateStateParams applies only the provided fields. The writer and
// timestamp are refreshed even if no playback field is present.
type UpdateStateParams struct {
	Token        string
	RoomId       string
	IsPlaying    *bool
	CurrentTime  *float64
	PlaybackRate *float64
}

type UpdateResponse struct {
	State State
	Conns []*websocket.Conn
}

func (s service) Play(ctx context.Context, params *PlayParams) (UpdateResponse, error) {
	isPlaying := true
	return s.apply(ctx, params.Token, params.RoomId, &room.UpdateSyncStateParams{
		IsPlaying:   &isPlaying,
		CurrentTime: &params.CurrentTime,
		LastAction:  ActionPlay,
	})
}

func (s service) Pause(ctx context.Context, params *PauseParams) (UpdateResponse, error) {
	isPlaying := false
	return s.apply(ctx, params.Token, params.RoomId, &room.UpdateSyncStateParams{
		IsPlaying:   &isPlaying,
		CurrentTime: &params.CurrentTime,
		LastAction:  ActionPause,
	})
}

// Seek updates the reference position without touching the playing state.
func (s service) Seek(ctx context.Context, params *SeekParams) (UpdateResponse, error) {
	return s.apply(ctx, params.Token, params.RoomId, &room.UpdateSyncStateParams{
		CurrentTime: &params.CurrentTime,
		LastAction:  ActionSeek,
	})
}

func (s service) UpdateState(ctx context.Context, params *UpdateStateParams) (UpdateResponse, error) {
	return s.apply(ctx, params.Token, params.RoomId, &room.UpdateSyncStateParams{
		IsPlaying:    params.IsPlaying,
		CurrentTime:  params.CurrentTime,
		PlaybackRate: params.PlaybackRate,
		LastAction:   ActionUnset,
	})
}

// GetSyncState returns the current snapshot, used by clients as the initial
// state before subscribing to pushes.
func (s service) GetSyncState(ctx context.Context, roomId string) (State, error) {
	state, err := s.roomRepo.GetSyncState(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrSyncStateNotFound) {
			return State{}, ErrSyncStateNotFound
		}

		return State{}, fmt.Errorf("failed to get sync state: %w", err)
	}

	return s.toState(ctx, roomId, state), nil
}

// apply runs the shared mutation pipeline: session, room lookup,
// authorization, then a single atomic write stamped with the authority clock.
func (s service) apply(ctx context.Context, token, roomId string, update *room.UpdateSyncStateParams) (UpdateResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, token)
	if err != nil {
		return UpdateResponse{}, err
	}

	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return UpdateResponse{}, ErrRoomNotFound
		}

		return UpdateResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if rm.AdminId != identity.UserId && !rm.EveryoneCanControl {
		return UpdateResponse{}, ErrPermissionDenied
	}

	update.RoomId = roomId
	update.UpdatedBy = identity.UserId
	update.UpdatedAt = s.clock.Now().UnixMilli()
	if err := s.roomRepo.UpdateSyncState(ctx, update); err != nil {
		if errors.Is(err, room.ErrSyncStateNotFound) {
			return UpdateResponse{}, ErrSyncStateNotFound
		}

		return UpdateResponse{}, fmt.Errorf("failed to update sync state: %w", err)
	}

	state, err := s.roomRepo.GetSyncState(ctx, roomId)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to get sync state: %w", err)
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}

	conns := make([]*websocket.Conn, 0, len(memberIds))
	for _, userId := range memberIds {
		conn, err := s.connRepo.GetConn(userId)
		if err != nil {
			continue
		}
		conns = append(conns, conn)
	}

	return UpdateResponse{
		State: s.toState(ctx, roomId, state),
		Conns: conns,
	}, nil
}

func (s service) toState(ctx context.Context, roomId string, state room.SyncState) State {
	updatedByName := ""
	if identity, err := s.authGate.GetIdentity(ctx, state.UpdatedBy); err == nil {
		updatedByName = identity.DisplayName
	}

	return State{
		RoomId:        roomId,
		IsPlaying:     state.IsPlaying,
		CurrentTime:   state.CurrentTime,
		PlaybackRate:  state.PlaybackRate,
		UpdatedBy:     state.UpdatedBy,
		UpdatedByName: updatedByName,
		UpdatedAt:     state.UpdatedAt,
		LastAction:    state.LastAction,
	}
}
