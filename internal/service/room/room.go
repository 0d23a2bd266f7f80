package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cineroom/server/internal/repository/room"
)

type CreateRoomParams struct {
	Token              string
	Name               string
	MovieTitle         string
	MovieFileName      string
	IsPublic           bool
	EveryoneCanControl bool
}

type CreateRoomResponse struct {
	RoomId string
	Room   Room
}

// CreateRoom creates the room, its initial sync state (paused at zero) and
// adds the creator as the admin member.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, params.Token)
	if err != nil {
		return CreateRoomResponse{}, err
	}

	roomId := uuid.NewString()
	now := s.clock.Now().UnixMilli()

	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{
		RoomId:             roomId,
		Name:               params.Name,
		MovieTitle:         params.MovieTitle,
		MovieFileName:      params.MovieFileName,
		AdminId:            identity.UserId,
		IsPublic:           params.IsPublic,
		EveryoneCanControl: params.EveryoneCanControl,
		CreatedAt:          now,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	if err := s.roomRepo.SetSyncState(ctx, &room.SetSyncStateParams{
		RoomId:       roomId,
		IsPlaying:    false,
		CurrentTime:  0,
		PlaybackRate: 1,
		UpdatedBy:    identity.UserId,
		UpdatedAt:    now,
		LastAction:   "unset",
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set sync state: %w", err)
	}

	if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
		RoomId:   roomId,
		UserId:   identity.UserId,
		JoinedAt: now,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set member: %w", err)
	}

	return CreateRoomResponse{
		RoomId: roomId,
		Room: Room{
			Id:                 roomId,
			Name:               params.Name,
			MovieTitle:         params.MovieTitle,
			MovieFileName:      params.MovieFileName,
			AdminId:            identity.UserId,
			AdminName:          identity.DisplayName,
			IsPublic:           params.IsPublic,
			EveryoneCanControl: params.EveryoneCanControl,
			CreatedAt:          now,
		},
	}, nil
}

func (s service) GetRoom(ctx context.Context, roomId string) (Room, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return Room{}, ErrRoomNotFound
		}

		return Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	adminName := ""
	if admin, err := s.authGate.GetIdentity(ctx, rm.AdminId); err == nil {
		adminName = admin.DisplayName
	}

	return Room{
		Id:                 roomId,
		Name:               rm.Name,
		MovieTitle:         rm.MovieTitle,
		MovieFileName:      rm.MovieFileName,
		AdminId:            rm.AdminId,
		AdminName:          adminName,
		IsPublic:           rm.IsPublic,
		EveryoneCanControl: rm.EveryoneCanControl,
		CreatedAt:          rm.CreatedAt,
	}, nil
}

func (s service) ListPublicRooms(ctx context.Context) ([]Summary, error) {
	roomIds, err := s.roomRepo.GetPublicRoomIds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get public room ids: %w", err)
	}

	summaries := make([]Summary, 0, len(roomIds))
	for _, roomId := range roomIds {
		rm, err := s.GetRoom(ctx, roomId)
		if err != nil {
			// stale index entry, room already expired
			if errors.Is(err, ErrRoomNotFound) {
				continue
			}

			return nil, err
		}

		memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
		if err != nil {
			return nil, fmt.Errorf("failed to get member ids: %w", err)
		}

		summaries = append(summaries, Summary{
			Room:        rm,
			MemberCount: len(memberIds),
		})
	}

	return summaries, nil
}

type DeleteRoomParams struct {
	Token  string
	RoomId string
}

type DeleteRoomResponse struct {
	Conns []*websocket.Conn
}

// DeleteRoom ends the watch session: a watch log entry is appended to every
// member's history, all membership records and the sync state are removed.
func (s service) DeleteRoom(ctx context.Context, params *DeleteRoomParams) (DeleteRoomResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, params.Token)
	if err != nil {
		return DeleteRoomResponse{}, err
	}

	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return DeleteRoomResponse{}, ErrRoomNotFound
		}

		return DeleteRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	if rm.AdminId != identity.UserId {
		return DeleteRoomResponse{}, ErrPermissionDenied
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, params.RoomId)
	if err != nil {
		return DeleteRoomResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}

	conns := s.getConnsByUserIds(memberIds)

	participants := make([]string, 0, len(memberIds))
	for _, userId := range memberIds {
		member, err := s.authGate.GetIdentity(ctx, userId)
		if err != nil {
			continue
		}
		participants = append(participants, member.DisplayName)
	}

	log := room.WatchLog{
		MovieTitle:   rm.MovieTitle,
		RoomName:     rm.Name,
		Participants: participants,
		FinishedAt:   s.clock.Now().UnixMilli(),
	}
	for _, userId := range memberIds {
		if err := s.roomRepo.AddWatchLog(ctx, &room.AddWatchLogParams{
			UserId: userId,
			Log:    log,
		}); err != nil {
			return DeleteRoomResponse{}, fmt.Errorf("failed to add watch log: %w", err)
		}

		if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
			RoomId: params.RoomId,
			UserId: userId,
		}); err != nil {
			return DeleteRoomResponse{}, fmt.Errorf("failed to remove member: %w", err)
		}
	}

	if err := s.roomRepo.RemoveRoom(ctx, params.RoomId); err != nil {
		return DeleteRoomResponse{}, fmt.Errorf("failed to remove room: %w", err)
	}

	return DeleteRoomResponse{Conns: conns}, nil
}

func (s service) GetWatchLogs(ctx context.Context, token string) ([]room.WatchLog, error) {
	identity, err := s.authGate.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	logs, err := s.roomRepo.GetWatchLogs(ctx, identity.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to get watch logs: %w", err)
	}

	return logs, nil
}
