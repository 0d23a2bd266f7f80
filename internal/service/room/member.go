package room

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gorilla/websocket"

	"github.com/cineroom/server/internal/repository/room"
)

type JoinRoomParams struct {
	Token  string
	RoomId string
}

type JoinRoomResponse struct {
	Room         Room
	JoinedMember Member
	Members      []Member
	Conns        []*websocket.Conn
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, params.Token)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	rm, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if _, err := s.roomRepo.GetMember(ctx, params.RoomId, identity.UserId); err == nil {
		// rejoining is fine, e.g. after a dropped connection
	} else if !errors.Is(err, room.ErrMemberNotFound) {
		return JoinRoomResponse{}, fmt.Errorf("failed to get member: %w", err)
	} else if err := s.roomRepo.SetMember(ctx, &room.SetMemberParams{
		RoomId:   params.RoomId,
		UserId:   identity.UserId,
		JoinedAt: s.clock.Now().UnixMilli(),
	}); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to set member: %w", err)
	}

	members, err := s.GetMembers(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	var joined Member
	for _, m := range members {
		if m.UserId == identity.UserId {
			joined = m
			break
		}
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}

	return JoinRoomResponse{
		Room:         rm,
		JoinedMember: joined,
		Members:      members,
		Conns:        s.getConnsByUserIds(memberIds),
	}, nil
}

type LeaveRoomParams struct {
	Token  string
	RoomId string
}

type LeaveRoomResponse struct {
	LeftUserId string
	Members    []Member
	Conns      []*websocket.Conn
}

func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, params.Token)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	if _, err := s.roomRepo.GetMember(ctx, params.RoomId, identity.UserId); err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return LeaveRoomResponse{}, ErrNotMember
		}

		return LeaveRoomResponse{}, fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.roomRepo.RemoveMember(ctx, &room.RemoveMemberParams{
		RoomId: params.RoomId,
		UserId: identity.UserId,
	}); err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}
	s.connRepo.RemoveByUserId(identity.UserId)

	members, err := s.GetMembers(ctx, params.RoomId)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, params.RoomId)
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}

	return LeaveRoomResponse{
		LeftUserId: identity.UserId,
		Members:    members,
		Conns:      s.getConnsByUserIds(memberIds),
	}, nil
}

type SetMemberFileParams struct {
	Token         string
	RoomId        string
	LocalFilePath string
}

type SetMemberFileResponse struct {
	Member  Member
	Members []Member
	Conns   []*websocket.Conn
}

// SetMemberFile records the member's local copy of the movie. The member is
// ready once the selected file name matches the one the room was created for.
func (s service) SetMemberFile(ctx context.Context, params *SetMemberFileParams) (SetMemberFileResponse, error) {
	identity, err := s.authGate.Authenticate(ctx, params.Token)
	if err != nil {
		return SetMemberFileResponse{}, err
	}

	rm, err := s.roomRepo.GetRoom(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return SetMemberFileResponse{}, ErrRoomNotFound
		}

		return SetMemberFileResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	isReady := filepath.Base(params.LocalFilePath) == rm.MovieFileName
	if err := s.roomRepo.UpdateMemberFile(ctx, &room.UpdateMemberFileParams{
		RoomId:        params.RoomId,
		UserId:        identity.UserId,
		LocalFilePath: params.LocalFilePath,
		IsReady:       isReady,
	}); err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return SetMemberFileResponse{}, ErrNotMember
		}

		return SetMemberFileResponse{}, fmt.Errorf("failed to update member file: %w", err)
	}

	members, err := s.GetMembers(ctx, params.RoomId)
	if err != nil {
		return SetMemberFileResponse{}, err
	}

	var updated Member
	for _, m := range members {
		if m.UserId == identity.UserId {
			updated = m
			break
		}
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, params.RoomId)
	if err != nil {
		return SetMemberFileResponse{}, fmt.Errorf("failed to get member ids: %w", err)
	}

	return SetMemberFileResponse{
		Member:  updated,
		Members: members,
		Conns:   s.getConnsByUserIds(memberIds),
	}, nil
}

func (s service) GetMembers(ctx context.Context, roomId string) ([]Member, error) {
	rm, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}

		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	members := make([]Member, 0, len(memberIds))
	for _, userId := range memberIds {
		record, err := s.roomRepo.GetMember(ctx, roomId, userId)
		if err != nil {
			return nil, fmt.Errorf("failed to get member: %w", err)
		}

		member := Member{
			UserId:        userId,
			IsAdmin:       userId == rm.AdminId,
			IsReady:       record.IsReady,
			LocalFilePath: record.LocalFilePath,
			JoinedAt:      record.JoinedAt,
		}
		if identity, err := s.authGate.GetIdentity(ctx, userId); err == nil {
			member.Username = identity.Username
			member.DisplayName = identity.DisplayName
		}

		members = append(members, member)
	}

	return members, nil
}
