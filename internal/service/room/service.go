package room

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/cineroom/server/internal/repository/room"
	"github.com/cineroom/server/internal/service/auth"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrRoomNotFound     = errors.New("room not found")
	ErrAlreadyMember    = errors.New("already a member of the room")
	ErrNotMember        = errors.New("not a member of the room")
)

type iRoomRepo interface {
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(context.Context, string) (room.Room, error)
	GetPublicRoomIds(context.Context) ([]string, error)
	RemoveRoom(context.Context, string) error
	SetSyncState(context.Context, *room.SetSyncStateParams) error
	GetSyncState(context.Context, string) (room.SyncState, error)
	SetMember(context.Context, *room.SetMemberParams) error
	GetMember(ctx context.Context, roomId, userId string) (room.Member, error)
	GetMemberIds(context.Context, string) ([]string, error)
	RemoveMember(context.Context, *room.RemoveMemberParams) error
	UpdateMemberFile(context.Context, *room.UpdateMemberFileParams) error
	AddWatchLog(context.Context, *room.AddWatchLogParams) error
	GetWatchLogs(context.Context, string) ([]room.WatchLog, error)
}

type iConnRepo interface {
	GetConn(string) (*websocket.Conn, error)
	RemoveByUserId(string) error
}

type iAuthGate interface {
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
	GetIdentity(ctx context.Context, userId string) (auth.Identity, error)
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	authGate iAuthGate
	clock    clockwork.Clock
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, authGate iAuthGate, clock clockwork.Clock) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		authGate: authGate,
		clock:    clock,
	}
}
