package sync

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/cineroom/server/internal/repository/room"
	"github.com/cineroom/server/internal/service/auth"
)

var (
	ErrPermissionDenied  = errors.New("only the room admin can control playback")
	ErrRoomNotFound      = errors.New("room not found")
	ErrSyncStateNotFound = errors.New("sync state not found")
)

type iRoomRepo interface {
	GetRoom(context.Context, string) (room.Room, error)
	GetSyncState(context.Context, string) (room.SyncState, error)
	UpdateSyncState(context.Context, *room.UpdateSyncStateParams) error
	GetMemberIds(context.Context, string) ([]string, error)
}

type iConnRepo interface {
	GetConn(string) (*websocket.Conn, error)
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
