package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	roomRepo "github.com/cineroom/server/internal/repository/room"
	"github.com/cineroom/server/internal/service/auth"
	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/internal/service/sync"
	"github.com/cineroom/server/pkg/validator"
	"github.com/cineroom/server/pkg/wsrouter"
)

type iAuthService interface {
	Register(context.Context, *auth.RegisterParams) (auth.AuthResponse, error)
	Login(context.Context, *auth.LoginParams) (auth.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (room.Room, error)
	ListPublicRooms(context.Context) ([]room.Summary, error)
	DeleteRoom(context.Context, *room.DeleteRoomParams) (room.DeleteRoomResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	SetMemberFile(context.Context, *room.SetMemberFileParams) (room.SetMemberFileResponse, error)
	GetMembers(ctx context.Context, roomId string) ([]room.Member, error)
	GetWatchLogs(ctx context.Context, token string) ([]roomRepo.WatchLog, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, userId string) error
	RemoveByConn(conn *websocket.Conn) error
}

type iSyncService interface {
	GetSyncState(ctx context.Context, roomId string) (sync.State, error)
	Play(context.Context, *sync.PlayParams) (sync.UpdateResponse, error)
	Pause(context.Context, *sync.PauseParams) (sync.UpdateResponse, error)
	Seek(context.Context, *sync.SeekParams) (sync.UpdateResponse, error)
	UpdateState(context.Context, *sync.UpdateStateParams) (sync.UpdateResponse, error)
}

type controller struct {
	authService iAuthService
	roomService iRoomService
	syncService iSyncService
	connRepo    iConnRepo
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	clock       clockwork.Clock
	logger      *slog.Logger
}

func NewController(authService iAuthService, roomService iRoomService, syncService iSyncService, connRepo iConnRepo, clock clockwork.Clock, logger *slog.Logger) *controller {
	c := &controller{
		authService: authService,
		roomService: roomService,
		syncService: syncService,
		connRepo:    connRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		clock:    clock,
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
