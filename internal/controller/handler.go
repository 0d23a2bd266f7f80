package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cineroom/server/internal/service/room"
)

// roomWS joins the caller to the room and upgrades the connection. The
// initial room snapshot (room, members, sync state) is written first so the
// client can reconcile before push updates arrive.
func (c controller) roomWS(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")
	token := c.getToken(r)

	identity, err := c.authService.Authenticate(r.Context(), token)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	joinResp, err := c.roomService.JoinRoom(r.Context(), &room.JoinRoomParams{
		Token:  token,
		RoomId: roomId,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	state, err := c.syncService.GetSyncState(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer c.disconnect(r.Context(), token, roomId, identity.UserId)

	if err := c.connRepo.Add(conn, identity.UserId); err != nil {
		c.logger.WarnContext(r.Context(), "failed to register connection", "error", err)
		conn.Close()
		return
	}

	if err := conn.WriteJSON(&Output{
		Type: "JOINED_ROOM",
		Payload: map[string]any{
			"room":       joinResp.Room,
			"members":    joinResp.Members,
			"sync_state": state,
		},
	}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write json", "error", err)
		return
	}

	c.broadcast(r.Context(), joinResp.Conns, &Output{
		Type: "MEMBER_JOINED",
		Payload: map[string]any{
			"member":  joinResp.JoinedMember,
			"members": joinResp.Members,
		},
	})

	ctx := context.WithValue(r.Context(), roomIdCtxKey, roomId)
	ctx = context.WithValue(ctx, userIdCtxKey, identity.UserId)
	ctx = context.WithValue(ctx, tokenCtxKey, token)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(r.Context(), "connection closed", "error", err)
	}
}

func (c controller) disconnect(ctx context.Context, token, roomId, userId string) {
	leaveResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		Token:  token,
		RoomId: roomId,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "failed to leave room", "error", err)
		return
	}

	c.broadcast(ctx, leaveResp.Conns, &Output{
		Type: "MEMBER_LEFT",
		Payload: map[string]any{
			"user_id": userId,
			"members": leaveResp.Members,
		},
	})
}
