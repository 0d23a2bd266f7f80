package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cineroom/server/internal/service/auth"
	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/pkg/rest"
)

// getServerTime is the authority clock probe used by clients to estimate
// their clock offset. It has no side effects.
func (c controller) getServerTime(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"server_time": c.clock.Now().UnixMilli()})
}

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"required,max=64"`
}

type authResponse struct {
	Token    string        `json:"token"`
	Identity auth.Identity `json:"identity"`
}

func (c controller) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.authService.Register(r.Context(), &auth.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": authResponse{
		Token:    resp.Token,
		Identity: resp.Identity,
	}})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c controller) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.authService.Login(r.Context(), &auth.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": authResponse{
		Token:    resp.Token,
		Identity: resp.Identity,
	}})
}

func (c controller) logout(w http.ResponseWriter, r *http.Request) {
	if err := c.authService.Logout(r.Context(), c.getToken(r)); err != nil {
		c.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type createRoomRequest struct {
	Name               string `json:"name" validate:"required,max=64"`
	MovieTitle         string `json:"movie_title" validate:"required,max=128"`
	MovieFileName      string `json:"movie_file_name" validate:"required,max=255"`
	IsPublic           bool   `json:"is_public"`
	EveryoneCanControl bool   `json:"everyone_can_control"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return
	}

	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.CreateRoom(r.Context(), &room.CreateRoomParams{
		Token:              c.getToken(r),
		Name:               req.Name,
		MovieTitle:         req.MovieTitle,
		MovieFileName:      req.MovieFileName,
		IsPublic:           req.IsPublic,
		EveryoneCanControl: req.EveryoneCanControl,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": resp.Room})
}

func (c controller) listPublicRooms(w http.ResponseWriter, r *http.Request) {
	summaries, err := c.roomService.ListPublicRooms(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": summaries})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomId := chi.URLParam(r, "room-id")

	rm, err := c.roomService.GetRoom(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	members, err := c.roomService.GetMembers(r.Context(), roomId)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": map[string]any{
		"room":    rm,
		"members": members,
	}})
}

func (c controller) deleteRoom(w http.ResponseWriter, r *http.Request) {
	resp, err := c.roomService.DeleteRoom(r.Context(), &room.DeleteRoomParams{
		Token:  c.getToken(r),
		RoomId: chi.URLParam(r, "room-id"),
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "ROOM_CLOSED",
		Payload: EmptyPayload{},
	})

	w.WriteHeader(http.StatusNoContent)
}

// getSyncState serves the initial snapshot a client reconciles against
// before push updates start arriving.
func (c controller) getSyncState(w http.ResponseWriter, r *http.Request) {
	state, err := c.syncService.GetSyncState(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": state})
}

func (c controller) getWatchLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := c.roomService.GetWatchLogs(r.Context(), c.getToken(r))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": logs})
}
