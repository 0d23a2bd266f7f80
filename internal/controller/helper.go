package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cineroom/server/internal/service/auth"
	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/internal/service/sync"
	"github.com/cineroom/server/pkg/rest"
)

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(c.clock.Now().UnixNano(), 36)
}

func (c controller) getToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	// websocket clients cannot set headers from the browser
	return r.URL.Query().Get("token")
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrInvalidSession), errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailAlreadyTaken), errors.Is(err, auth.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, room.ErrPermissionDenied), errors.Is(err, sync.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, sync.ErrRoomNotFound),
		errors.Is(err, sync.ErrSyncStateNotFound), errors.Is(err, room.ErrNotMember):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
	}

	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}
