package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineroom/server/internal/controller"
	"github.com/cineroom/server/internal/repository/connection/inmemory"
	roomredis "github.com/cineroom/server/internal/repository/room/redis"
	sessionredis "github.com/cineroom/server/internal/repository/session/redis"
	"github.com/cineroom/server/internal/service/auth"
	"github.com/cineroom/server/internal/service/room"
	"github.com/cineroom/server/internal/service/sync"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})

	clock := clockwork.NewRealClock()
	roomRepo := roomredis.NewRepo(rc, time.Hour)
	sessionRepo := sessionredis.NewRepo(rc)
	connRepo := inmemory.NewRepo()

	authService := auth.NewService(sessionRepo, clock, &auth.Config{SessionTTL: time.Hour})
	roomService := room.NewService(roomRepo, connRepo, authService, clock)
	syncService := sync.NewService(roomRepo, connRepo, authService, clock)

	ctrl := controller.NewController(authService, roomService, syncService, connRepo, clock, newTestLogger())
	srv := httptest.NewServer(ctrl.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func registerUser(t *testing.T, srv *httptest.Server, username, email string) (string, auth.Identity) {
	t.Helper()

	resp := postJSON(t, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"username":     username,
		"email":        email,
		"password":     "secret123",
		"display_name": username,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		Token    string        `json:"token"`
		Identity auth.Identity `json:"identity"`
	}
	decodeData(t, resp, &data)
	require.NotEmpty(t, data.Token)

	return data.Token, data.Identity
}

func TestHealthAndTime(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/v1/time")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		ServerTime int64 `json:"server_time"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.InDelta(t, time.Now().UnixMilli(), envelope.ServerTime, 5_000)
}

func TestWatchTogetherFlow(t *testing.T) {
	srv := newTestServer(t)

	adminToken, _ := registerUser(t, srv, "admin", "admin@example.com")

	resp := postJSON(t, srv.URL+"/api/v1/rooms", adminToken, map[string]any{
		"name":            "friday night",
		"movie_title":     "Blade Runner",
		"movie_file_name": "bladerunner.mkv",
		"is_public":       true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var createdRoom room.Room
	decodeData(t, resp, &createdRoom)
	require.NotEmpty(t, createdRoom.Id)

	// the room shows up in the public listing
	listResp, err := http.Get(srv.URL + "/api/v1/rooms")
	require.NoError(t, err)
	var summaries []room.Summary
	decodeData(t, listResp, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, createdRoom.Id, summaries[0].Room.Id)

	// admin connects over websocket
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/api/v1/ws/room/" + createdRoom.Id + "?token=" + adminToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var joined struct {
		Type    string `json:"type"`
		Payload struct {
			SyncState sync.State `json:"sync_state"`
		} `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&joined))
	require.Equal(t, "JOINED_ROOM", joined.Type)
	assert.False(t, joined.Payload.SyncState.IsPlaying)

	// admin starts playback
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "PLAYER_PLAY",
		"payload": map[string]any{"current_time": 12.5},
	}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var pushed struct {
		Type    string     `json:"type"`
		Payload sync.State `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&pushed))
	require.Equal(t, "PLAYER_STATE_UPDATED", pushed.Type)
	assert.True(t, pushed.Payload.IsPlaying)
	assert.Equal(t, 12.5, pushed.Payload.CurrentTime)
	assert.Equal(t, "play", pushed.Payload.LastAction)

	// the snapshot endpoint agrees with the push
	stateResp, err := http.Get(fmt.Sprintf("%s/api/v1/rooms/%s/sync", srv.URL, createdRoom.Id))
	require.NoError(t, err)
	var state sync.State
	decodeData(t, stateResp, &state)
	assert.Equal(t, pushed.Payload.UpdatedAt, state.UpdatedAt)
	assert.True(t, state.IsPlaying)
}

func TestViewerCannotControl(t *testing.T) {
	srv := newTestServer(t)

	adminToken, _ := registerUser(t, srv, "admin", "admin@example.com")
	viewerToken, _ := registerUser(t, srv, "viewer", "viewer@example.com")

	resp := postJSON(t, srv.URL+"/api/v1/rooms", adminToken, map[string]any{
		"name":            "strict room",
		"movie_title":     "Alien",
		"movie_file_name": "alien.mkv",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var createdRoom room.Room
	decodeData(t, resp, &createdRoom)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/api/v1/ws/room/" + createdRoom.Id + "?token=" + viewerToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var joined struct {
		Type string `json:"type"`
	}
	require.NoError(t, conn.ReadJSON(&joined))
	require.Equal(t, "JOINED_ROOM", joined.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "PLAYER_PLAY",
		"payload": map[string]any{"current_time": 1},
	}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply struct {
		Error string `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Contains(t, reply.Error, "admin")
}
