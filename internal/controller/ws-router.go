package controller

import (
	"github.com/cineroom/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)

	// player
	wsrouter.Handle(mux, "PLAYER_PLAY", c.handlePlayerPlay)
	wsrouter.Handle(mux, "PLAYER_PAUSE", c.handlePlayerPause)
	wsrouter.Handle(mux, "PLAYER_SEEK", c.handlePlayerSeek)
	wsrouter.Handle(mux, "PLAYER_UPDATE", c.handlePlayerUpdate)

	// member
	wsrouter.Handle(mux, "MEMBER_FILE", c.handleMemberFile)

	return mux
}
