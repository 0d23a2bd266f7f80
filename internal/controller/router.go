package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/time", c.getServerTime)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", c.register)
			r.Post("/login", c.login)
			r.Post("/logout", c.logout)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", c.createRoom)
			r.Get("/", c.listPublicRooms)
			r.Route("/{room-id}", func(r chi.Router) {
				r.Get("/", c.getRoom)
				r.Delete("/", c.deleteRoom)
				r.Get("/sync", c.getSyncState)
			})
		})

		r.Get("/watch-logs", c.getWatchLogs)

		r.Route("/ws", func(r chi.Router) {
			r.Get("/room/{room-id}", c.roomWS)
		})
	})

	return r
}
