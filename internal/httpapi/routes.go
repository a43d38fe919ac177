package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/csplay/lobby/internal/ws"
)

func SetupRoutes(api *API) http.Handler {
	r := chi.NewRouter()

	r.Post("/api/login", api.HandleLogin)
	r.Post("/api/logout", api.HandleLogout)
	r.Get("/api/session", api.HandleSession)

	r.Get("/api/rooms", api.HandleListRooms)
	r.Post("/api/rooms", api.HandleCreateRoom)
	r.Post("/api/rooms/{id}/leave", api.HandleLeaveRoom)

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(api.Lobby, api.Session, api.Log))
	return r
}
