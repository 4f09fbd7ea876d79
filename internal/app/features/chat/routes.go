// internal/app/features/chat/routes.go
package chat

import (
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the chat endpoints under "/api/chat". /ws is registered
// before /{userId} so it is not taken for a user id.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeHTTP)
	} else {
		r.Get("/ws", http.NotFound)
	}
	r.Get("/{userId}", h.ServeChat)
	r.Post("/{chatId}/messages", h.HandlePostMessage)
	r.Put("/{chatId}/read", h.HandleMarkRead)
	return r
}
