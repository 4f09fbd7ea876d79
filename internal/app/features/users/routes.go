// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user directory under "/api/users".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeUser)
	r.Put("/{id}", h.HandleUpdate)
	return r
}
