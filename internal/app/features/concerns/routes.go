// internal/app/features/concerns/routes.go
package concerns

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the concern endpoints under "/api/concerns".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.With(auth.RequireRole(models.RoleStudent)).Post("/", h.HandleCreate)
	r.Get("/{programId}/{sectionId}", h.ServeList)
	return r
}
