// internal/app/features/programs/routes.go
package programs

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the program endpoints under "/api/programs".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeProgram)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)

		pr.Post("/{id}/sections", h.HandleAddSection)
		pr.Put("/{id}/sections/{sectionId}", h.HandleUpdateSection)
		pr.Delete("/{id}/sections/{sectionId}", h.HandleDeleteSection)
	})
	return r
}
