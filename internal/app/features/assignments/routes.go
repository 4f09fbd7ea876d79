// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the assignment endpoints under "/api/program-assignments".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/assigned", h.ServeAssigned)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/{programId}/sections/{sectionId}/students", h.HandleAssignStudents)
		pr.Post("/{programId}/sections/{sectionId}/faculty", h.HandleAssignFaculty)
	})
	return r
}
