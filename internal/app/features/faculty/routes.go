// internal/app/features/faculty/routes.go
package faculty

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the faculty endpoints under "/api/faculty". Search is open
// to every signed-in user so students can look up their faculty.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/search", h.ServeSearch)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleFaculty))
		pr.Get("/profile", h.ServeProfile)
		pr.Patch("/profile", h.HandleUpdateProfile)
		pr.Get("/students", h.ServeStudents)
	})
	return r
}
