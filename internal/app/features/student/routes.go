// internal/app/features/student/routes.go
package student

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the student endpoints under "/api/student".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/user/{userId}", h.ServeUser)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleStudent))
		pr.Get("/profile", h.ServeProfile)
		pr.Patch("/profile", h.HandleUpdateProfile)
		pr.Get("/faculty", h.ServeFaculty)
	})
	return r
}
