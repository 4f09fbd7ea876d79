// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin endpoints under "/api/admin".
//
//	h := admin.NewHandler(db, purger, errLog, audit, logger)
//	r.Mount("/api/admin", admin.Routes(h))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))

		pr.Get("/users", h.ServeUsers)
		pr.Patch("/users/{id}", h.HandlePatch)
		pr.Delete("/users/{id}", h.HandleDelete)

		pr.Post("/students", h.HandleCreateStudent)
		pr.Post("/faculty", h.HandleCreateFaculty)

		pr.Post("/cleanup-null-users", h.HandleCleanup)
		pr.Get("/stats", h.ServeStats)
	})

	return r
}
