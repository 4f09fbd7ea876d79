// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log (typically under "/api/admin/audit").
// Access is restricted to admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
