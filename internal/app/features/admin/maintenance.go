// internal/app/features/admin/maintenance.go
package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/facultrack/internal/app/store/audit"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
)

// HandleCleanup handles POST /api/admin/cleanup-null-users.
func (h *Handler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "cleanup invalid users")
	defer cancel()

	res, err := h.Purge.CleanupInvalidUsers(ctx)
	if err != nil {
		h.ErrLog.ServerError(w, r, "cleanup invalid users failed", err)
		return
	}

	h.AuditLog.Admin(ctx, r, actorID, audit.EventUsersPurged, nil, map[string]string{
		"users": strconv.FormatInt(res.Users, 10),
	})
	respond.OK(w, map[string]any{
		"message": "Null users cleanup completed successfully",
		"result":  res,
	})
}

type statsResponse struct {
	Students int64 `json:"students"`
	Faculty  int64 `json:"faculty"`
	Programs int64 `json:"programs"`
}

// ServeStats handles GET /api/admin/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users := userstore.New(h.DB)
	var out statsResponse
	var err error
	if out.Students, err = users.CountByRole(ctx, models.RoleStudent); err != nil {
		h.ErrLog.ServerError(w, r, "count students failed", err)
		return
	}
	if out.Faculty, err = users.CountByRole(ctx, models.RoleFaculty); err != nil {
		h.ErrLog.ServerError(w, r, "count faculty failed", err)
		return
	}
	if out.Programs, err = programstore.New(h.DB).Count(ctx); err != nil {
		h.ErrLog.ServerError(w, r, "count programs failed", err)
		return
	}
	respond.OK(w, out)
}
