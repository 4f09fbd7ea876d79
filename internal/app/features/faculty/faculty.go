// internal/app/features/faculty/faculty.go
package faculty

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/htmlsanitize"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeProfile handles GET /api/faculty/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByIDAndRole(ctx, uid, models.RoleFaculty)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Faculty not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load faculty profile failed", err)
		return
	}
	u.Profile = u.Profile.WithDefaults(models.RoleFaculty)
	respond.OK(w, u)
}

// HandleUpdateProfile handles PATCH /api/faculty/profile. Only the caller's
// faculty variant changes; the faculty id is not editable.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	var patch models.FacultyProfilePatch
	if !respond.Decode(w, r, &patch) {
		return
	}
	if patch.Description != nil {
		d := htmlsanitize.RichText(*patch.Description)
		patch.Description = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).UpdateFacultyProfile(ctx, uid, patch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Faculty not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "update faculty profile failed", err)
		return
	}

	h.AuditLog.UserUpdated(ctx, r, uid, u.ID, []string{"profile"})
	respond.OK(w, u)
}

// ServeStudents handles GET /api/faculty/students: students in the
// sections the caller teaches.
func (h *Handler) ServeStudents(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	students, err := programviews.StudentsTaughtBy(ctx, h.DB, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list faculty students failed", err)
		return
	}
	for i := range students {
		students[i].Profile = students[i].Profile.WithDefaults(models.RoleStudent)
	}
	respond.OK(w, students)
}

// ServeSearch handles GET /api/faculty/search?email=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(query.Get(r, "email"))
	if email == "" {
		respond.Message(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && u.Role != models.RoleFaculty) {
		respond.Message(w, http.StatusNotFound, "Faculty not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "search faculty failed", err)
		return
	}
	u.Profile = u.Profile.WithDefaults(models.RoleFaculty)
	respond.OK(w, u)
}
