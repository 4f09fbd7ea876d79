// internal/app/features/student/student.go
package student

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/htmlsanitize"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeProfile handles GET /api/student/profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userstore.New(h.DB).GetByIDAndRole(ctx, uid, models.RoleStudent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load student profile failed", err)
		return
	}
	u.Profile = u.Profile.WithDefaults(models.RoleStudent)
	respond.OK(w, u)
}

// HandleUpdateProfile handles PATCH /api/student/profile. The student id is
// not editable.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	var patch models.StudentProfilePatch
	if !respond.Decode(w, r, &patch) {
		return
	}
	if patch.Description != nil {
		d := htmlsanitize.RichText(*patch.Description)
		patch.Description = &d
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).UpdateStudentProfile(ctx, uid, patch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Student not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "update student profile failed", err)
		return
	}

	h.AuditLog.UserUpdated(ctx, r, uid, u.ID, []string{"profile"})
	respond.OK(w, u)
}

// ServeFaculty handles GET /api/student/faculty: faculty of every section
// the caller is in.
func (h *Handler) ServeFaculty(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := programviews.FacultyOf(ctx, h.DB, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list student faculty failed", err)
		return
	}
	for i := range list {
		list[i].Profile = list[i].Profile.WithDefaults(models.RoleFaculty)
	}
	respond.OK(w, list)
}
