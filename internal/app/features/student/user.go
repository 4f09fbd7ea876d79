// internal/app/features/student/user.go
package student

import (
	"context"
	"errors"
	"net/http"
	"time"

	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type programRef struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
}

type sectionRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// assignmentView is an assigned_programs entry with the program and section
// resolved. Both are null when the reference no longer resolves.
type assignmentView struct {
	ProgramID  primitive.ObjectID `json:"program_id"`
	SectionID  primitive.ObjectID `json:"section_id"`
	AssignedAt time.Time          `json:"assigned_at"`
	Program    *programRef        `json:"program"`
	Section    *sectionRef        `json:"section"`
}

type userView struct {
	*models.User
	AssignedPrograms []assignmentView `json:"assigned_programs"`
}

// ServeUser handles GET /api/student/user/{userId}: the user with role
// defaults applied and assigned programs resolved. Callers may read
// themselves; admins and faculty may read anyone.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if !authz.IsSelfOrAdmin(r, id) && !authz.IsFaculty(r) {
		respond.Message(w, http.StatusForbidden, "Access denied")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load user failed", err)
		return
	}
	u.Profile = u.Profile.WithDefaults(u.Role)

	assigned, err := h.resolveAssignments(ctx, u.AssignedPrograms)
	if err != nil {
		h.ErrLog.ServerError(w, r, "resolve assigned programs failed", err)
		return
	}
	respond.OK(w, userView{User: u, AssignedPrograms: assigned})
}

func (h *Handler) resolveAssignments(ctx context.Context, in []models.AssignedProgram) ([]assignmentView, error) {
	ids := make([]primitive.ObjectID, 0, len(in))
	for _, a := range in {
		ids = append(ids, a.ProgramID)
	}
	programs, err := programstore.New(h.DB).ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Program, len(programs))
	for _, p := range programs {
		byID[p.ID] = p
	}

	out := make([]assignmentView, 0, len(in))
	for _, a := range in {
		v := assignmentView{ProgramID: a.ProgramID, SectionID: a.SectionID, AssignedAt: a.AssignedAt}
		if p, ok := byID[a.ProgramID]; ok {
			v.Program = &programRef{ID: p.ID, Title: p.Title, Description: p.Description}
			if s, ok := p.Section(a.SectionID); ok {
				v.Section = &sectionRef{ID: s.ID, Name: s.Name}
			}
		}
		out = append(out, v)
	}
	return out, nil
}
