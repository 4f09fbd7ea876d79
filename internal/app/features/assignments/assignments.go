// internal/app/features/assignments/assignments.go
package assignments

import (
	"context"
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/features/shared/sections"
	"github.com/dalemusser/facultrack/internal/app/store/audit"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeAssigned handles GET /api/program-assignments/assigned: the caller's
// programs narrowed to the sections they belong to.
func (h *Handler) ServeAssigned(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	views, err := h.Assign.GetAssigned(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "load assigned programs failed", err)
		return
	}
	respond.OK(w, views)
}

func pathIDs(w http.ResponseWriter, r *http.Request) (pid, sid primitive.ObjectID, ok bool) {
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "programId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid program ID")
		return pid, sid, false
	}
	sid, err = primitive.ObjectIDFromHex(chi.URLParam(r, "sectionId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid section ID")
		return pid, sid, false
	}
	return pid, sid, true
}

type studentsInput struct {
	StudentIDs []string `json:"student_ids" validate:"required,max=1000,dive,objectid" label:"Students"`
}

type facultyInput struct {
	FacultyID string `json:"faculty_id" validate:"required,objectid" label:"Faculty"`
}

// HandleAssignStudents replaces the students of a section.
func (h *Handler) HandleAssignStudents(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	pid, sid, ok := pathIDs(w, r)
	if !ok {
		return
	}
	var in studentsInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}
	ids, ok := sections.ObjectIDs(w, in.StudentIDs)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign students")
	defer cancel()

	if _, err := h.Assign.AssignStudents(ctx, pid, sid, ids); err != nil {
		sections.WriteError(w, r, h.ErrLog, "assign students failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventStudentsAssigned, pid, &sid)
	h.writeProgram(ctx, w, r, pid)
}

// HandleAssignFaculty replaces the faculty of a section.
func (h *Handler) HandleAssignFaculty(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	pid, sid, ok := pathIDs(w, r)
	if !ok {
		return
	}
	var in facultyInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}
	fid, _ := primitive.ObjectIDFromHex(in.FacultyID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign faculty")
	defer cancel()

	if _, err := h.Assign.AssignFaculty(ctx, pid, sid, fid); err != nil {
		sections.WriteError(w, r, h.ErrLog, "assign faculty failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventFacultyAssigned, pid, &sid)
	h.writeProgram(ctx, w, r, pid)
}

func (h *Handler) writeProgram(ctx context.Context, w http.ResponseWriter, r *http.Request, pid primitive.ObjectID) {
	p, err := programstore.New(h.DB).GetByID(ctx, pid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload program failed", err)
		return
	}
	v, err := programviews.One(ctx, h.DB, p)
	if err != nil {
		h.ErrLog.ServerError(w, r, "populate program failed", err)
		return
	}
	respond.OK(w, v)
}
