// internal/app/features/programs/sections.go
package programs

import (
	"context"
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/features/shared/sections"
	"github.com/dalemusser/facultrack/internal/app/store/audit"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sectionID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sectionId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid section ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondWithProgram reloads the program and writes it populated.
func (h *Handler) respondWithProgram(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID, status int) {
	p, err := programstore.New(h.DB).GetByID(ctx, id)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload program failed", err)
		return
	}
	h.writeProgram(ctx, w, r, p, status)
}

// HandleAddSection handles POST /api/programs/{id}/sections.
func (h *Handler) HandleAddSection(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	pid, ok := programID(w, r)
	if !ok {
		return
	}
	var body sections.Input
	if !respond.Decode(w, r, &body) {
		return
	}
	in, ok := body.Section(w)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "add section")
	defer cancel()

	sec, err := h.Assign.AddSection(ctx, pid, in)
	if err != nil {
		sections.WriteError(w, r, h.ErrLog, "add section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionCreated, pid, &sec.ID)
	h.respondWithProgram(ctx, w, r, pid, http.StatusCreated)
}

// HandleUpdateSection handles PUT /api/programs/{id}/sections/{sectionId}.
func (h *Handler) HandleUpdateSection(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	pid, ok := programID(w, r)
	if !ok {
		return
	}
	sid, ok := sectionID(w, r)
	if !ok {
		return
	}
	var body sections.Input
	if !respond.Decode(w, r, &body) {
		return
	}
	in, ok := body.Section(w)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update section")
	defer cancel()

	if _, err := h.Assign.UpdateSection(ctx, pid, sid, in); err != nil {
		sections.WriteError(w, r, h.ErrLog, "update section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionUpdated, pid, &sid)
	h.respondWithProgram(ctx, w, r, pid, http.StatusOK)
}

// HandleDeleteSection handles DELETE /api/programs/{id}/sections/{sectionId}.
func (h *Handler) HandleDeleteSection(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	pid, ok := programID(w, r)
	if !ok {
		return
	}
	sid, ok := sectionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete section")
	defer cancel()

	if err := h.Assign.DeleteSection(ctx, pid, sid); err != nil {
		sections.WriteError(w, r, h.ErrLog, "delete section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionDeleted, pid, &sid)
	h.respondWithProgram(ctx, w, r, pid, http.StatusOK)
}
