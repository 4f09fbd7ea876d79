// internal/app/features/programs/programs.go
package programs

import (
	"context"
	"errors"
	"net/http"

	assignmentservice "github.com/dalemusser/facultrack/internal/app/services/assignment"
	"github.com/dalemusser/facultrack/internal/app/store/audit"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func programID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid program ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeList handles GET /api/programs: every program with its sections'
// faculty and students resolved.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := programstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list programs failed", err)
		return
	}
	views, err := programviews.Build(ctx, h.DB, list, programviews.Options{})
	if err != nil {
		h.ErrLog.ServerError(w, r, "populate programs failed", err)
		return
	}
	respond.OK(w, views)
}

// ServeProgram handles GET /api/programs/{id}. Faculty may only open
// programs in which they teach a section.
func (h *Handler) ServeProgram(w http.ResponseWriter, r *http.Request) {
	id, ok := programID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := programstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Program not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load program failed", err)
		return
	}

	if authz.IsFaculty(r) {
		_, _, uid, _ := authz.UserCtx(r)
		teaches := false
		for _, s := range p.Sections {
			if s.IsFaculty(uid) {
				teaches = true
				break
			}
		}
		if !teaches {
			respond.Message(w, http.StatusForbidden, "Access denied")
			return
		}
	}

	h.writeProgram(ctx, w, r, p, http.StatusOK)
}

func (h *Handler) writeProgram(ctx context.Context, w http.ResponseWriter, r *http.Request, p models.Program, status int) {
	v, err := programviews.One(ctx, h.DB, p)
	if err != nil {
		h.ErrLog.ServerError(w, r, "populate program failed", err)
		return
	}
	respond.JSON(w, status, v)
}

type programInput struct {
	Title       string `json:"title" validate:"notblank,max=200" label:"Title"`
	Description string `json:"description" validate:"notblank,max=5000" label:"Description"`
}

func decodeProgram(w http.ResponseWriter, r *http.Request) (programInput, bool) {
	var in programInput
	if !respond.Decode(w, r, &in) {
		return in, false
	}
	in.Description = normalize.Content(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return in, false
	}
	return in, true
}

// HandleCreate handles POST /api/programs.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	in, ok := decodeProgram(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := programstore.New(h.DB).Create(ctx, models.Program{Title: in.Title, Description: in.Description})
	if errors.Is(err, programstore.ErrDuplicateTitle) {
		respond.Message(w, http.StatusConflict, "A program with this title already exists")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "create program failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventProgramCreated, p.ID, nil)
	h.writeProgram(ctx, w, r, p, http.StatusCreated)
}

// HandleUpdate handles PUT /api/programs/{id}: title and description.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, ok := programID(w, r)
	if !ok {
		return
	}
	in, ok := decodeProgram(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := programstore.New(h.DB).UpdateInfo(ctx, id, in.Title, in.Description)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		respond.Message(w, http.StatusNotFound, "Program not found")
		return
	case errors.Is(err, programstore.ErrDuplicateTitle):
		respond.Message(w, http.StatusConflict, "A program with this title already exists")
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, "update program failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventProgramUpdated, p.ID, nil)
	h.writeProgram(ctx, w, r, p, http.StatusOK)
}

// HandleDelete handles DELETE /api/programs/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, ok := programID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete program")
	defer cancel()

	if err := h.Assign.DeleteProgram(ctx, id); err != nil {
		if errors.Is(err, assignmentservice.ErrProgramNotFound) {
			respond.Message(w, http.StatusNotFound, "Program not found")
			return
		}
		h.ErrLog.ServerError(w, r, "delete program failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventProgramDeleted, id, nil)
	respond.OK(w, map[string]string{"message": "Program deleted successfully"})
}
