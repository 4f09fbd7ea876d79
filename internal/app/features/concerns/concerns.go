// internal/app/features/concerns/concerns.go
package concerns

import (
	"context"
	"errors"
	"net/http"

	concernstore "github.com/dalemusser/facultrack/internal/app/store/concerns"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// loadSection writes 404 and returns false when the program or section is
// missing.
func (h *Handler) loadSection(ctx context.Context, w http.ResponseWriter, r *http.Request, pid, sid primitive.ObjectID) (models.Section, bool) {
	p, err := programstore.New(h.DB).GetByID(ctx, pid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Program not found")
		return models.Section{}, false
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load program failed", err)
		return models.Section{}, false
	}
	s, ok := p.Section(sid)
	if !ok {
		respond.Message(w, http.StatusNotFound, "Section not found")
		return models.Section{}, false
	}
	return s, true
}

type concernInput struct {
	ProgramID   string `json:"program_id" validate:"required,objectid" label:"Program"`
	SectionID   string `json:"section_id" validate:"required,objectid" label:"Section"`
	Title       string `json:"title" validate:"notblank,max=200" label:"Title"`
	Description string `json:"description" validate:"notblank,max=5000" label:"Description"`
}

// HandleCreate handles POST /api/concerns. Only students of the section may
// raise a concern in it.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, name, uid, _ := authz.UserCtx(r)

	var in concernInput
	if !respond.Decode(w, r, &in) {
		return
	}
	in.Title = normalize.Title(in.Title)
	in.Description = normalize.Content(in.Description)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}
	pid, _ := primitive.ObjectIDFromHex(in.ProgramID)
	sid, _ := primitive.ObjectIDFromHex(in.SectionID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sec, ok := h.loadSection(ctx, w, r, pid, sid)
	if !ok {
		return
	}
	if !sec.HasStudent(uid) {
		respond.Message(w, http.StatusForbidden, "You are not a student in this section")
		return
	}

	c, err := concernstore.New(h.DB).Create(ctx, models.Concern{
		ProgramID:   pid,
		SectionID:   sid,
		SectionName: sec.Name,
		Title:       in.Title,
		Description: in.Description,
		StudentID:   uid,
		StudentName: name,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "create concern failed", err)
		return
	}

	h.Log.Info("concern raised",
		zap.String("concern_id", c.ID.Hex()),
		zap.String("section_id", sid.Hex()),
		zap.String("student_id", uid.Hex()))
	respond.Created(w, c)
}

// ServeList handles GET /api/concerns/{programId}/{sectionId}, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "programId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid program ID")
		return
	}
	sid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "sectionId"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid section ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sec, ok := h.loadSection(ctx, w, r, pid, sid)
	if !ok {
		return
	}
	if !authz.CanViewSection(r, sec) {
		respond.Message(w, http.StatusForbidden, "Access denied")
		return
	}

	list, err := concernstore.New(h.DB).ListForSection(ctx, pid, sid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list concerns failed", err)
		return
	}
	respond.OK(w, list)
}
