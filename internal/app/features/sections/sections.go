// internal/app/features/sections/sections.go
package sections

import (
	"context"
	"errors"
	"net/http"
	"slices"

	sharedsections "github.com/dalemusser/facultrack/internal/app/features/shared/sections"
	assignmentservice "github.com/dalemusser/facultrack/internal/app/services/assignment"
	"github.com/dalemusser/facultrack/internal/app/store/audit"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// sectionEntry is a populated section together with the program it
// belongs to.
type sectionEntry struct {
	ProgramID    primitive.ObjectID `json:"program_id"`
	ProgramTitle string             `json:"program_title"`
	programviews.SectionView
}

func entries(views []programviews.ProgramView) []sectionEntry {
	out := []sectionEntry{}
	for _, p := range views {
		for _, s := range p.Sections {
			out = append(out, sectionEntry{ProgramID: p.ID, ProgramTitle: p.Title, SectionView: s})
		}
	}
	return out
}

func sectionID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid section ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadOwner returns the program embedding the section, writing a 404 when
// there is none.
func (h *Handler) loadOwner(ctx context.Context, w http.ResponseWriter, r *http.Request, sid primitive.ObjectID) (models.Program, bool) {
	p, err := programstore.New(h.DB).GetBySectionID(ctx, sid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Message(w, http.StatusNotFound, "Section not found")
		return models.Program{}, false
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "load section failed", err)
		return models.Program{}, false
	}
	return p, true
}

// writeSection reloads the owning program and writes the one section.
func (h *Handler) writeSection(ctx context.Context, w http.ResponseWriter, r *http.Request, pid, sid primitive.ObjectID, status int) {
	p, err := programstore.New(h.DB).GetByID(ctx, pid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "reload program failed", err)
		return
	}
	v, err := programviews.One(ctx, h.DB, p)
	if err != nil {
		h.ErrLog.ServerError(w, r, "populate section failed", err)
		return
	}
	for _, e := range entries([]programviews.ProgramView{v}) {
		if e.ID == sid {
			respond.JSON(w, status, e)
			return
		}
	}
	respond.Message(w, http.StatusNotFound, "Section not found")
}

// ServeList handles GET /api/sections: every section of every program,
// newest first.
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
		h.ErrLog.ServerError(w, r, "populate sections failed", err)
		return
	}
	out := entries(views)
	slices.SortStableFunc(out, func(a, b sectionEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	respond.OK(w, out)
}

// ServeSection handles GET /api/sections/{id}.
func (h *Handler) ServeSection(w http.ResponseWriter, r *http.Request) {
	sid, ok := sectionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, ok := h.loadOwner(ctx, w, r, sid)
	if !ok {
		return
	}
	h.writeSection(ctx, w, r, p.ID, sid, http.StatusOK)
}

type createInput struct {
	ProgramID string `json:"program_id" validate:"required,objectid" label:"Program"`
	sharedsections.Input
}

// HandleCreate handles POST /api/sections.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var body createInput
	if !respond.Decode(w, r, &body) {
		return
	}
	if res := inputval.Validate(body); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}
	in, ok := body.Input.Section(w)
	if !ok {
		return
	}
	pid, _ := primitive.ObjectIDFromHex(body.ProgramID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create section")
	defer cancel()

	sec, err := h.Assign.AddSection(ctx, pid, in)
	if err != nil {
		sharedsections.WriteError(w, r, h.ErrLog, "create section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionCreated, pid, &sec.ID)
	h.writeSection(ctx, w, r, pid, sec.ID, http.StatusCreated)
}

// updateInput changes only the fields that are present. An explicit empty
// student list clears the roster.
type updateInput struct {
	Name       *string  `json:"name" validate:"omitempty,max=200" label:"Section name"`
	FacultyID  *string  `json:"faculty_id" validate:"omitempty,objectid" label:"Faculty"`
	StudentIDs []string `json:"student_ids" validate:"omitempty,max=1000,dive,objectid" label:"Students"`
}

// merge applies the present fields of in over the current section.
func (in updateInput) merge(w http.ResponseWriter, cur models.Section) (assignmentservice.SectionInput, bool) {
	out := assignmentservice.SectionInput{
		Name:       cur.Name,
		FacultyID:  cur.FacultyID,
		StudentIDs: cur.StudentIDs,
	}
	if in.Name != nil {
		out.Name = *in.Name
	}
	if in.FacultyID != nil {
		oid, _ := primitive.ObjectIDFromHex(*in.FacultyID)
		out.FacultyID = &oid
	}
	if in.StudentIDs != nil {
		ids, ok := sharedsections.ObjectIDs(w, in.StudentIDs)
		if !ok {
			return assignmentservice.SectionInput{}, false
		}
		out.StudentIDs = ids
	}
	return out, true
}

// HandleUpdate handles PUT /api/sections/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	sid, ok := sectionID(w, r)
	if !ok {
		return
	}
	var body updateInput
	if !respond.Decode(w, r, &body) {
		return
	}
	if res := inputval.Validate(body); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update section")
	defer cancel()

	p, ok := h.loadOwner(ctx, w, r, sid)
	if !ok {
		return
	}
	cur, _ := p.Section(sid)
	in, ok := body.merge(w, cur)
	if !ok {
		return
	}

	if _, err := h.Assign.UpdateSection(ctx, p.ID, sid, in); err != nil {
		sharedsections.WriteError(w, r, h.ErrLog, "update section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionUpdated, p.ID, &sid)
	h.writeSection(ctx, w, r, p.ID, sid, http.StatusOK)
}

// HandleDelete handles DELETE /api/sections/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	sid, ok := sectionID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete section")
	defer cancel()

	p, ok := h.loadOwner(ctx, w, r, sid)
	if !ok {
		return
	}
	if err := h.Assign.DeleteSection(ctx, p.ID, sid); err != nil {
		sharedsections.WriteError(w, r, h.ErrLog, "delete section failed", err)
		return
	}

	h.AuditLog.ProgramChanged(ctx, r, actorID, audit.EventSectionDeleted, p.ID, &sid)
	respond.Message(w, http.StatusOK, "Section deleted successfully")
}
