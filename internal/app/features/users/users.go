// internal/app/features/users/users.go
package users

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeList handles GET /api/users: every user's public identity.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := userstore.New(h.DB).ListByRole(ctx, "")
	if err != nil {
		h.ErrLog.ServerError(w, r, "list users failed", err)
		return
	}
	out := make([]models.UserSummary, len(list))
	for i, u := range list {
		out[i] = u.Summary()
	}
	respond.OK(w, out)
}

// ServeUser handles GET /api/users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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
	respond.OK(w, u.Summary())
}

type updateInput struct {
	Name  *string `json:"name" validate:"omitempty,notblank,max=200" label:"Name"`
	Email *string `json:"email" validate:"omitempty,email,max=254" label:"Email"`
}

// HandleUpdate handles PUT /api/users/{id}: name and email, by an admin or
// the user themselves.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if !authz.IsSelfOrAdmin(r, id) {
		respond.Message(w, http.StatusForbidden, "Access denied")
		return
	}

	var in updateInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := userstore.New(h.DB)
	if in.Email != nil {
		taken, err := store.EmailExistsForOther(ctx, *in.Email, id)
		if err != nil {
			h.ErrLog.ServerError(w, r, "email check failed", err)
			return
		}
		if taken {
			respond.Message(w, http.StatusConflict, "Email already in use")
			return
		}
	}

	upd := userstore.Update{Name: in.Name, Email: in.Email}
	u, err := store.Update(ctx, id, upd)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Message(w, http.StatusConflict, "Email already in use")
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, "update user failed", err)
		return
	}

	if fields := upd.Fields(); len(fields) > 0 {
		h.AuditLog.UserUpdated(ctx, r, actorID, id, fields)
	}
	respond.OK(w, u.Summary())
}
