// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/services/purge"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/paging"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

// ServeUsers handles GET /api/admin/users?role=&q=&after=&before=.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(query.Get(r, "role"))
	if role != "" && !models.IsValidRole(role) {
		respond.Message(w, http.StatusBadRequest, "Unknown role")
		return
	}
	before, after := paging.Params(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, res, err := userstore.New(h.DB).ListPage(ctx, userstore.ListFilter{
		Role:  role,
		Query: normalize.QueryParam(query.Get(r, "q")),
	}, before, after)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list users failed", err)
		return
	}

	respond.OK(w, paging.NewPage(rows, res,
		func(u models.User) string { return u.NameCI },
		func(u models.User) primitive.ObjectID { return u.ID },
	))
}

type createInput struct {
	Name     string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
}

// HandleCreateStudent handles POST /api/admin/students.
func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.RoleStudent)
}

// HandleCreateFaculty handles POST /api/admin/faculty.
func (h *Handler) HandleCreateFaculty(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.RoleFaculty)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, role string) {
	_, _, actorID, _ := authz.UserCtx(r)

	var in createInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.ServerError(w, r, "hash password failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Message(w, http.StatusConflict, "User already exists")
		return
	case errors.Is(err, userstore.ErrRosterIDExhausted):
		h.ErrLog.ServerError(w, r, "roster id generation exhausted", err, zap.String("role", role))
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, "create user failed", err, zap.String("role", role))
		return
	}

	h.AuditLog.UserCreated(ctx, r, actorID, u.ID, u.Role, u.Email)
	respond.Created(w, u)
}

type patchInput struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=200" label:"Name"`
	Email    *string `json:"email" validate:"omitempty,email,max=254" label:"Email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72" label:"Password"`
	Role     *string `json:"role" validate:"omitempty,role" label:"Role"`
}

// HandlePatch handles PATCH /api/admin/users/{id}. Changing the role resets
// the profile to the new role's default and issues a new roster id.
func (h *Handler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var in patchInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if in.Role != nil {
		role := normalize.Role(*in.Role)
		in.Role = &role
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}
	if id == actorID && in.Role != nil && *in.Role != models.RoleAdmin {
		respond.Message(w, http.StatusBadRequest, "You cannot change your own role")
		return
	}

	upd := userstore.Update{Name: in.Name, Email: in.Email, Role: in.Role}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			h.ErrLog.ServerError(w, r, "hash password failed", err)
			return
		}
		s := string(hash)
		upd.PasswordHash = &s
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).Update(ctx, id, upd)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Message(w, http.StatusConflict, "Email already in use")
		return
	case errors.Is(err, userstore.ErrBadRole):
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, "update user failed", err)
		return
	}

	h.AuditLog.UserUpdated(ctx, r, actorID, id, upd.Fields())
	respond.OK(w, u)
}

// HandleDelete handles DELETE /api/admin/users/{id}: the user is removed
// along with its section memberships, chats and concerns.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if id == actorID {
		respond.Message(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete user")
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

	res, err := h.Purge.User(ctx, id)
	if errors.Is(err, purge.ErrUserNotFound) {
		respond.Message(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "delete user failed", err, zap.String("target_id", id.Hex()))
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actorID, id, u.Email)
	respond.OK(w, map[string]any{
		"message": "User deleted successfully",
		"result":  res,
	})
}
