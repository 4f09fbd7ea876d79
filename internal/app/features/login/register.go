// internal/app/features/login/register.go
package login

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
	"golang.org/x/crypto/bcrypt"
)

type registerInput struct {
	Name     string `json:"name" validate:"notblank,max=200" label:"Name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=72" label:"Password"`
	Role     string `json:"role" validate:"required,role" label:"Role"`
}

// HandleRegister handles POST /api/auth/register (admin only). The new user
// gets the default profile for its role and, for students and faculty, a
// generated roster id.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var in registerInput
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
		Role:         in.Role,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Message(w, http.StatusConflict, "User already exists")
		return
	case errors.Is(err, userstore.ErrBadRole):
		respond.Message(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.ErrLog.ServerError(w, r, "register user failed", err)
		return
	}

	h.AuditLog.UserCreated(ctx, r, actorID, u.ID, u.Role, u.Email)
	respond.Created(w, map[string]any{"user": u})
}
