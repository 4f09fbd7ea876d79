// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// msgInvalidCredentials is returned for unknown emails and wrong passwords
// alike.
const msgInvalidCredentials = "Invalid credentials"

type loginInput struct {
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,max=72" label:"Password"`
}

type loginResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// HandleLogin handles POST /api/auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if !respond.Decode(w, r, &in) {
		return
	}
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, in.Email)
			respond.Message(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	u, err := userstore.New(h.DB).GetByEmail(ctx, in.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, in.Email)
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "login lookup failed", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, in.Email)
		respond.Message(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, exp, err := h.Auth.Issue(auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
	if err != nil {
		h.ErrLog.ServerError(w, r, "sign token failed", err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.Succeeded(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)

	respond.OK(w, loginResponse{User: u, Token: token, ExpiresAt: exp})
}
