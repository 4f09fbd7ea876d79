// Package auth issues and checks bearer tokens and carries the signed-in
// user through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MinSecretLen is the shortest HMAC key accepted outside development.
const MinSecretLen = 32

var (
	// ErrNoToken means the request carried no bearer token.
	ErrNoToken = errors.New("no token")
	// ErrInvalidToken covers bad signatures, expiry and malformed claims.
	ErrInvalidToken = errors.New("token is not valid")
	// ErrUserGone means the token is valid but its user no longer exists.
	ErrUserGone = errors.New("user no longer exists")
)

// SessionUser is what handlers see as the current user.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// ObjectID parses the user id. Returns NilObjectID if malformed.
func (u SessionUser) ObjectID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

// Claims is the JWT payload. Subject holds the user id.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserFetcher re-reads a user on every request so role changes and
// deletions take effect before the token expires.
// It returns (nil, nil) when the user does not exist.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, id primitive.ObjectID) (*SessionUser, error)
}

// Manager signs and verifies tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	users  UserFetcher
	log    *zap.Logger
}

// NewManager builds a Manager. users may be nil, in which case the token
// claims are trusted as-is.
func NewManager(secret string, ttl time.Duration, issuer string, users UserFetcher, logger *zap.Logger) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %v", ttl)
	}
	if len(secret) < MinSecretLen {
		logger.Warn("jwt secret is short; 32+ chars recommended", zap.Int("length", len(secret)))
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		users:  users,
		log:    logger,
	}, nil
}

// Issue signs a token for u.
func (m *Manager) Issue(u SessionUser) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Name: u.Name,
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies raw and returns the user it names.
func (m *Manager) Parse(raw string) (*SessionUser, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := primitive.ObjectIDFromHex(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}
	return &SessionUser{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

// Authenticate parses raw and, when a fetcher is set, reloads the user.
func (m *Manager) Authenticate(ctx context.Context, raw string) (*SessionUser, error) {
	if raw == "" {
		return nil, ErrNoToken
	}
	u, err := m.Parse(raw)
	if err != nil {
		return nil, err
	}
	if m.users == nil {
		return u, nil
	}
	fresh, err := m.users.FetchSessionUser(ctx, u.ObjectID())
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, ErrUserGone
	}
	return fresh, nil
}

// LoadUser puts the bearer token's user into the request context. Requests
// without a usable token pass through anonymous; RequireSignedIn rejects them.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := TokenFromRequest(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		u, err := m.Authenticate(ctx, raw)
		cancel()

		switch {
		case err == nil:
			r = withUser(r, u)
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrUserGone):
			// anonymous
		default:
			respond.ServerError(w, m.log, "auth user lookup failed", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest reads "Authorization: Bearer <t>", falling back to the
// token query parameter used by WebSocket clients.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// RequireSignedIn rejects anonymous requests with 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Message(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous requests with 401 and other roles with 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				respond.Message(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				respond.Message(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTestUser attaches u to the request context. For tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
