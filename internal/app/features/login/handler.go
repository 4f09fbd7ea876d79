// internal/app/features/login/handler.go
package login

import (
	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	"github.com/dalemusser/facultrack/internal/app/system/auditlog"
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the /api/auth endpoints.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Auth     *auth.Manager
	Limiter  *ratelimit.LoginLimiter // nil disables rate limiting
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
}

// NewHandler constructs the auth feature handler.
func NewHandler(db *mongo.Database, mgr *auth.Manager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Auth:     mgr,
		Limiter:  limiter,
		AuditLog: audit,
		ErrLog:   errLog,
	}
}
