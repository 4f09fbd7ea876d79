// internal/app/features/admin/handler.go
package admin

import (
	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	"github.com/dalemusser/facultrack/internal/app/services/purge"
	"github.com/dalemusser/facultrack/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin-only user management endpoints.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Purge    *purge.Service
}

// NewHandler constructs an admin feature handler.
func NewHandler(db *mongo.Database, purger *purge.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Purge:    purger,
	}
}
