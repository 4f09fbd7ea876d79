// internal/app/features/programs/handler.go
package programs

import (
	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	assignmentservice "github.com/dalemusser/facultrack/internal/app/services/assignment"
	"github.com/dalemusser/facultrack/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /api/programs and its section endpoints.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Assign   *assignmentservice.Service
}

// NewHandler constructs a programs feature handler.
func NewHandler(db *mongo.Database, assign *assignmentservice.Service, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
		Assign:   assign,
	}
}
