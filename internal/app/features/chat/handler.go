// internal/app/features/chat/handler.go
package chat

import (
	"net/http"

	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	chatservice "github.com/dalemusser/facultrack/internal/app/services/chat"
	"go.uber.org/zap"
)

// Handler serves /api/chat. Hub upgrades /ws requests; it may be nil, in
// which case the route answers 404.
type Handler struct {
	Chat   *chatservice.Service
	Hub    http.Handler
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *chatservice.Service, hub http.Handler, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Chat:   svc,
		Hub:    hub,
		Log:    logger,
		ErrLog: errLog,
	}
}
