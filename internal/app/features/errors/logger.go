// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/requestid"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"go.uber.org/zap"
)

// ErrorLogger logs server errors with request context and writes the
// generic 500 body.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// ServerError logs err with the method, path, request id and caller, then
// responds 500.
func (el *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, what string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		requestid.Field(r),
	)
	if _, _, uid, ok := authz.UserCtx(r); ok {
		fields = append(fields, zap.String("user_id", uid.Hex()))
	}
	respond.ServerError(w, el.Log, what, err, fields...)
}
