// Package requestid tags every request with an id that is echoed in the
// X-Request-ID response header and attached to server-error logs.
package requestid

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header is the request/response header carrying the id.
const Header = "X-Request-ID"

// maxInbound bounds ids accepted from upstream proxies.
const maxInbound = 128

type ctxKey struct{}

// Middleware reuses a sane inbound X-Request-ID or mints a uuid.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > maxInbound {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// FromContext returns the id, or "" outside Middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Field is the zap field for r's id.
func Field(r *http.Request) zap.Field {
	return zap.String("request_id", FromContext(r.Context()))
}
