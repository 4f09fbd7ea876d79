// internal/app/system/limits/limits.go
package limits

// Request body size limits. Bodies past these are rejected before decoding.
const (
	// MaxJSONBody caps any JSON request body.
	MaxJSONBody = 1 << 20 // 1 MB
)
