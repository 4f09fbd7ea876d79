// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework settings (ports, TLS, log level, CORS, body limits); everything
// specific to FacultTrack lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HMAC key; must be 32+ chars in production
	JWTTTL    time.Duration // token lifetime
	JWTIssuer string        // iss claim

	// Bootstrap admin. Created at startup only when AdminPassword is set.
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// AssignmentCascade retracts assigned_programs entries when sections,
	// programs or section members are removed.
	AssignmentCascade bool

	// Login throttling
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit logging destinations: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// OrphanCleanupInterval is the period of the invalid-user sweep; 0 disables it.
	OrphanCleanupInterval time.Duration

	// WSOriginPatterns lists origins accepted by the WebSocket endpoint.
	WSOriginPatterns []string

	// Request deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
