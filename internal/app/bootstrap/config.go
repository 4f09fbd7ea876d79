// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/auditlog"
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/app/system/chathub"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FacultTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: FACULTRACK_MONGO_URI, FACULTRACK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "facultrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC key for bearer tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 30m)"},
	{Name: "jwt_issuer", Default: "facultrack", Desc: "Bearer token issuer claim"},

	// Bootstrap admin
	{Name: "admin_email", Default: "admin@example.com", Desc: "Email of the bootstrap admin"},
	{Name: "admin_name", Default: "Admin User", Desc: "Name of the bootstrap admin"},
	{Name: "admin_password", Default: "", Desc: "Password of the bootstrap admin (blank skips creation)"},

	// Assignments
	{Name: "assignment_cascade", Default: true, Desc: "Retract assigned_programs when sections, programs or members are removed"},

	// Login throttling
	{Name: "login_rate_limit", Default: 10, Desc: "Login attempts allowed per IP and per email in each window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Login rate limit window"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Background work
	{Name: "orphan_cleanup_interval", Default: "1h", Desc: "Period of the invalid-user sweep (0 disables)"},

	// WebSocket
	{Name: "ws_origin_patterns", Default: "", Desc: "Comma-separated origins accepted by /api/chat/ws"},

	// Request deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and single-collection writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for writes spanning collections"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// FACULTRACK_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FACULTRACK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),
		JWTIssuer: appValues.String("jwt_issuer"),

		AdminEmail:    appValues.String("admin_email"),
		AdminName:     appValues.String("admin_name"),
		AdminPassword: appValues.String("admin_password"),

		AssignmentCascade: appValues.Bool("assignment_cascade"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		OrphanCleanupInterval: appValues.Duration("orphan_cleanup_interval", time.Hour),

		WSOriginPatterns: chathub.ParseOrigins(appValues.String("ws_origin_patterns")),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The Mongo URI is checked everywhere; token settings are only enforced
// in prod so local runs work with the defaults.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	for name, mode := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		if !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s must be all, db, log or off, got %q", name, mode)
		}
	}

	if appCfg.LoginRateLimit < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if len(appCfg.JWTSecret) < auth.MinSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d characters in prod", auth.MinSecretLen)
		}
		if appCfg.JWTTTL <= 0 {
			return fmt.Errorf("jwt_ttl must be positive")
		}
	}

	return nil
}
