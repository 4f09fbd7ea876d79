// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/facultrack/internal/app/services/purge"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/chathub"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/ratelimit"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/dalemusser/facultrack/internal/app/system/workers"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Background holds the long-running pieces started in Startup.
type Background struct {
	Hub     *chathub.Hub
	Limiter *ratelimit.LoginLimiter
	Cleanup *workers.OrphanCleanup

	stopHub context.CancelFunc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	cur := timeouts.Current()
	logger.Info("request timeouts configured",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	db := deps.FacultrackMongoDatabase
	if err := ensureAdmin(ctx, db, appCfg, logger); err != nil {
		return err
	}

	bg := deps.Background
	if bg == nil {
		return errors.New("startup: background holder is nil")
	}

	hubCtx, cancel := context.WithCancel(context.Background())
	bg.Hub = chathub.New(appCfg.WSOriginPatterns, logger)
	bg.stopHub = cancel
	go bg.Hub.Run(hubCtx)

	if appCfg.LoginRateLimit > 0 {
		bg.Limiter = ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	}

	if appCfg.OrphanCleanupInterval > 0 {
		bg.Cleanup = workers.NewOrphanCleanup(purge.New(db, logger), logger, appCfg.OrphanCleanupInterval, timeouts.Long())
		bg.Cleanup.Start()
	}

	return nil
}

// ensureAdmin creates the bootstrap admin when a password is configured and
// no user holds the email yet. An existing user is left unchanged.
func ensureAdmin(ctx context.Context, db *mongo.Database, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminPassword == "" {
		logger.Debug("bootstrap admin skipped: no admin_password")
		return nil
	}
	email := normalize.Email(appCfg.AdminEmail)
	if email == "" {
		return errors.New("admin_email is required when admin_password is set")
	}

	store := userstore.New(db)
	existing, err := store.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			logger.Warn("bootstrap admin email belongs to a non-admin user",
				zap.String("email", email), zap.String("role", existing.Role))
		}
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(appCfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}
	u, err := store.Create(ctx, models.User{
		Name:         appCfg.AdminName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}

	logger.Info("bootstrap admin created", zap.String("user_id", u.ID.Hex()), zap.String("email", u.Email))
	return nil
}
