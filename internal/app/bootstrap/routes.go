// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/dalemusser/facultrack/internal/app/features/admin"
	assignmentsfeature "github.com/dalemusser/facultrack/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/facultrack/internal/app/features/auditlog"
	chatfeature "github.com/dalemusser/facultrack/internal/app/features/chat"
	concernsfeature "github.com/dalemusser/facultrack/internal/app/features/concerns"
	errorsfeature "github.com/dalemusser/facultrack/internal/app/features/errors"
	facultyfeature "github.com/dalemusser/facultrack/internal/app/features/faculty"
	healthfeature "github.com/dalemusser/facultrack/internal/app/features/health"
	loginfeature "github.com/dalemusser/facultrack/internal/app/features/login"
	programsfeature "github.com/dalemusser/facultrack/internal/app/features/programs"
	sectionsfeature "github.com/dalemusser/facultrack/internal/app/features/sections"
	studentfeature "github.com/dalemusser/facultrack/internal/app/features/student"
	usersfeature "github.com/dalemusser/facultrack/internal/app/features/users"
	assignmentservice "github.com/dalemusser/facultrack/internal/app/services/assignment"
	chatservice "github.com/dalemusser/facultrack/internal/app/services/chat"
	"github.com/dalemusser/facultrack/internal/app/services/purge"
	"github.com/dalemusser/facultrack/internal/app/store/audit"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/auditlog"
	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"github.com/dalemusser/facultrack/internal/app/system/ratelimit"
	"github.com/dalemusser/facultrack/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every API route sits under /api; the token
// middleware runs for all of them and feature routers decide which roles
// may enter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.FacultrackMongoDatabase

	// The fetcher reloads the user on each request so deletions and role
	// changes take effect before the token expires.
	tokens, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTTTL, appCfg.JWTIssuer, userstore.NewFetcher(db), logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	var (
		limiter  *ratelimit.LoginLimiter
		notifier chatservice.Notifier
		wsHub    http.Handler
	)
	if bg := deps.Background; bg != nil {
		limiter = bg.Limiter
		if bg.Hub != nil {
			notifier = bg.Hub
			wsHub = bg.Hub
		}
	}

	assign := assignmentservice.New(db, appCfg.AssignmentCascade, logger)
	chats := chatservice.New(db, notifier, logger)
	purger := purge.New(db, logger)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)

	// Loads the bearer token's user into context when present.
	r.Use(tokens.LoadUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.FacultrackMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Authentication
		loginHandler := loginfeature.NewHandler(db, tokens, limiter, auditLogger, errLog, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		usersHandler := usersfeature.NewHandler(db, errLog, auditLogger, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		// Administration
		auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
		api.Mount("/admin/audit", auditlogfeature.Routes(auditHandler))

		adminHandler := adminfeature.NewHandler(db, purger, errLog, auditLogger, logger)
		api.Mount("/admin", adminfeature.Routes(adminHandler))

		// Programs and sections
		programsHandler := programsfeature.NewHandler(db, assign, errLog, auditLogger, logger)
		api.Mount("/programs", programsfeature.Routes(programsHandler))

		sectionsHandler := sectionsfeature.NewHandler(db, assign, errLog, auditLogger, logger)
		api.Mount("/sections", sectionsfeature.Routes(sectionsHandler))

		assignHandler := assignmentsfeature.NewHandler(db, assign, errLog, auditLogger, logger)
		api.Mount("/program-assignments", assignmentsfeature.Routes(assignHandler))

		// Chat (REST + WebSocket)
		chatHandler := chatfeature.NewHandler(chats, wsHub, errLog, logger)
		api.Mount("/chat", chatfeature.Routes(chatHandler))

		// Self-service
		facultyHandler := facultyfeature.NewHandler(db, errLog, auditLogger, logger)
		api.Mount("/faculty", facultyfeature.Routes(facultyHandler))

		studentHandler := studentfeature.NewHandler(db, errLog, auditLogger, logger)
		api.Mount("/student", studentfeature.Routes(studentHandler))

		concernsHandler := concernsfeature.NewHandler(db, errLog, logger)
		api.Mount("/concerns", concernsfeature.Routes(concernsHandler))
	})

	return r, nil
}
