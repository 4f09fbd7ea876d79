// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/facultrack/internal/app/store/audit"
	"github.com/dalemusser/facultrack/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration per category.
type Config struct {
	// Auth covers login attempts.
	Auth string
	// Admin covers user, program and section changes.
	Admin string
}

// ValidMode reports whether s is a recognized destination.
func ValidMode(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Logger records audit events to the audit store and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op so handlers built in tests can omit it.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = ModeAll
	}
	setting = strings.ToLower(strings.TrimSpace(setting))

	if setting == "" || setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedUserNotFound logs a login for an unknown email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	ev.FailureReason = "user not found"
	ev.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, ev)
}

// LoginFailedWrongPassword logs a login with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	ev.UserID = &userID
	ev.FailureReason = "wrong password"
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailedRateLimit logs a throttled login.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	ev.FailureReason = "rate limit exceeded"
	ev.Details = map[string]string{"attempted_email": email}
	l.Log(ctx, ev)
}

// --- Admin Events ---

// Admin logs a successful admin action by actorID. target may be nil.
func (l *Logger) Admin(ctx context.Context, r *http.Request, actorID primitive.ObjectID, eventType string, target *primitive.ObjectID, details map[string]string) {
	ev := requestEvent(r, audit.CategoryAdmin, eventType, true)
	ev.ActorID = &actorID
	ev.UserID = target
	ev.Details = details
	l.Log(ctx, ev)
}

// UserCreated logs the creation of a user account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, role, email string) {
	l.Admin(ctx, r, actorID, audit.EventUserCreated, &userID, map[string]string{
		"role":  role,
		"email": email,
	})
}

// UserUpdated logs changed fields of a user account.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, fields []string) {
	l.Admin(ctx, r, actorID, audit.EventUserUpdated, &userID, map[string]string{
		"fields": strings.Join(fields, ","),
	})
}

// UserDeleted logs the deletion of a user account.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, userID primitive.ObjectID, email string) {
	l.Admin(ctx, r, actorID, audit.EventUserDeleted, &userID, map[string]string{"email": email})
}

// ProgramChanged logs a program or section change. sectionID may be nil.
func (l *Logger) ProgramChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, eventType string, programID primitive.ObjectID, sectionID *primitive.ObjectID) {
	details := map[string]string{"program_id": programID.Hex()}
	if sectionID != nil {
		details["section_id"] = sectionID.Hex()
	}
	l.Admin(ctx, r, actorID, eventType, nil, details)
}
