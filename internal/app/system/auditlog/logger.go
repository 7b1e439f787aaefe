// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/coconsult/internal/app/store/audit"
	"github.com/dalemusser/coconsult/internal/app/system/network"
	"go.uber.org/zap"
)

// Destination settings.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off"
)

// Config holds audit logging configuration per category.
type Config struct {
	Auth    string // login, registration, logout
	Contact string // inquiries and subscriptions
}

// Logger records audit events to MongoDB and/or zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil, in which case events
// only go to zap.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
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

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryContact:
		setting = l.config.Contact
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}
	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = userID
	e.Email = email
	l.Log(ctx, e)
}

// LoginFailed logs a login the auth service rejected or could not answer.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailed, false)
	e.Email = email
	e.FailureReason = reason
	l.Log(ctx, e)
}

// LoginRateLimited logs an attempt refused because the email is locked out.
func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginRateLimited, false)
	e.Email = email
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}

// LoginLockedOut logs the failure that triggered a lockout.
func (l *Logger) LoginLockedOut(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginLockedOut, false)
	e.Email = email
	e.FailureReason = "too many failed attempts"
	l.Log(ctx, e)
}

// RegisterSuccess logs a new account.
func (l *Logger) RegisterSuccess(ctx context.Context, r *http.Request, userID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventRegisterSuccess, true)
	e.UserID = userID
	e.Email = email
	l.Log(ctx, e)
}

// RegisterFailed logs a registration the auth service refused.
func (l *Logger) RegisterFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventRegisterFailed, false)
	e.Email = email
	e.FailureReason = reason
	l.Log(ctx, e)
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = userID
	e.Email = email
	l.Log(ctx, e)
}

// --- Contact Events ---

// InquirySent logs a delivered contact inquiry.
func (l *Logger) InquirySent(ctx context.Context, r *http.Request, email, reference, provider string) {
	e := fromRequest(r, audit.CategoryContact, audit.EventInquirySent, true)
	e.Email = email
	e.Details = map[string]string{"reference": reference, "provider": provider}
	l.Log(ctx, e)
}

// InquiryFailed logs an inquiry the provider did not accept.
func (l *Logger) InquiryFailed(ctx context.Context, r *http.Request, email, reference, reason string) {
	e := fromRequest(r, audit.CategoryContact, audit.EventInquiryFailed, false)
	e.Email = email
	e.FailureReason = reason
	e.Details = map[string]string{"reference": reference}
	l.Log(ctx, e)
}

// InquiryRejected logs a submission stopped by the anti-spam checks.
func (l *Logger) InquiryRejected(ctx context.Context, r *http.Request, reason string) {
	e := fromRequest(r, audit.CategoryContact, audit.EventInquiryRejected, false)
	e.FailureReason = reason
	l.Log(ctx, e)
}

// Subscribed logs a newsletter sign-up.
func (l *Logger) Subscribed(ctx context.Context, r *http.Request, email string, first bool) {
	e := fromRequest(r, audit.CategoryContact, audit.EventSubscribed, true)
	e.Email = email
	if !first {
		e.Details = map[string]string{"repeat": "true"}
	}
	l.Log(ctx, e)
}
