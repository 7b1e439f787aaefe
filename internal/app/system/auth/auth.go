// Package auth manages the signed session cookie that carries the remote
// auth service's bearer token and the signed-in user's identity.
package auth

import (
	"context"
	"encoding/gob"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultSessionName is used when no cookie name is configured.
const DefaultSessionName = "coconsult-session"

// minKeyLen is the shortest session key accepted in secure mode.
const minKeyLen = 32

// Session value keys.
const (
	identityKey   = "identity"
	expandedKey   = "expanded_folders"
	expandInitKey = "expanded_init"
)

func init() {
	gob.Register(SessionUser{})
}

// SessionConfigError is returned when the session settings are unusable.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// SessionManager owns the cookie store sessions are read from and written to.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// NewSessionManager creates a SessionManager for cookies called name
// (DefaultSessionName when empty), scoped to domain and valid for maxAge.
// With secure set, cookies are HTTPS-only and a weak sessionKey is refused;
// otherwise a weak key is only logged.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, &SessionConfigError{Message: "session key is empty"}
	}
	if weak, reason := weakKey(sessionKey); weak {
		if secure {
			return nil, &SessionConfigError{Message: "session key rejected: " + reason}
		}
		logger.Warn("weak session key; not usable with secure cookies", zap.String("reason", reason))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Signed timestamps expire with the cookie.
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session manager ready",
		zap.String("name", name),
		zap.String("domain", domain),
		zap.Bool("secure", secure),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// weakKeyMarkers are substrings of the placeholder keys found in sample
// configs.
var weakKeyMarkers = []string{
	"dev-only", "change-me", "changeme", "placeholder", "default",
	"example", "insecure", "test-key", "secret123", "password",
}

func weakKey(key string) (bool, string) {
	if len(key) < minKeyLen {
		return true, "shorter than 32 characters"
	}
	lower := strings.ToLower(key)
	for _, m := range weakKeyMarkers {
		if strings.Contains(lower, m) {
			return true, "looks like a placeholder"
		}
	}
	return false, ""
}

// SessionName returns the session cookie name.
func (sm *SessionManager) SessionName() string {
	return sm.name
}

// GetSession returns the session for r. A cookie that fails to decode is
// replaced with a fresh session, so the result is never nil.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SessionUser is the signed-in user as reported by the remote auth service.
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Token string // bearer token for the remote file service
}

// DisplayName returns Name, falling back to Email.
func (u *SessionUser) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

type ctxKey struct{}

// CurrentUser returns the signed-in user of r, if any.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(ctxKey{}).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, u))
}

// WithTestUser puts u on r without a session cookie.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// LoadSessionUser is middleware that puts the session's user, if it has one
// with a token, on the request context.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.logSessionError(r, err)
		}
		if u, ok := sess.Values[identityKey].(SessionUser); ok && u.Token != "" {
			r = withUser(r, &u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn is middleware for pages that need a user. Browsers are
// sent to /login with a return URL; other callers get 401.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		if wantsHTML(r) {
			http.Redirect(w, r, "/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// CreateSession signs u in. UI state from an earlier session is kept.
func (sm *SessionManager) CreateSession(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		sess, _ = sm.store.New(r, sm.name)
	}
	sess.Values[identityKey] = u
	return sess.Save(r, w)
}

// DestroySession clears the session and expires its cookie.
func (sm *SessionManager) DestroySession(w http.ResponseWriter, r *http.Request) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		return
	}
	clear(sess.Values)
	sess.Options.MaxAge = -1
	_ = sess.Save(r, w)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// sessionFault describes a cookie that could not be read.
type sessionFault struct {
	category string
	level    zapcore.Level
}

// decodeFaults maps securecookie decode messages to how they are logged.
// Tampering is the only one worth a warning.
var decodeFaults = []struct {
	substr string
	fault  sessionFault
}{
	{"expired timestamp", sessionFault{"expired", zapcore.DebugLevel}},
	{"timestamp too new", sessionFault{"clock_skew", zapcore.InfoLevel}},
	{"not valid", sessionFault{"mac_invalid", zapcore.WarnLevel}},
	{"mac", sessionFault{"mac_invalid", zapcore.WarnLevel}},
	{"hash", sessionFault{"mac_invalid", zapcore.WarnLevel}},
	{"decrypt", sessionFault{"decrypt_failed", zapcore.InfoLevel}},
	{"base64", sessionFault{"decode_failed", zapcore.InfoLevel}},
	{"decode", sessionFault{"decode_failed", zapcore.InfoLevel}},
}

func classifySessionError(err error) sessionFault {
	scErr, ok := err.(securecookie.Error)
	if !ok || !scErr.IsDecode() {
		return sessionFault{"backend", zapcore.ErrorLevel}
	}
	msg := strings.ToLower(err.Error())
	for _, d := range decodeFaults {
		if strings.Contains(msg, d.substr) {
			return d.fault
		}
	}
	return sessionFault{"decode_other", zapcore.InfoLevel}
}

func (sm *SessionManager) logSessionError(r *http.Request, err error) {
	f := classifySessionError(err)
	fields := []zap.Field{zap.String("category", f.category), zap.String("path", r.URL.Path)}
	if f.level >= zapcore.WarnLevel {
		fields = append(fields,
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("user_agent", r.UserAgent()))
	}
	sm.logger.Log(f.level, "unreadable session cookie, starting a new session", fields...)
}
