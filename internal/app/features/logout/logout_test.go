package logout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager(
		"test-session-key-for-testing-1234567890",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	// auditLogger can be nil - it's nil-safe
	return NewHandler(sessionMgr, nil, logger), sessionMgr
}

// signedIn returns a request carrying a real session cookie for u.
func signedIn(t *testing.T, sm *auth.SessionManager, u auth.SessionUser) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sm.CreateSession(rec, httptest.NewRequest(http.MethodGet, "/", nil), u); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return auth.WithTestUser(req, &u)
}

func TestLogout_RedirectsToRoot(t *testing.T) {
	h, sm := newTestHandler(t)
	req := signedIn(t, sm, auth.SessionUser{ID: "u1", Email: "pat@example.com", Token: "tok"})
	rec := httptest.NewRecorder()

	Routes(h).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	h, sm := newTestHandler(t)
	req := signedIn(t, sm, auth.SessionUser{ID: "u1", Email: "pat@example.com", Token: "tok"})
	rec := httptest.NewRecorder()

	h.handleLogout(rec, req)

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == sm.SessionName() && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be expired")
	}
}

func TestLogout_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()

	h.handleLogout(rec, testutil.NewRequest(http.MethodPost, "/logout"))

	rec.AssertRedirect(t, "/")
}

func TestLogout_GetNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	Routes(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
