package profile

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/testutil"
	"go.uber.org/zap"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Pat Doe", "PD"},
		{"Pat", "P"},
		{"  Ana  María López ", "AM"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := initials(tt.name); got != tt.want {
			t.Errorf("initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("this-is-a-32-character-long-key!", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return sm
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	sm := newSessionManager(t)
	h := NewHandler(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	Routes(h, sm).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?return=") {
		t.Errorf("Location = %q, want /login?return=...", loc)
	}
}

func TestShowProfile_RendersSessionIdentity(t *testing.T) {
	testutil.MustBootTemplates(t)
	sm := newSessionManager(t)
	h := NewHandler(zap.NewNop())

	user := testutil.SignedInUser()
	user.Name = "Pat Doe"
	user.Email = "pat@example.com"
	req := testutil.NewAuthenticatedRequestWithCSRF(http.MethodGet, "/", user)
	rec := testutil.NewRecorder()
	Routes(h, sm).ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Pat Doe")
	rec.AssertContains(t, "pat@example.com")
	rec.AssertContains(t, ">PD<")
}

func TestShowProfile_FallsBackToEmail(t *testing.T) {
	testutil.MustBootTemplates(t)
	sm := newSessionManager(t)
	h := NewHandler(zap.NewNop())

	user := testutil.SignedInUser()
	user.Name = ""
	req := testutil.WithCSRFToken(testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), user))
	rec := testutil.NewRecorder()
	Routes(h, sm).ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, user.Email)
}
