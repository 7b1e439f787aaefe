package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testKey = "this-is-a-32-character-long-key!"

func newTestManager(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(testKey, "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return sm
}

// nextRequest builds a request that carries the cookies set on rec.
func nextRequest(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager(t *testing.T) {
	tests := []struct {
		name       string
		sessionKey string
		secure     bool
		wantErr    bool
	}{
		{"valid key dev mode", testKey, false, false},
		{"valid key prod mode", testKey, true, false},
		{"empty key", "", false, true},
		{"weak key dev mode", "short", false, false},
		{"weak key prod mode", "short", true, true},
		{"default key prod mode", "dev-only-session-key-not-for-production", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, err := NewSessionManager(tt.sessionKey, "test-session", "", time.Hour, tt.secure, zap.NewNop())
			if tt.wantErr {
				if err == nil {
					t.Error("NewSessionManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewSessionManager() error = %v", err)
			}
			if sm == nil {
				t.Error("NewSessionManager() returned nil")
			}
		})
	}
}

func TestSessionManager_SessionName(t *testing.T) {
	sm := newTestManager(t)
	if sm.SessionName() != DefaultSessionName {
		t.Errorf("SessionName() = %q, want %q", sm.SessionName(), DefaultSessionName)
	}

	sm2, _ := NewSessionManager(testKey, "custom-session", "", time.Hour, false, zap.NewNop())
	if sm2.SessionName() != "custom-session" {
		t.Errorf("SessionName() = %q, want %q", sm2.SessionName(), "custom-session")
	}
}

func TestCreateSession_LoadSessionUser(t *testing.T) {
	sm := newTestManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	err := sm.CreateSession(rec, req, SessionUser{ID: "u-1", Name: "Jane Doe", Email: "jane@example.com", Token: "tok-123"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), nextRequest(rec, "GET", "/filemanager"))

	if got == nil {
		t.Fatal("LoadSessionUser() did not inject the user")
	}
	want := SessionUser{ID: "u-1", Name: "Jane Doe", Email: "jane@example.com", Token: "tok-123"}
	if *got != want {
		t.Errorf("CurrentUser() = %+v, want %+v", *got, want)
	}
}

func TestLoadSessionUser_Anonymous(t *testing.T) {
	sm := newTestManager(t)

	called := false
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := CurrentUser(r); ok {
			t.Error("anonymous request should have no user")
		}
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionName, Value: "garbage"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Error("next handler not called")
	}
}

func TestDestroySession(t *testing.T) {
	sm := newTestManager(t)

	rec := httptest.NewRecorder()
	_ = sm.CreateSession(rec, httptest.NewRequest("POST", "/login", nil), SessionUser{ID: "u-1", Token: "tok"})

	out := httptest.NewRecorder()
	sm.DestroySession(out, nextRequest(rec, "POST", "/logout"))

	var user *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ = CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), nextRequest(out, "GET", "/"))
	if user != nil {
		t.Errorf("user after DestroySession = %+v, want none", user)
	}
}

func TestRequireSignedIn(t *testing.T) {
	sm := newTestManager(t)

	called := false
	protected := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("unauthenticated HTML", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/starred?q=plan", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if called {
			t.Error("Handler should not be called for unauthenticated request")
		}
		if rec.Code != http.StatusSeeOther {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); loc != "/login?return=%2Fstarred%3Fq%3Dplan" {
			t.Errorf("Location = %q", loc)
		}
	})

	t.Run("unauthenticated API", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("GET", "/filemanager/events", nil)
		req.Header.Set("Accept", "text/event-stream")
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if called {
			t.Error("Handler should not be called for unauthenticated request")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		called = false
		req := WithTestUser(httptest.NewRequest("GET", "/filemanager", nil), &SessionUser{ID: "u-1", Token: "tok"})
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)

		if !called {
			t.Error("Handler should be called for authenticated request")
		}
	})
}

func TestSessionUser_DisplayName(t *testing.T) {
	if got := (&SessionUser{Name: "Jane", Email: "j@example.com"}).DisplayName(); got != "Jane" {
		t.Errorf("DisplayName() = %q, want Jane", got)
	}
	if got := (&SessionUser{Name: "  ", Email: "j@example.com"}).DisplayName(); got != "j@example.com" {
		t.Errorf("DisplayName() = %q, want email fallback", got)
	}
}

func TestFlashes(t *testing.T) {
	sm := newTestManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/files/f1/star", nil)
	if err := sm.AddFlash(rec, req, FlashSuccess, "File starred successfully"); err != nil {
		t.Fatalf("AddFlash() error = %v", err)
	}

	next := nextRequest(rec, "GET", "/filemanager")
	read := httptest.NewRecorder()
	flashes := sm.Flashes(read, next)
	if len(flashes) != 1 {
		t.Fatalf("Flashes() = %v, want one", flashes)
	}
	if flashes[0] != (Flash{Kind: FlashSuccess, Message: "File starred successfully"}) {
		t.Errorf("Flashes()[0] = %+v", flashes[0])
	}

	// Reading clears them
	if again := sm.Flashes(httptest.NewRecorder(), nextRequest(read, "GET", "/filemanager")); len(again) != 0 {
		t.Errorf("second Flashes() = %v, want none", again)
	}
}

func TestExpandedFolders(t *testing.T) {
	sm := newTestManager(t)

	set, ok := sm.ExpandedFolders(httptest.NewRequest("GET", "/", nil))
	if ok || len(set) != 0 {
		t.Fatalf("fresh ExpandedFolders() = %v, %v", set, ok)
	}

	rec := httptest.NewRecorder()
	err := sm.SaveExpandedFolders(rec, httptest.NewRequest("POST", "/", nil), map[string]bool{"d1": true, "d2": false, "d3": true})
	if err != nil {
		t.Fatalf("SaveExpandedFolders() error = %v", err)
	}

	set, ok = sm.ExpandedFolders(nextRequest(rec, "GET", "/"))
	if !ok {
		t.Error("ExpandedFolders() ok = false after save")
	}
	if len(set) != 2 || !set["d1"] || !set["d3"] {
		t.Errorf("ExpandedFolders() = %v, want d1 and d3", set)
	}
}

func TestWeakKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"short", true},
		{"dev-only-session-key-not-for-production", true},
		{"please-change-me-now-0123456789abcdef", true},
		{"Zk3q9vN2xW7pL0aT5rY8uB1cD4eF6gHj", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, reason := weakKey(tt.key)
			if got != tt.want {
				t.Errorf("weakKey(%q) = %v (%s), want %v", tt.key, got, reason, tt.want)
			}
		})
	}
}

func TestWantsHTML(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   bool
	}{
		{"HTML accept", "text/html", true},
		{"HTML with charset", "text/html; charset=utf-8", true},
		{"JSON accept", "application/json", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if got := wantsHTML(req); got != tt.want {
				t.Errorf("wantsHTML() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifySessionError(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		isDecode bool
		category string
		level    zapcore.Level
	}{
		{"expired", "securecookie: expired timestamp", true, "expired", zapcore.DebugLevel},
		{"mac invalid", "securecookie: the value is not valid", true, "mac_invalid", zapcore.WarnLevel},
		{"hash mismatch", "hash mismatch", true, "mac_invalid", zapcore.WarnLevel},
		{"decrypt failed", "securecookie: the value could not be decrypted", true, "decrypt_failed", zapcore.InfoLevel},
		{"base64", "base64 decode failed", true, "decode_failed", zapcore.InfoLevel},
		{"other decode", "odd failure", true, "decode_other", zapcore.InfoLevel},
		{"backend", "backend error", false, "backend", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classifySessionError(mockSecureCookieError{msg: tt.errMsg, isDecode: tt.isDecode})
			if f.category != tt.category || f.level != tt.level {
				t.Errorf("classifySessionError() = %+v, want %s at %s", f, tt.category, tt.level)
			}
		})
	}

	if f := classifySessionError(errors.New("plain")); f.category != "backend" {
		t.Errorf("plain error category = %q, want backend", f.category)
	}
}

func TestLoadSessionUser_TamperedCookieWarns(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sm, err := NewSessionManager(testKey, "", "", time.Hour, false, zap.New(core))
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}

	rec := httptest.NewRecorder()
	_ = sm.CreateSession(rec, httptest.NewRequest("POST", "/login", nil), SessionUser{ID: "u-1", Token: "tok"})
	cookie := rec.Result().Cookies()[0]
	cookie.Value = cookie.Value[:len(cookie.Value)-4] + "AAAA"

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			t.Error("tampered cookie should not sign the user in")
		}
	})).ServeHTTP(httptest.NewRecorder(), req)

	if n := logs.FilterMessage("unreadable session cookie, starting a new session").Len(); n != 1 {
		t.Errorf("logged %d session errors, want 1", n)
	}
}

// mockSecureCookieError implements securecookie.Error.
type mockSecureCookieError struct {
	msg      string
	isDecode bool
}

func (e mockSecureCookieError) Error() string    { return e.msg }
func (e mockSecureCookieError) IsDecode() bool   { return e.isDecode }
func (e mockSecureCookieError) IsUsage() bool    { return false }
func (e mockSecureCookieError) IsInternal() bool { return false }
func (e mockSecureCookieError) Cause() error     { return nil }
