package login

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
)

func validRegistration() Registration {
	return Registration{
		FirstName:       "Pat",
		LastName:        "Doe",
		Email:           "pat@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		AcceptTerms:     true,
	}
}

func TestRegistration_ValidateOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
		want   string
	}{
		{"valid", func(*Registration) {}, ""},
		{"missing first name", func(f *Registration) { f.FirstName = "" }, MsgFillAll},
		{"missing confirm", func(f *Registration) { f.ConfirmPassword = "" }, MsgFillAll},
		{"empty beats short", func(f *Registration) { f.LastName = ""; f.Password = "short" }, MsgFillAll},
		{"short password", func(f *Registration) { f.Password = "short"; f.ConfirmPassword = "short" }, MsgPasswordShort},
		{"short beats mismatch", func(f *Registration) { f.Password = "short" }, MsgPasswordShort},
		{"mismatch", func(f *Registration) { f.ConfirmPassword = "different1" }, MsgPasswordMismatch},
		{"mismatch beats terms", func(f *Registration) { f.ConfirmPassword = "different1"; f.AcceptTerms = false }, MsgPasswordMismatch},
		{"terms", func(f *Registration) { f.AcceptTerms = false }, MsgAcceptTerms},
		{"bad email", func(f *Registration) { f.Email = "not-an-email" }, MsgEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validRegistration()
			tt.mutate(&f)
			if got := f.Validate(); got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegister_SuccessSignsInAndRedirects(t *testing.T) {
	svc := &fakeAuth{session: okSession}
	h := newTestHandler(t, svc, nil)

	rec := httptest.NewRecorder()
	RegisterRoutes(h).ServeHTTP(rec, postForm("/", url.Values{
		"firstName":       {"Pat"},
		"lastName":        {"Doe"},
		"email":           {"PAT@example.com"},
		"password":        {"longenough"},
		"confirmPassword": {"longenough"},
		"acceptTerms":     {"1"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/filemanager" {
		t.Errorf("Location = %q, want /filemanager", loc)
	}
	if len(svc.registers) != 1 {
		t.Fatalf("registers = %d, want 1", len(svc.registers))
	}
	got := svc.registers[0]
	if got.Name != "Pat Doe" || got.Email != "pat@example.com" || got.Password != "longenough" {
		t.Errorf("registration = %+v", got)
	}
	if u := sessionUserFrom(t, h, rec); u == nil || u.Token != "remote-token" {
		t.Errorf("session user = %+v, want signed in", u)
	}
}

func TestRegister_InvalidFormSkipsService(t *testing.T) {
	svc := &fakeAuth{session: okSession}
	h := newTestHandler(t, svc, nil)

	f := validRegistration()
	f.AcceptTerms = false
	sess, msg := h.register(postForm("/", nil), f)
	if sess != nil || msg != MsgAcceptTerms {
		t.Errorf("register() = %v, %q", sess, msg)
	}
	if len(svc.registers) != 0 {
		t.Error("auth service should not be called")
	}
}

func TestRegister_RemoteFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"taken", &remoteapi.Error{Op: "register", Status: 409, Message: "Email already registered", Err: remoteapi.ErrRejected}, "Email already registered"},
		{"rejected", &remoteapi.Error{Op: "register", Status: 400, Err: remoteapi.ErrRejected}, MsgRegisterFailed},
		{"unavailable", &remoteapi.Error{Op: "register", Err: remoteapi.ErrUnavailable}, MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, &fakeAuth{err: tt.err}, nil)
			sess, msg := h.register(postForm("/", nil), validRegistration())
			if sess != nil {
				t.Fatal("register() returned a session")
			}
			if msg != tt.want {
				t.Errorf("msg = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestRegister_RateLimitedByIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr []string
		wantKey    string
	}{
		{"ipv4", []string{"198.51.100.4:5000"}, "198.51.100.4"},
		{"ipv6 same address", []string{"[2001:db8::1]:5000"}, "2001:db8::/64"},
		{"ipv6 rotating within /64", []string{"[2001:db8::1]:5000", "[2001:db8::2]:5000", "[2001:db8::ffff]:5000"}, "2001:db8::/64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuth{err: &remoteapi.Error{Op: "register", Status: 409, Err: remoteapi.ErrRejected}}
			limiter := newFakeLimiter(2, time.Now().Add(time.Hour))
			h := newTestHandler(t, svc, limiter)

			var msg string
			for i := 0; i < 5; i++ {
				req := postForm("/", nil)
				req.RemoteAddr = tt.remoteAddr[i%len(tt.remoteAddr)]
				_, msg = h.register(req, validRegistration())
			}

			if msg != MsgTooManySignups {
				t.Errorf("msg = %q, want %q", msg, MsgTooManySignups)
			}
			if len(svc.registers) != 2 {
				t.Errorf("auth service called %d times, want 2", len(svc.registers))
			}
			if got := limiter.failures["register:"+tt.wantKey]; got != 2 {
				t.Errorf("failures[%q] = %d, want 2 (all: %v)", tt.wantKey, got, limiter.failures)
			}
		})
	}
}
