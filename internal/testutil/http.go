package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/google/uuid"
)

// TestCSRFToken is the token WithCSRFToken places on a request.
const TestCSRFToken = "test-csrf-token"

// gorilla/csrf looks the token up under this context key; handlers that
// render forms read it through viewdata.
const csrfContextKey = "gorilla.csrf.Token"

// TestUser is the identity a signed-in session carries.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Token string // bearer token for the remote APIs
}

// SignedInUser returns a TestUser with a fresh id and token.
func SignedInUser() TestUser {
	return TestUser{
		ID:    uuid.NewString(),
		Name:  "Test User",
		Email: "user@test.com",
		Token: "tok-" + uuid.NewString(),
	}
}

// WithUser puts user on r the way the session middleware would.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Token: user.Token,
	})
}

// WithCSRFToken gives r a CSRF token so form templates render a value.
func WithCSRFToken(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), csrfContextKey, TestCSRFToken))
}

// NewRequest creates a request with no body.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewFormRequest creates a url-encoded form POST.
func NewFormRequest(target string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// NewAuthenticatedRequestWithCSRF creates a request for user that can
// render forms.
func NewAuthenticatedRequestWithCSRF(method, target string, user TestUser) *http.Request {
	return WithCSRFToken(WithUser(NewRequest(method, target), user))
}

// Errorer is the part of testing.TB the assertions need.
type Errorer interface {
	Errorf(format string, args ...any)
}

// ResponseRecorder adds assertions to httptest.ResponseRecorder.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the status code.
func (r *ResponseRecorder) AssertStatus(t Errorer, want int) {
	if r.Code != want {
		t.Errorf("status = %d, want %d", r.Code, want)
	}
}

// AssertRedirect checks for a 3xx to want.
func (r *ResponseRecorder) AssertRedirect(t Errorer, want string) {
	if r.Code < 300 || r.Code > 399 {
		t.Errorf("status = %d, want a redirect", r.Code)
	}
	if got := r.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

// AssertContains checks that the body contains want.
func (r *ResponseRecorder) AssertContains(t Errorer, want string) {
	if !strings.Contains(r.Body.String(), want) {
		t.Errorf("body does not contain %q", want)
	}
}

// AssertNotContains checks that the body does not contain s.
func (r *ResponseRecorder) AssertNotContains(t Errorer, s string) {
	if strings.Contains(r.Body.String(), s) {
		t.Errorf("body unexpectedly contains %q", s)
	}
}
