// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/coconsult/internal/app/features/errors"
	"github.com/dalemusser/coconsult/internal/app/store/ratelimit"
	"github.com/dalemusser/coconsult/internal/app/system/auditlog"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/authapi"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown on the login page.
const (
	MsgMissing    = "Please enter your email and password"
	MsgFailed     = "Login failed"
	MsgUnexpected = "An unexpected error occurred"
	MsgTooMany    = "Too many failed login attempts. Please try again later."
)

// defaultReturn is where a signed-in user lands without a return URL.
const defaultReturn = "/filemanager"

// AuthService is the remote auth API. *authapi.Client satisfies it.
type AuthService interface {
	Login(ctx context.Context, creds authapi.Credentials) (*authapi.Session, error)
	Register(ctx context.Context, reg authapi.Registration) (*authapi.Session, error)
}

// Limiter counts failed attempts. *ratelimit.Store satisfies it.
type Limiter interface {
	Check(ctx context.Context, scope, key string) ratelimit.Decision
	Fail(ctx context.Context, scope, key string) (*time.Time, error)
	Reset(ctx context.Context, scope, key string) error
}

// Handler provides login and registration handlers.
type Handler struct {
	authSvc     AuthService
	limiter     Limiter // nil if rate limiting disabled
	sessionMgr  *auth.SessionManager
	errLog      *errorsfeature.ErrorLogger
	auditLogger *auditlog.Logger
	now         func() time.Time
	logger      *zap.Logger
}

// NewHandler creates a new login Handler.
// limiter can be nil to disable rate limiting.
func NewHandler(
	authSvc AuthService,
	limiter Limiter,
	sessionMgr *auth.SessionManager,
	errLog *errorsfeature.ErrorLogger,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		authSvc:     authSvc,
		limiter:     limiter,
		sessionMgr:  sessionMgr,
		errLog:      errLog,
		auditLogger: auditLogger,
		now:         time.Now,
		logger:      logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", defaultReturn), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, LoginVM{ReturnURL: query.Get(r, "return")})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, vm LoginVM) {
	vm.BaseVM = viewdata.NewBaseVM(w, r, "Log in", "/")
	templates.Render(w, r, "login/index", vm)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := normalize.Email(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	returnURL := r.PostFormValue("return")

	sess, msg := h.attempt(r, email, password)
	if sess == nil {
		h.renderLogin(w, r, LoginVM{Error: msg, Email: email, ReturnURL: returnURL})
		return
	}

	if err := h.signIn(w, r, sess); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", defaultReturn), http.StatusSeeOther)
}

// attempt runs one login. It returns the remote session on success and the
// message to show otherwise.
func (h *Handler) attempt(r *http.Request, email, password string) (*authapi.Session, string) {
	ctx := r.Context()

	if email == "" || password == "" {
		return nil, MsgMissing
	}

	if h.limiter != nil {
		if d := h.limiter.Check(ctx, ratelimit.ScopeLogin, email); !d.Allowed {
			h.auditLogger.LoginRateLimited(ctx, r, email)
			return nil, h.lockoutMessage(d.LockedUntil)
		}
	}

	callCtx, cancel := timeouts.Remote(ctx, h.logger, "auth login")
	defer cancel()

	sess, err := h.authSvc.Login(callCtx, authapi.Credentials{Email: email, Password: password})
	if err != nil {
		if !errors.Is(err, remoteapi.ErrRejected) {
			h.errLog.Log(r, "auth service login", err)
			h.auditLogger.LoginFailed(ctx, r, email, "service unavailable")
			return nil, MsgUnexpected
		}

		h.auditLogger.LoginFailed(ctx, r, email, "rejected")
		if h.limiter != nil {
			lockedUntil, ferr := h.limiter.Fail(ctx, ratelimit.ScopeLogin, email)
			if ferr != nil {
				h.logger.Warn("record failed login", zap.Error(ferr))
			}
			if lockedUntil != nil {
				h.auditLogger.LoginLockedOut(ctx, r, email)
				return nil, h.lockoutMessage(lockedUntil)
			}
		}
		if m := remoteapi.Message(err); m != "" {
			return nil, m
		}
		return nil, MsgFailed
	}

	if h.limiter != nil {
		if err := h.limiter.Reset(ctx, ratelimit.ScopeLogin, email); err != nil {
			h.logger.Warn("reset login rate limit", zap.Error(err))
		}
	}
	h.auditLogger.LoginSuccess(ctx, r, sess.User.ID, email)
	return sess, ""
}

func (h *Handler) lockoutMessage(lockedUntil *time.Time) string {
	if lockedUntil == nil {
		return MsgTooMany
	}
	remaining := lockedUntil.Sub(h.now())
	if remaining > time.Minute {
		return fmt.Sprintf("Too many failed login attempts. Please try again in %d minute(s).", int(remaining.Minutes())+1)
	}
	return fmt.Sprintf("Too many failed login attempts. Please try again in %d second(s).", int(remaining.Seconds())+1)
}

// signIn stores the remote identity and token in the session cookie.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, sess *authapi.Session) error {
	return h.sessionMgr.CreateSession(w, r, auth.SessionUser{
		ID:    sess.User.ID,
		Name:  sess.User.Name,
		Email: sess.User.Email,
		Token: sess.Token,
	})
}
