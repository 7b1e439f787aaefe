// internal/app/features/login/register.go
package login

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/coconsult/internal/app/store/ratelimit"
	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/authapi"
	"github.com/dalemusser/coconsult/internal/app/system/inputval"
	"github.com/dalemusser/coconsult/internal/app/system/network"
	"github.com/dalemusser/coconsult/internal/app/system/normalize"
	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/dalemusser/coconsult/internal/app/system/timeouts"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// Messages shown on the registration page, in the order they are checked.
const (
	MsgFillAll          = "Please fill in all fields"
	MsgPasswordShort    = "Password must be at least 8 characters long"
	MsgPasswordMismatch = "Passwords do not match"
	MsgAcceptTerms      = "Please accept the terms and conditions"
	MsgEmailInvalid     = "Please enter a valid email address"

	MsgRegisterFailed = "Registration failed"
	MsgTooManySignups = "Too many registration attempts. Please try again later."
	MsgAccountCreated = "Account Created"
	minPasswordLength = 8
)

// Registration is the posted sign-up form.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// Validate returns the first problem with the form, or "".
func (f Registration) Validate() string {
	switch {
	case f.FirstName == "" || f.LastName == "" || f.Email == "" || f.Password == "" || f.ConfirmPassword == "":
		return MsgFillAll
	case len(f.Password) < minPasswordLength:
		return MsgPasswordShort
	case f.Password != f.ConfirmPassword:
		return MsgPasswordMismatch
	case !f.AcceptTerms:
		return MsgAcceptTerms
	case !inputval.IsValidEmail(f.Email):
		return MsgEmailInvalid
	}
	return ""
}

// FullName joins the first and last name the way the auth service stores it.
func (f Registration) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// RegisterVM is the view model for the registration page.
type RegisterVM struct {
	viewdata.BaseVM
	Error     string
	FirstName string
	LastName  string
	Email     string
}

// RegisterRoutes returns a chi.Router with the registration routes mounted.
func RegisterRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showRegister)
	r.Post("/", h.handleRegister)
	return r
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, defaultReturn, http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, RegisterVM{})
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, vm RegisterVM) {
	vm.BaseVM = viewdata.NewBaseVM(w, r, "Create an account", "/")
	templates.Render(w, r, "login/register", vm)
}

func registrationFromRequest(r *http.Request) Registration {
	return Registration{
		FirstName:       normalize.Name(r.PostFormValue("firstName")),
		LastName:        normalize.Name(r.PostFormValue("lastName")),
		Email:           normalize.Email(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		AcceptTerms:     r.PostFormValue("acceptTerms") != "",
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errLog.Log(r, "failed to parse form", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	form := registrationFromRequest(r)
	sess, msg := h.register(r, form)
	if sess == nil {
		h.renderRegister(w, r, RegisterVM{
			Error:     msg,
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
		})
		return
	}

	if err := h.signIn(w, r, sess); err != nil {
		h.errLog.Log(r, "failed to create session", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	viewdata.AddFlash(w, r, auth.FlashSuccess, MsgAccountCreated)
	http.Redirect(w, r, defaultReturn, http.StatusSeeOther)
}

// register validates form and creates the account. It returns the remote
// session on success and the message to show otherwise. Rejected sign-ups
// count against the client IP.
func (h *Handler) register(r *http.Request, form Registration) (*authapi.Session, string) {
	ctx := r.Context()

	if msg := form.Validate(); msg != "" {
		return nil, msg
	}

	// IPv6 clients are limited per /64.
	key := network.LimitKey(network.ClientIP(r))
	if h.limiter != nil && key != "" {
		if d := h.limiter.Check(ctx, ratelimit.ScopeRegister, key); !d.Allowed {
			h.auditLogger.RegisterFailed(ctx, r, form.Email, "rate limited")
			return nil, MsgTooManySignups
		}
	}

	callCtx, cancel := timeouts.Remote(ctx, h.logger, "auth register")
	defer cancel()

	sess, err := h.authSvc.Register(callCtx, authapi.Registration{
		Name:     form.FullName(),
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if !errors.Is(err, remoteapi.ErrRejected) {
			h.errLog.Log(r, "auth service register", err)
			h.auditLogger.RegisterFailed(ctx, r, form.Email, "service unavailable")
			return nil, MsgUnexpected
		}
		h.auditLogger.RegisterFailed(ctx, r, form.Email, "rejected")
		if h.limiter != nil && key != "" {
			if _, ferr := h.limiter.Fail(ctx, ratelimit.ScopeRegister, key); ferr != nil {
				h.errLog.Log(r, "record failed registration", ferr)
			}
		}
		if m := remoteapi.Message(err); m != "" {
			return nil, m
		}
		return nil, MsgRegisterFailed
	}

	h.auditLogger.RegisterSuccess(ctx, r, sess.User.ID, form.Email)
	return sess, ""
}
