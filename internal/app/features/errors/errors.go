// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/jsonutil"
	"github.com/dalemusser/coconsult/internal/app/system/remoteapi"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with the request they belong to.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs err for r. Remote services being down is logged as a warning;
// everything else is an error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.LogWithFields(r, msg, err)
}

// LogWithFields is Log with extra fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+5)
	all = append(all,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	if id := chimw.GetReqID(r.Context()); id != "" {
		all = append(all, zap.String("request_id", id))
	}
	if u, ok := auth.CurrentUser(r); ok {
		all = append(all, zap.String("user_id", u.ID))
	}
	all = append(all, fields...)

	if stderrors.Is(err, remoteapi.ErrUnavailable) {
		e.logger.Warn(msg, all...)
		return
	}
	e.logger.Error(msg, all...)
}

// Handler provides error page handlers.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// PageVM is the view model shared by all error pages.
type PageVM struct {
	viewdata.BaseVM
	Code       int
	Message    string
	ActionURL  string
	ActionText string
}

// Forbidden renders the 403 page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "Access Denied", "You don't have access to this page.", "/", "Back to home")
}

// Unauthorized renders the 401 page with a way back through login.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if ret := r.URL.Query().Get("return"); strings.HasPrefix(ret, "/") && !strings.HasPrefix(ret, "//") {
		target += "?return=" + url.QueryEscape(ret)
	}
	h.render(w, r, http.StatusUnauthorized, "Unauthorized", "Please log in to continue.", target, "Log in")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "Not Found", "The page you are looking for doesn't exist or has been moved.", "/", "Back to home")
}

// InternalError renders the 500 page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "Server Error", "Something went wrong on our end. Please try again later.", "/", "Back to home")
}

// render writes the error page, or a failed jsonutil.Result when the
// caller is the file manager script.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title, msg, actionURL, actionText string) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		jsonutil.Fail(w, status, msg)
		return
	}

	vm := PageVM{
		BaseVM:     viewdata.New(r),
		Code:       status,
		Message:    msg,
		ActionURL:  actionURL,
		ActionText: actionText,
	}
	vm.Title = title

	w.WriteHeader(status)
	templates.Render(w, r, "errors/page", vm)
}
