// internal/app/features/profile/profile.go
package profile

import (
	"net/http"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides profile handlers.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new profile Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// ProfileVM is the view model for the profile page. The identity comes from
// the session; the auth service owns the account itself.
type ProfileVM struct {
	viewdata.BaseVM
	Name     string
	Email    string
	Initials string
}

// Routes returns a chi.Router with profile routes mounted.
func Routes(h *Handler, sessionMgr *auth.SessionManager) http.Handler {
	r := chi.NewRouter()
	r.Use(sessionMgr.RequireSignedIn)
	r.Get("/", h.showProfile)
	return r
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)
	vm := ProfileVM{
		BaseVM:   viewdata.NewBaseVM(w, r, "Profile", "/filemanager"),
		Name:     u.DisplayName(),
		Email:    u.Email,
		Initials: initials(u.DisplayName()),
	}
	templates.Render(w, r, "profile/index", vm)
}

// initials returns up to two leading letters for the avatar badge.
func initials(name string) string {
	out := make([]rune, 0, 2)
	start := true
	for _, c := range name {
		if c == ' ' {
			start = true
			continue
		}
		if start && len(out) < 2 {
			out = append(out, c)
		}
		start = false
	}
	return string(out)
}
