// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/dalemusser/coconsult/internal/app/features/contact"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FormSource supplies a fresh contact form for the page footer section.
// *contact.Handler satisfies it.
type FormSource interface {
	BlankForm(r *http.Request) contact.Form
}

// Handler provides home page handlers.
type Handler struct {
	forms  FormSource
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(forms FormSource, logger *zap.Logger) *Handler {
	return &Handler{
		forms:  forms,
		logger: logger,
	}
}

// HomeVM is the view model for the landing page.
type HomeVM struct {
	viewdata.BaseVM
	HeroCards    []models.Card
	Features     []models.Card
	ProcessSteps []models.Card
	SprintPhases []string
	Projects     []models.Project
	Values       []models.Card
	Stats        []models.Stat
	Form         contact.Form
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// newHomeVM assembles the static catalog around base.
func (h *Handler) newHomeVM(r *http.Request, base viewdata.BaseVM) HomeVM {
	return HomeVM{
		BaseVM:       base,
		HeroCards:    models.HeroCards,
		Features:     models.Features,
		ProcessSteps: models.ProcessSteps,
		SprintPhases: models.SprintPhases,
		Projects:     models.Projects,
		Values:       models.Values,
		Stats:        models.Stats,
		Form:         h.forms.BlankForm(r),
	}
}

// Index renders the landing page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vm := h.newHomeVM(r, viewdata.NewBaseVM(w, r, models.DefaultPageTitle, "/"))
	templates.Render(w, r, "home/index", vm)
}
