package home

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/coconsult/internal/app/features/contact"
	"github.com/dalemusser/coconsult/internal/app/system/viewdata"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"go.uber.org/zap"
)

type stubForms struct{ calls int }

func (s *stubForms) BlankForm(r *http.Request) contact.Form {
	s.calls++
	return contact.Form{Step: contact.StepPersonal, Stamp: "stamp"}
}

func TestRoutes(t *testing.T) {
	h := NewHandler(&stubForms{}, zap.NewNop())
	if Routes(h) == nil {
		t.Fatal("Routes() returned nil")
	}
}

func TestHomeVM_Catalog(t *testing.T) {
	forms := &stubForms{}
	h := NewHandler(forms, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	vm := h.newHomeVM(req, viewdata.New(req))

	if forms.calls != 1 {
		t.Errorf("BlankForm calls = %d, want 1", forms.calls)
	}
	if vm.Form.Stamp != "stamp" || vm.Form.Step != contact.StepPersonal {
		t.Errorf("Form = %+v, want a fresh step-1 form", vm.Form)
	}
	if len(vm.HeroCards) != 3 {
		t.Errorf("HeroCards = %d, want 3", len(vm.HeroCards))
	}
	if len(vm.Features) != 4 {
		t.Errorf("Features = %d, want 4", len(vm.Features))
	}
	if len(vm.Projects) != 5 {
		t.Errorf("Projects = %d, want 5", len(vm.Projects))
	}
	if len(vm.Stats) != 4 {
		t.Errorf("Stats = %d, want 4", len(vm.Stats))
	}
	if vm.ContactEmail != models.ContactEmail {
		t.Errorf("ContactEmail = %q", vm.ContactEmail)
	}
}
