// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"time"

	"github.com/dalemusser/coconsult/internal/app/system/auth"
	"github.com/dalemusser/coconsult/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName        string
	FileManagerName string
	ContactEmail    string
	ContactPhone    string
	Year            int

	// User context (from session middleware)
	IsLoggedIn bool
	UserID     string
	UserName   string
	UserEmail  string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string

	// One-shot notices queued by the previous request
	Flashes []auth.Flash
}

// sessions is set by Init and used to drain flash notices.
var sessions *auth.SessionManager

// Init sets the session manager used to read flash notices.
// Call this once at startup from bootstrap.
func Init(sm *auth.SessionManager) {
	sessions = sm
}

// NewBaseVM creates a fully populated BaseVM for a page. It drains any
// queued flash notices, so call it before writing the response body.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	if sessions != nil && w != nil {
		vm.Flashes = sessions.Flashes(w, r)
	}
	return vm
}

// New creates a BaseVM without a title and without touching flashes. Used
// for partials and error pages.
func New(r *http.Request) BaseVM {
	vm := BaseVM{
		SiteName:        models.DefaultSiteName,
		FileManagerName: models.FileManagerName,
		ContactEmail:    models.ContactEmail,
		ContactPhone:    models.ContactPhone,
		Year:            time.Now().Year(),
		Title:           models.DefaultPageTitle,
		CurrentPath:     httpnav.CurrentPath(r),
		CSRFToken:       csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserID = u.ID
		vm.UserName = u.DisplayName()
		vm.UserEmail = u.Email
	}
	return vm
}

// AddFlash queues a notice for the next page. It is a no-op before Init.
func AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if sessions == nil {
		return
	}
	_ = sessions.AddFlash(w, r, kind, msg)
}
