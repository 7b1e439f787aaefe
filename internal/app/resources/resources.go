// internal/app/resources/resources.go
package resources

import (
	"embed"
	"io/fs"
	"net/http"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// Shared page chrome: layout, flashes and the contact form partials used by
// both the landing page and /contact.
//
//go:embed templates/*.gohtml
var sharedFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var assetsFS embed.FS

// assetsMaxAge is the browser cache lifetime for embedded assets. They
// change only with a new binary.
const assetsMaxAge = "public, max-age=3600"

var registerOnce sync.Once

// LoadSharedTemplates registers the shared templates with the waffle
// template engine. It must run before templates.Boot and is safe to call
// more than once.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     "shared",
			FS:       sharedFS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}

// AssetsHandler serves the embedded stylesheet and script under prefix.
func AssetsHandler(prefix string) http.Handler {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("resources: assets subdirectory: " + err.Error())
	}
	files := http.StripPrefix(prefix, http.FileServerFS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", assetsMaxAge)
		files.ServeHTTP(w, r)
	})
}
