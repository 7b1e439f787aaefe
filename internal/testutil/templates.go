package testutil

import (
	"sync"

	"github.com/dalemusser/coconsult/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	templatesOnce sync.Once
	templatesErr  error
)

// MustBootTemplates installs the template engine with the shared layout and
// every feature template registered so far. Feature packages register
// theirs in init, so a test sees its own package's pages.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	templatesOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if templatesErr = eng.Boot(zap.NewNop()); templatesErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if templatesErr != nil {
		t.Fatalf("boot templates: %v", templatesErr)
	}
}
