package resources

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssetsHandler(t *testing.T) {
	h := AssetsHandler("/assets")

	tests := []struct {
		path     string
		status   int
		wantType string
	}{
		{"/assets/css/site.css", http.StatusOK, "text/css"},
		{"/assets/js/site.js", http.StatusOK, "javascript"},
		{"/assets/js/missing.js", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.wantType != "" && !strings.Contains(rec.Header().Get("Content-Type"), tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), tt.wantType)
			}
			if rec.Header().Get("Cache-Control") != assetsMaxAge {
				t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestAssets_ScriptTargetsFileManagerRoutes(t *testing.T) {
	b, err := assetsFS.ReadFile("assets/js/site.js")
	if err != nil {
		t.Fatalf("read site.js: %v", err)
	}
	for _, want := range []string{"/filemanager/events", "X-CSRF-Token", "targetFolderId"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("site.js does not reference %q", want)
		}
	}
}

func TestLoadSharedTemplates_Idempotent(t *testing.T) {
	LoadSharedTemplates()
	LoadSharedTemplates()
}
