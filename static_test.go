package lungo

import (
	"net/http"
	"strings"
	"testing"
	"testing/fstest"
)

func staticApp(cfg StaticConfig) *App {
	app := New()
	app.Any("/assets/{filepath:path}", StaticHandler(cfg))
	return app
}

func TestStaticHandlerServesFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"app.js":         &fstest.MapFile{Data: []byte("console.log(1)")},
		"sub/index.html": &fstest.MapFile{Data: []byte("<sub>")},
	}
	app := staticApp(StaticConfig{Root: fsys, Prefix: "/assets"})

	w := doRequest(app, http.MethodGet, "/assets/app.js")
	if w.Code != http.StatusOK || w.Body.String() != "console.log(1)" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}

	// A directory serves its index file.
	w = doRequest(app, http.MethodGet, "/assets/sub")
	if w.Code != http.StatusOK || w.Body.String() != "<sub>" {
		t.Errorf("dir index: status = %d body = %q", w.Code, w.Body.String())
	}

	if w = doRequest(app, http.MethodGet, "/assets/nope.css"); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
}

func TestStaticHandlerSPAFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<spa>")},
	}
	app := staticApp(StaticConfig{Root: fsys, Prefix: "/assets", SPA: true})

	w := doRequest(app, http.MethodGet, "/assets/some/client/route")
	if w.Code != http.StatusOK || w.Body.String() != "<spa>" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestStaticHandlerBlocksTraversal(t *testing.T) {
	fsys := fstest.MapFS{
		"public/ok.txt": &fstest.MapFile{Data: []byte("ok")},
	}
	app := staticApp(StaticConfig{Root: fsys, Prefix: "/assets"})

	w := doRequest(app, http.MethodGet, "/assets/%2e%2e/secret.txt")
	if w.Code != http.StatusNotFound {
		t.Errorf("traversal status = %d, want 404", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret contents") {
		t.Error("path traversal must not escape the root")
	}
}
