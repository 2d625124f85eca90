package lungo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func doRequest(app *App, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	return w
}

func TestServeHTTPBasic(t *testing.T) {
	app := New()
	app.GET("/hello/{name}", func(c *Context) error {
		return c.String(http.StatusOK, "hello "+c.ParamString("name"))
	})

	w := doRequest(app, http.MethodGet, "/hello/go")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "hello go" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestServeHTTPNotFound(t *testing.T) {
	app := New()
	app.GET("/known", noop)

	if w := doRequest(app, http.MethodGet, "/unknown"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestServeHTTPMethodNotAllowed(t *testing.T) {
	app := New()
	app.GET("/res", noop)
	app.POST("/res", noop)

	w := doRequest(app, http.MethodDelete, "/res")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	allow := w.Header().Get("Allow")
	if !strings.Contains(allow, "GET") || !strings.Contains(allow, "POST") {
		t.Errorf("Allow = %q", allow)
	}
}

func TestHTTPErrorRendered(t *testing.T) {
	app := New()
	app.GET("/teapot", func(c *Context) error {
		return NewHTTPError(http.StatusTeapot, "short and stout")
	})

	w := doRequest(app, http.MethodGet, "/teapot")
	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d", w.Code)
	}
	if w.Body.String() != "short and stout" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestPanicReachesErrorBoundary(t *testing.T) {
	var seen error
	app := New(WithErrorHandler(func(c *Context, err error) {
		seen = err
		c.String(http.StatusInternalServerError, "recovered")
	}))
	app.GET("/boom", func(c *Context) error {
		panic("kaboom")
	})

	w := doRequest(app, http.MethodGet, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if seen == nil || !strings.Contains(seen.Error(), "kaboom") {
		t.Errorf("boundary saw %v", seen)
	}
}

func TestMiddlewareOrderGlobalGroupRoute(t *testing.T) {
	var log []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				log = append(log, name+":in")
				err := next(c)
				log = append(log, name+":out")
				return err
			}
		}
	}

	app := New()
	app.Use(tag("global"))
	api := app.Group("/api", WithGroupMiddleware(tag("group")))
	api.GET("/x", func(c *Context) error {
		log = append(log, "handler")
		return c.NoContent(http.StatusNoContent)
	}, WithMiddleware(tag("route")))

	doRequest(app, http.MethodGet, "/api/x")

	want := []string{"global:in", "group:in", "route:in", "handler", "route:out", "group:out", "global:out"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestGlobalMiddlewareShortCircuit(t *testing.T) {
	handled := 0
	app := New()
	app.Use(func(next Handler) Handler {
		return func(c *Context) error {
			if c.GetHeader("X-Blocked") != "" {
				return NewHTTPError(http.StatusForbidden, "blocked")
			}
			return next(c)
		}
	})
	app.GET("/x", func(c *Context) error {
		handled++
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Blocked", "1")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d", w.Code)
	}
	if handled != 0 {
		t.Errorf("handler ran %d times, want 0", handled)
	}
}

func TestRouteLevelDependencies(t *testing.T) {
	db := NewDependency("db", func(c *Context) (interface{}, error) {
		return "pg", nil
	})

	app := New()
	app.GET("/data", func(c *Context) error {
		return c.String(http.StatusOK, c.MustDependency(db).(string))
	}, WithDependencies(db))

	w := doRequest(app, http.MethodGet, "/data")
	if w.Body.String() != "pg" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestDependencyFailureIs500(t *testing.T) {
	bad := NewDependency("bad", func(c *Context) (interface{}, error) {
		return nil, fmt.Errorf("no backend")
	})

	app := New()
	app.GET("/data", noop, WithDependencies(bad))

	if w := doRequest(app, http.MethodGet, "/data"); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestMountSubApp(t *testing.T) {
	inner := New()
	inner.GET("/ping", func(c *Context) error {
		return c.String(http.StatusOK, "pong")
	})

	app := New()
	app.Mount("/svc", func(c *Context) error {
		// Strip the mount prefix before delegating.
		c.Request.URL.Path = strings.TrimPrefix(c.Path(), "/svc")
		inner.ServeHTTP(c.Writer, c.Request)
		return nil
	})

	w := doRequest(app, http.MethodGet, "/svc/ping")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Errorf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestStaticFS(t *testing.T) {
	fsys := fstest.MapFS{
		"css/site.css": &fstest.MapFile{Data: []byte("body{}")},
		"index.html":   &fstest.MapFile{Data: []byte("<html></html>")},
	}

	app := New()
	if err := app.StaticFS("/static", fsys); err != nil {
		t.Fatal(err)
	}

	w := doRequest(app, http.MethodGet, "/static/css/site.css")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "body{}" {
		t.Errorf("body = %q", w.Body.String())
	}

	if w := doRequest(app, http.MethodGet, "/static/missing.js"); w.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", w.Code)
	}
}

func TestAppURLPathFor(t *testing.T) {
	app := New()
	api := app.Group("/api")
	api.GET("/shop/{category}/{id:int}", noop, WithName("product"))

	url, err := app.URLPathFor("product", map[string]interface{}{"category": "mugs", "id": 12})
	if err != nil {
		t.Fatal(err)
	}
	if url != "/api/shop/mugs/12" {
		t.Errorf("url = %q", url)
	}
}

func TestChainOrder(t *testing.T) {
	var log []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				log = append(log, name)
				return next(c)
			}
		}
	}

	h := Compile(func(c *Context) error {
		log = append(log, "h")
		return nil
	}, tag("1"), tag("2"), tag("3"))

	c := NewContext(discardWriter(), newRequest(http.MethodGet, "/"))
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(log) != fmt.Sprint([]string{"1", "2", "3", "h"}) {
		t.Errorf("log = %v", log)
	}
}
