package lungo

import (
	"errors"
	"net/http"
	"testing"
)

func noop(c *Context) error { return nil }

func named(tag string, log *[]string) Handler {
	return func(c *Context) error {
		*log = append(*log, tag)
		return nil
	}
}

func TestResolveStaticAndDynamic(t *testing.T) {
	r := NewRouter()
	r.GET("/users", noop)
	r.GET("/users/{id:int}", noop)

	route, params, err := r.Resolve("/users", http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}
	if route.Path() != "/users" || len(params) != 0 {
		t.Errorf("route = %q params = %v", route.Path(), params)
	}

	route, params, err = r.Resolve("/users/7", http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}
	if route.Path() != "/users/{id:int}" {
		t.Errorf("route = %q", route.Path())
	}
	if params["id"] != int64(7) {
		t.Errorf("id = %v", params["id"])
	}
}

func TestFirstMatchWinsIsDeterministic(t *testing.T) {
	// Registration order decides between overlapping patterns, so the
	// generic pattern shadows the specific one registered after it.
	r := NewRouter()
	r.GET("/files/{name}", noop, WithName("generic"))
	r.GET("/files/readme", noop, WithName("specific"))

	for i := 0; i < 100; i++ {
		route, _, err := r.Resolve("/files/readme", http.MethodGet)
		if err != nil {
			t.Fatal(err)
		}
		if route.Name() != "generic" {
			t.Fatalf("iteration %d resolved %q, want the earlier registration", i, route.Name())
		}
	}
}

func TestSamePathDifferentMethods(t *testing.T) {
	r := NewRouter()
	r.GET("/things", noop, WithName("list"))
	r.POST("/things", noop, WithName("create"))

	route, _, err := r.Resolve("/things", http.MethodGet)
	if err != nil || route.Name() != "list" {
		t.Errorf("GET -> %v, %v", route, err)
	}
	route, _, err = r.Resolve("/things", http.MethodPost)
	if err != nil || route.Name() != "create" {
		t.Errorf("POST -> %v, %v", route, err)
	}
}

func TestMethodNotAllowedMergesAllowedSets(t *testing.T) {
	r := NewRouter()
	r.GET("/things", noop)
	r.POST("/things", noop)
	r.Add(http.MethodPut, "/things", noop)

	_, _, err := r.Resolve("/things", http.MethodDelete)
	var mna *MethodNotAllowedError
	if !errors.As(err, &mna) {
		t.Fatalf("err = %v, want *MethodNotAllowedError", err)
	}
	if mna.Method != http.MethodDelete {
		t.Errorf("Method = %q", mna.Method)
	}
	want := map[string]bool{"GET": true, "POST": true, "PUT": true}
	if len(mna.Allowed) != len(want) {
		t.Fatalf("Allowed = %v", mna.Allowed)
	}
	for _, m := range mna.Allowed {
		if !want[m] {
			t.Errorf("unexpected method %q in Allowed", m)
		}
	}
}

func TestScanContinuesPastMethodMismatch(t *testing.T) {
	// A path match with the wrong method must not stop the scan; a later
	// entry accepting the method still wins.
	r := NewRouter()
	r.POST("/submit/{kind}", noop)
	r.GET("/submit/report", noop, WithName("report"))

	route, _, err := r.Resolve("/submit/report", http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}
	if route.Name() != "report" {
		t.Errorf("route = %q", route.Name())
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewRouter()
	r.GET("/only", noop)

	_, _, err := r.Resolve("/missing", http.MethodGet)
	if !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("err = %v, want ErrRouteNotFound", err)
	}
}

func TestResolveTrailingSlash(t *testing.T) {
	r := NewRouter()
	r.GET("/api/test/", noop)

	if _, _, err := r.Resolve("/api/test", http.MethodGet); err != nil {
		t.Errorf("bare path: %v", err)
	}
	if _, _, err := r.Resolve("/api/test/", http.MethodGet); err != nil {
		t.Errorf("trailing slash: %v", err)
	}
}

func TestRouterUseAppliesToLaterRoutes(t *testing.T) {
	var log []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				log = append(log, name)
				return next(c)
			}
		}
	}

	r := NewRouter()
	r.GET("/before", named("before", &log))
	r.Use(tag("mw"))
	r.GET("/after", named("after", &log))

	c := NewContext(discardWriter(), newRequest(http.MethodGet, "/before"))
	m := r.match("/before", http.MethodGet)
	if err := m.handler(c); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || log[0] != "before" {
		t.Fatalf("log = %v, middleware should not wrap earlier routes", log)
	}

	log = nil
	m = r.match("/after", http.MethodGet)
	if err := m.handler(c); err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0] != "mw" || log[1] != "after" {
		t.Fatalf("log = %v", log)
	}
}

func TestRouteSharedAcrossRoutersStaysImmutable(t *testing.T) {
	var log []string
	tag := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(c *Context) error {
				log = append(log, name)
				return next(c)
			}
		}
	}

	route := MustRoute("/shared", named("handler", &log), WithMethods(http.MethodGet))

	r1 := NewRouter()
	r1.Use(tag("r1"))
	r1.AddRoute(route)

	r2 := NewRouter()
	r2.Use(tag("r2"))
	r2.AddRoute(route)

	c := NewContext(discardWriter(), newRequest(http.MethodGet, "/shared"))

	m := r1.match("/shared", http.MethodGet)
	if err := m.handler(c); err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0] != "r1" || log[1] != "handler" {
		t.Fatalf("first router log = %v", log)
	}

	log = nil
	m = r2.match("/shared", http.MethodGet)
	if err := m.handler(c); err != nil {
		t.Fatal(err)
	}
	if len(log) != 2 || log[0] != "r2" || log[1] != "handler" {
		t.Fatalf("second router log = %v, routers must not stack middleware onto a shared route", log)
	}

	// The route itself carries only its own chain.
	log = nil
	rm := route.match("/shared", http.MethodGet)
	if err := rm.handler(c); err != nil {
		t.Fatal(err)
	}
	if len(log) != 1 || log[0] != "handler" {
		t.Fatalf("bare route log = %v", log)
	}
}

func TestAnyRegistersAllMethods(t *testing.T) {
	r := NewRouter()
	r.Any("/any", noop)

	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"} {
		if _, _, err := r.Resolve("/any", method); err != nil {
			t.Errorf("%s: %v", method, err)
		}
	}
}

func TestURLPathForAcrossRouter(t *testing.T) {
	r := NewRouter()
	r.GET("/shop/{category}/{id:int}", noop, WithName("product"))

	url, err := r.URLPathFor("product", map[string]interface{}{"category": "books", "id": 3})
	if err != nil {
		t.Fatal(err)
	}
	if url != "/shop/books/3" {
		t.Errorf("url = %q", url)
	}

	if _, err := r.URLPathFor("nope", nil); !errors.Is(err, ErrRouteNameNotFound) {
		t.Errorf("unknown name err = %v", err)
	}

	_, err = r.URLPathFor("product", map[string]interface{}{"id": 3})
	var pm *ParameterMismatchError
	if !errors.As(err, &pm) {
		t.Fatalf("err = %v, want *ParameterMismatchError", err)
	}
	if pm.Route != "product" {
		t.Errorf("Route = %q, want the route name", pm.Route)
	}
}

func TestRoutesListsRegistrationOrder(t *testing.T) {
	r := NewRouter()
	r.GET("/a", noop, WithName("a"))
	r.POST("/b/{id:int}", noop, WithName("b"), WithSummary("make a b"))

	infos := r.Routes()
	if len(infos) != 2 {
		t.Fatalf("Routes() = %v", infos)
	}
	if infos[0].Path != "/a" || infos[1].Path != "/b/{id:int}" {
		t.Errorf("paths = %q, %q", infos[0].Path, infos[1].Path)
	}
	if infos[1].Summary != "make a b" {
		t.Errorf("summary = %q", infos[1].Summary)
	}
	if len(infos[1].Methods) != 1 || infos[1].Methods[0] != "POST" {
		t.Errorf("methods = %v", infos[1].Methods)
	}
}
