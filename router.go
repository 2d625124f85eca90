package lungo

import (
	"net/http"
)

// Router is an ordered collection of routes, groups and nested routers.
// Insertion order is matching priority: the first entry whose pattern
// structurally matches the path wins, regardless of whether a later entry
// would have been a "better" match. A generic pattern registered before a
// literal one therefore shadows it; callers who care register literals first.
//
// The tree is built at startup and is read-only afterwards, so matching
// needs no locking.
type Router struct {
	entries     []routeEntry
	middlewares []Middleware
}

// NewRouter creates an empty router, optionally pre-populated with entries.
func NewRouter(entries ...routeEntry) *Router {
	r := &Router{}
	r.entries = append(r.entries, entries...)
	return r
}

// Use adds a router-level middleware. It wraps every route registered AFTER
// this call; routes already registered are unaffected.
func (r *Router) Use(middleware Middleware) {
	r.middlewares = append(r.middlewares, middleware)
}

// AddRoute appends a pre-built route. Router-level middleware registered so
// far is composed around it at match time; the route itself stays immutable
// and can be registered on several routers without accumulating chains.
func (r *Router) AddRoute(route *Route) {
	r.addEntry(route)
}

// AddGroup appends a nested group.
func (r *Router) AddGroup(g *Group) {
	r.addEntry(g)
}

// AddRouter appends a nested router matched in place (no prefix).
func (r *Router) AddRouter(nested *Router) {
	r.addEntry(nested)
}

func (r *Router) addEntry(e routeEntry) {
	if len(r.middlewares) > 0 {
		// Snapshot: later Use calls must not retroactively reach
		// entries registered before them.
		mws := make([]Middleware, len(r.middlewares))
		copy(mws, r.middlewares)
		e = &wrappedEntry{routeEntry: e, middlewares: mws}
	}
	r.entries = append(r.entries, e)
}

// wrappedEntry composes the router middleware that was in force at
// registration around whatever the inner entry matches.
type wrappedEntry struct {
	routeEntry
	middlewares []Middleware
}

func (w *wrappedEntry) match(path, method string) entryMatch {
	m := w.routeEntry.match(path, method)
	if m.route != nil {
		m.handler = Compile(m.handler, w.middlewares...)
	}
	return m
}

// Add compiles path and registers a handler for the given method.
func (r *Router) Add(method, path string, handler Handler, opts ...RouteOption) error {
	opts = append([]RouteOption{WithMethods(method)}, opts...)
	route, err := NewRoute(path, handler, opts...)
	if err != nil {
		return err
	}
	r.AddRoute(route)
	return nil
}

func (r *Router) GET(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodGet, path, handler, opts...)
}

func (r *Router) POST(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodPost, path, handler, opts...)
}

func (r *Router) PUT(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodPut, path, handler, opts...)
}

func (r *Router) DELETE(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodDelete, path, handler, opts...)
}

func (r *Router) PATCH(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodPatch, path, handler, opts...)
}

func (r *Router) OPTIONS(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodOptions, path, handler, opts...)
}

func (r *Router) HEAD(path string, handler Handler, opts ...RouteOption) error {
	return r.Add(http.MethodHead, path, handler, opts...)
}

// Any registers a handler for every standard method.
func (r *Router) Any(path string, handler Handler, opts ...RouteOption) error {
	opts = append([]RouteOption{WithMethods(allMethods...)}, opts...)
	route, err := NewRoute(path, handler, opts...)
	if err != nil {
		return err
	}
	r.AddRoute(route)
	return nil
}

// Group creates a child group under prefix and registers it.
func (r *Router) Group(prefix string, opts ...GroupOption) *Group {
	g := NewGroup(prefix, opts...)
	r.AddGroup(g)
	return g
}

// Resolve walks the entry list in registration order and returns the first
// route whose pattern matches path and whose method set includes method.
//
// When some pattern matches the path but no matching route accepts the
// method, the error is *MethodNotAllowedError carrying the union of the
// allowed sets; when nothing matches the path at all it is ErrRouteNotFound.
func (r *Router) Resolve(path, method string) (*Route, Params, error) {
	m := r.match(path, method)
	if m.route != nil {
		return m.route, m.params, nil
	}
	if m.pathMatched {
		return nil, nil, &MethodNotAllowedError{Method: method, Allowed: m.allowed}
	}
	return nil, nil, ErrRouteNotFound
}

func (r *Router) match(path, method string) entryMatch {
	var (
		pathMatched bool
		allowed     []string
	)
	for _, e := range r.entries {
		m := e.match(path, method)
		if m.route != nil {
			return m
		}
		if m.pathMatched {
			pathMatched = true
			allowed = mergeMethods(allowed, m.allowed)
		}
	}
	return entryMatch{pathMatched: pathMatched, allowed: allowed}
}

// URLPathFor reverses a route name into a URL, searching nested groups and
// routers until the name is found or every scope is exhausted.
func (r *Router) URLPathFor(name string, params map[string]interface{}) (string, error) {
	template, ok := r.lookupTemplate(name)
	if !ok {
		return "", ErrRouteNameNotFound
	}
	pattern, err := CompilePattern(template)
	if err != nil {
		return "", err
	}
	url, err := pattern.URLPath(params)
	if err != nil {
		if pm, isPM := err.(*ParameterMismatchError); isPM {
			pm.Route = name
		}
		return "", err
	}
	return url, nil
}

func (r *Router) lookupTemplate(name string) (string, bool) {
	for _, e := range r.entries {
		if template, ok := e.lookupTemplate(name); ok {
			return template, true
		}
	}
	return "", false
}

// Routes returns every registered route in registration order, with group
// prefixes applied. The slice is rebuilt on each call; mutating it does not
// affect routing. This is the read API documentation builders consume.
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	r.collectRoutes("", &out)
	return out
}

func (r *Router) collectRoutes(prefix string, out *[]RouteInfo) {
	for _, e := range r.entries {
		e.collectRoutes(prefix, out)
	}
}

func mergeMethods(dst, src []string) []string {
merge:
	for _, m := range src {
		for _, existing := range dst {
			if existing == m {
				continue merge
			}
		}
		dst = append(dst, m)
	}
	return dst
}
