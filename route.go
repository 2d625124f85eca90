package lungo

import (
	"net/http"
	"strings"
)

// allMethods is the method set used by Any routes.
var allMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodOptions, http.MethodHead,
}

// routeEntry is the capability set shared by Route, Group and Router.
// A Router holds an ordered list of these and dispatches without caring
// which variant it is looking at.
type routeEntry interface {
	// match resolves a (path, method) pair against this entry.
	match(path, method string) entryMatch

	// lookupTemplate returns the full path template owned by the named
	// route inside this entry, prefix-composed.
	lookupTemplate(name string) (string, bool)

	// collectRoutes appends this entry's routes, with prefix applied, for
	// route enumeration.
	collectRoutes(prefix string, out *[]RouteInfo)
}

// entryMatch is the result of matching one entry. A nil route means the
// entry did not produce a full match; pathMatched distinguishes a method
// mismatch (405) from no structural match at all (404).
type entryMatch struct {
	route       *Route
	handler     Handler
	params      Params
	allowed     []string
	pathMatched bool
}

// RouteInfo is the read-only description of one registered route, exposed
// for documentation generators and route listings.
type RouteInfo struct {
	Path    string
	Methods []string
	Name    string
	Summary string
}

// Route binds one compiled path pattern to a handler, a method set, and
// optional route-scoped middleware and dependencies. Routes are immutable
// after creation.
type Route struct {
	pattern      *PathPattern
	methods      []string
	name         string
	summary      string
	handler      Handler
	chain        Handler
	middlewares  []Middleware
	dependencies []*Dependency
}

// RouteOption configures a Route at creation time.
type RouteOption func(*Route)

// WithMethods sets the HTTP methods the route accepts. The default is GET.
func WithMethods(methods ...string) RouteOption {
	return func(r *Route) {
		r.methods = r.methods[:0]
		for _, m := range methods {
			r.methods = append(r.methods, strings.ToUpper(m))
		}
	}
}

// WithName names the route for reverse URL lookup. Names should be unique
// within their owning router; a duplicate silently shadows.
func WithName(name string) RouteOption {
	return func(r *Route) { r.name = name }
}

// WithSummary attaches a short description used by documentation builders.
func WithSummary(summary string) RouteOption {
	return func(r *Route) { r.summary = summary }
}

// WithMiddleware attaches route-scoped middleware, applied innermost, after
// global and group middleware.
func WithMiddleware(middlewares ...Middleware) RouteOption {
	return func(r *Route) { r.middlewares = append(r.middlewares, middlewares...) }
}

// WithDependencies declares the dependency providers the handler consumes.
// They are resolved per request, after all middleware has passed, and made
// available through Context.Dependency.
func WithDependencies(deps ...*Dependency) RouteOption {
	return func(r *Route) { r.dependencies = append(r.dependencies, deps...) }
}

// NewRoute compiles path and builds a route for handler. The route's call
// chain (dependency resolution innermost, then route middleware) is composed
// once, here, and reused for every request.
func NewRoute(path string, handler Handler, opts ...RouteOption) (*Route, error) {
	pattern, err := CompilePattern(path)
	if err != nil {
		return nil, err
	}

	r := &Route{
		pattern: pattern,
		methods: []string{http.MethodGet},
		handler: handler,
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.methods) == 0 {
		r.methods = []string{http.MethodGet}
	}

	chain := handler
	if len(r.dependencies) > 0 {
		chain = withDependencies(chain, r.dependencies)
	}
	r.chain = Compile(chain, r.middlewares...)
	return r, nil
}

// MustRoute is NewRoute that panics on a pattern compile error.
func MustRoute(path string, handler Handler, opts ...RouteOption) *Route {
	r, err := NewRoute(path, handler, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Path returns the normalized path template.
func (r *Route) Path() string { return r.pattern.Raw() }

// Name returns the route name, or "" when unnamed.
func (r *Route) Name() string { return r.name }

// Methods returns a copy of the accepted method set.
func (r *Route) Methods() []string {
	out := make([]string, len(r.methods))
	copy(out, r.methods)
	return out
}

// Handle invokes the route's composed chain directly, bypassing routing.
func (r *Route) Handle(c *Context) error { return r.chain(c) }

func (r *Route) allowsMethod(method string) bool {
	for _, m := range r.methods {
		if m == method {
			return true
		}
	}
	return false
}

func (r *Route) match(path, method string) entryMatch {
	params, ok := r.pattern.Match(path)
	if !ok {
		return entryMatch{}
	}
	if !r.allowsMethod(method) {
		return entryMatch{pathMatched: true, allowed: r.Methods()}
	}
	return entryMatch{route: r, handler: r.chain, params: params, pathMatched: true}
}

// URLPathFor generates this route's URL. The name must be this route's own
// name; asking a route for a foreign name is a programming error surfaced as
// *RouteNameMismatchError.
func (r *Route) URLPathFor(name string, params map[string]interface{}) (string, error) {
	if name != r.name {
		return "", &RouteNameMismatchError{Requested: name, Actual: r.name}
	}
	return r.pattern.URLPath(params)
}

func (r *Route) lookupTemplate(name string) (string, bool) {
	if name != "" && name == r.name {
		return r.pattern.Raw(), true
	}
	return "", false
}

func (r *Route) collectRoutes(prefix string, out *[]RouteInfo) {
	*out = append(*out, RouteInfo{
		Path:    joinPaths(prefix, r.pattern.Raw()),
		Methods: r.Methods(),
		Name:    r.name,
		Summary: r.summary,
	})
}

// joinPaths concatenates a prefix and a sub-path, collapsing the "/" root so
// that ("", "/users") and ("/api", "/") compose cleanly.
func joinPaths(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == "/" || path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + path
}
