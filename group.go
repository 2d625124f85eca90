package lungo

import (
	"fmt"
	"net/http"
	"strings"
)

// Group is a named, path-prefixed, middleware-wrapped aggregation of routes
// and sub-groups. It either wraps an internal Router of child entries or
// mounts an opaque sub-application handler. From its parent router's point
// of view a Group is just another entry: it matches, reverses names and
// dispatches like a Route does.
type Group struct {
	prefix      string
	name        string
	pattern     *PathPattern
	middlewares []Middleware
	inner       *Router
	app         *Route
}

// GroupOption configures a Group at creation time.
type GroupOption func(*Group)

// WithGroupName names the group so its prefix URL can be reversed.
func WithGroupName(name string) GroupOption {
	return func(g *Group) { g.name = name }
}

// WithGroupMiddleware attaches middleware that wraps every route the group
// contains, outside route-scoped middleware and inside global middleware.
func WithGroupMiddleware(middlewares ...Middleware) GroupOption {
	return func(g *Group) { g.middlewares = append(g.middlewares, middlewares...) }
}

// WithSubApp mounts an opaque sub-application under the group prefix instead
// of an internal router. Every method and every sub-path is forwarded to it.
func WithSubApp(app Handler) GroupOption {
	return func(g *Group) {
		g.app = &Route{
			pattern: g.pattern,
			methods: allMethods,
			handler: app,
			chain:   app,
		}
	}
}

// NewGroup creates a group under prefix. The prefix must be empty or start
// with '/'; a trailing '/' is stripped, so "/api/" and "/api" are the same
// prefix. A malformed prefix panics: groups are built at startup and a bad
// prefix is fatal, exactly like a bad route path.
func NewGroup(prefix string, opts ...GroupOption) *Group {
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		panic(&PatternCompileError{Template: prefix, Reason: "group prefix must be empty or start with '/'"})
	}
	g := &Group{
		prefix:  strings.TrimSuffix(prefix, "/"),
		pattern: MustCompilePattern(prefix),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.app == nil {
		g.inner = NewRouter()
	} else if g.app.name == "" {
		g.app.name = g.name
	}
	return g
}

// Prefix returns the normalized group prefix.
func (g *Group) Prefix() string { return g.prefix }

// Name returns the group name, or "" when unnamed.
func (g *Group) Name() string { return g.name }

// Use adds a group-level middleware applied to every contained route.
func (g *Group) Use(middleware Middleware) {
	g.middlewares = append(g.middlewares, middleware)
}

// AddRoute registers a pre-built route relative to the group prefix.
func (g *Group) AddRoute(route *Route) error {
	if g.inner == nil {
		return fmt.Errorf("group %q mounts a sub-application and cannot own routes", g.prefix)
	}
	g.inner.AddRoute(route)
	return nil
}

// Add registers a handler relative to the group prefix.
func (g *Group) Add(method, path string, handler Handler, opts ...RouteOption) error {
	if g.inner == nil {
		return fmt.Errorf("group %q mounts a sub-application and cannot own routes", g.prefix)
	}
	return g.inner.Add(method, path, handler, opts...)
}

func (g *Group) GET(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodGet, path, handler, opts...)
}

func (g *Group) POST(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodPost, path, handler, opts...)
}

func (g *Group) PUT(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodPut, path, handler, opts...)
}

func (g *Group) DELETE(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodDelete, path, handler, opts...)
}

func (g *Group) PATCH(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodPatch, path, handler, opts...)
}

func (g *Group) OPTIONS(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodOptions, path, handler, opts...)
}

func (g *Group) HEAD(path string, handler Handler, opts ...RouteOption) error {
	return g.Add(http.MethodHead, path, handler, opts...)
}

// Group creates a nested group. Prefixes compose by concatenation, each
// normalized to no trailing slash.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	child := NewGroup(prefix, opts...)
	g.inner.AddGroup(child)
	return child
}

// Handle dispatches a request that already matched this group, applying the
// group middleware around the matched child.
func (g *Group) Handle(c *Context) error {
	m := g.match(c.Path(), c.Request.Method)
	if m.route == nil {
		return ErrRouteNotFound
	}
	return m.handler(c)
}

func (g *Group) match(path, method string) entryMatch {
	prefixParams, rest, ok := g.pattern.MatchPrefix(path)
	if !ok {
		return entryMatch{}
	}

	if g.app != nil {
		return entryMatch{
			route:       g.app,
			handler:     Compile(g.app.chain, g.middlewares...),
			params:      prefixParams,
			pathMatched: true,
		}
	}

	if rest == "" {
		rest = "/"
	}
	m := g.inner.match(rest, method)
	if m.route == nil {
		return entryMatch{pathMatched: m.pathMatched, allowed: m.allowed}
	}

	params := m.params
	if len(prefixParams) > 0 {
		if params == nil {
			params = make(Params, len(prefixParams))
		}
		for name, value := range prefixParams {
			if _, exists := params[name]; !exists {
				params[name] = value
			}
		}
	}
	m.params = params
	m.handler = Compile(m.handler, g.middlewares...)
	return m
}

// URLPathFor reverses a name owned by this group or one of its children.
// The group's own name reverses to the prefix URL; child names reverse to
// the prefix-composed leaf URL.
func (g *Group) URLPathFor(name string, params map[string]interface{}) (string, error) {
	template, ok := g.lookupTemplate(name)
	if !ok {
		if g.name != "" {
			return "", &RouteNameMismatchError{Requested: name, Actual: g.name}
		}
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

func (g *Group) lookupTemplate(name string) (string, bool) {
	if name != "" && name == g.name {
		return g.pattern.Raw(), true
	}
	if g.inner == nil {
		return "", false
	}
	sub, ok := g.inner.lookupTemplate(name)
	if !ok {
		return "", false
	}
	return joinPaths(g.pattern.Raw(), sub), true
}

func (g *Group) collectRoutes(prefix string, out *[]RouteInfo) {
	base := joinPaths(prefix, g.pattern.Raw())
	if g.app != nil {
		*out = append(*out, RouteInfo{
			Path:    joinPaths(base, "/{path:path}"),
			Methods: g.app.Methods(),
			Name:    g.name,
		})
		return
	}
	g.inner.collectRoutes(base, out)
}
