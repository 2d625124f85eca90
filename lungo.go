// Package lungo is a small web framework built around an ordered,
// pattern-compiling router with typed path parameters, nested route groups,
// per-request dependency injection and call-next middleware chaining.
package lungo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"sync"
)

// Handler is a function that handles an HTTP request.
// It returns an error which can be handled by middlewares or the framework.
type Handler func(*Context) error

// Middleware is a function that wraps a Handler to provide additional
// functionality. Calling next continues the chain; returning without calling
// next short-circuits it, and no downstream middleware or handler runs.
type Middleware func(next Handler) Handler

// ErrorHandler is the exception-handling boundary. It receives every error
// that escapes the middleware/handler chain (including recovered panics) and
// is responsible for producing a response.
type ErrorHandler func(*Context, error)

// App is the main entry point for the Lungo framework. It owns the route
// tree, the global middleware list, the error boundary and a context pool.
// All registration happens at startup; after Run the tree is read-only.
type App struct {
	router       *Router
	middlewares  []Middleware
	errorHandler ErrorHandler
	logger       *slog.Logger
	pool         *sync.Pool
}

// AppOption defines a function to configure the App during initialization.
type AppOption func(*App)

// WithErrorHandler replaces the default error boundary.
func WithErrorHandler(h ErrorHandler) AppOption {
	return func(app *App) { app.errorHandler = h }
}

// WithLogger sets the structured logger handed to every request context.
func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) { app.logger = logger }
}

// New creates a new Lungo App with optional configuration.
func New(options ...AppOption) *App {
	app := &App{
		router: NewRouter(),
		logger: slog.Default(),
	}
	app.errorHandler = app.defaultErrorHandler
	app.pool = &sync.Pool{
		New: func() interface{} {
			c := NewContext(nil, nil)
			c.logger = app.logger
			return c
		},
	}

	for _, option := range options {
		option(app)
	}
	return app
}

// Use adds a global middleware. Global middlewares wrap outermost, in the
// order they are added, around every route.
func (a *App) Use(middleware Middleware) {
	a.middlewares = append(a.middlewares, middleware)
}

// GET registers a new GET route with a handler and optional route options.
func (a *App) GET(path string, handler Handler, opts ...RouteOption) error {
	return a.router.GET(path, handler, opts...)
}

func (a *App) POST(path string, handler Handler, opts ...RouteOption) error {
	return a.router.POST(path, handler, opts...)
}

func (a *App) PUT(path string, handler Handler, opts ...RouteOption) error {
	return a.router.PUT(path, handler, opts...)
}

func (a *App) DELETE(path string, handler Handler, opts ...RouteOption) error {
	return a.router.DELETE(path, handler, opts...)
}

func (a *App) PATCH(path string, handler Handler, opts ...RouteOption) error {
	return a.router.PATCH(path, handler, opts...)
}

func (a *App) OPTIONS(path string, handler Handler, opts ...RouteOption) error {
	return a.router.OPTIONS(path, handler, opts...)
}

func (a *App) HEAD(path string, handler Handler, opts ...RouteOption) error {
	return a.router.HEAD(path, handler, opts...)
}

// Any registers a route for every standard method.
func (a *App) Any(path string, handler Handler, opts ...RouteOption) error {
	return a.router.Any(path, handler, opts...)
}

// Add registers a new route with the specified method, path, handler, and options.
func (a *App) Add(method, path string, handler Handler, opts ...RouteOption) error {
	return a.router.Add(method, path, handler, opts...)
}

// AddRoute registers a pre-built route.
func (a *App) AddRoute(route *Route) {
	a.router.AddRoute(route)
}

// Group creates a route group under prefix.
func (a *App) Group(prefix string, opts ...GroupOption) *Group {
	return a.router.Group(prefix, opts...)
}

// Mount attaches an opaque sub-application under prefix. The sub-application
// receives every method and every sub-path.
func (a *App) Mount(prefix string, sub Handler, opts ...GroupOption) *Group {
	opts = append(opts, WithSubApp(sub))
	return a.router.Group(prefix, opts...)
}

// StaticFS serves the given filesystem under pathPrefix.
func (a *App) StaticFS(pathPrefix string, fsys fs.FS) error {
	handler := StaticHandler(StaticConfig{Root: fsys, Prefix: pathPrefix})
	path := joinPaths(strings.TrimRight(pathPrefix, "/"), "/{filepath:path}")
	if err := a.router.GET(path, handler); err != nil {
		return err
	}
	return a.router.HEAD(path, handler)
}

// Resolve maps a (method, path) pair to a route, as ServeHTTP would.
func (a *App) Resolve(method, path string) (*Route, Params, error) {
	return a.router.Resolve(path, method)
}

// URLPathFor reverses a named route into a URL path.
func (a *App) URLPathFor(name string, params map[string]interface{}) (string, error) {
	return a.router.URLPathFor(name, params)
}

// Routes enumerates every registered route for documentation builders and
// route listings.
func (a *App) Routes() []RouteInfo {
	return a.router.Routes()
}

// Router exposes the underlying route tree.
func (a *App) Router() *Router { return a.router }

// Run starts an HTTP server on the given port or address.
func (a *App) Run(port string) error {
	if !strings.Contains(port, ":") {
		port = ":" + port
	}
	return http.ListenAndServe(port, a)
}

// ServeHTTP implements http.Handler. It resolves the route, composes the
// global middleware around the route's precompiled chain and guarantees that
// any error or panic escaping the chain reaches the error boundary instead
// of killing the process.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := a.pool.Get().(*Context)
	c.Reset(w, r)
	defer a.pool.Put(c)

	defer func() {
		if rec := recover(); rec != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			a.errorHandler(c, fmt.Errorf("panic: %v\n%s", rec, stack[:n]))
		}
	}()

	m := a.router.match(r.URL.Path, r.Method)
	if m.route == nil {
		if m.pathMatched {
			a.errorHandler(c, &MethodNotAllowedError{Method: r.Method, Allowed: m.allowed})
		} else {
			a.errorHandler(c, ErrRouteNotFound)
		}
		return
	}

	c.setMatch(m.route, m.params)
	if err := Compile(m.handler, a.middlewares...)(c); err != nil {
		a.errorHandler(c, err)
	}
}

// defaultErrorHandler translates the framework error taxonomy into HTTP
// responses: 404 for no path match, 405 (with Allow) for a method mismatch,
// the carried code for HTTPError, and 500 for everything else.
func (a *App) defaultErrorHandler(c *Context, err error) {
	if c.Committed() {
		a.logger.Error("error after response started", "path", c.Path(), "error", err)
		return
	}

	switch e := err.(type) {
	case *HTTPError:
		c.String(e.Code, fmt.Sprint(e.Message))
	case *MethodNotAllowedError:
		c.Writer.Header().Set("Allow", e.AllowHeader())
		c.String(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	case *CircularDependencyError, *DependencyResolutionError:
		a.logger.Error("dependency resolution failed", "path", c.Path(), "error", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	default:
		if errors.Is(err, ErrRouteNotFound) {
			c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
			return
		}
		a.logger.Error("unhandled error", "path", c.Path(), "error", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// Chain composes middlewares into a single middleware, preserving order:
// the first middleware wraps outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Compile wraps a handler in middlewares, first middleware outermost.
func Compile(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
