package lungo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Context carries one request through the middleware chain, the dependency
// resolver and the handler. Contexts are pooled by the App and reset per
// request; a Context is owned by exactly one request's goroutine and must
// not be retained after the handler returns.
type Context struct {
	Request *http.Request
	Writer  http.ResponseWriter

	logger    *slog.Logger
	route     *Route
	params    Params
	store     map[string]interface{}
	deps      map[*Dependency]interface{}
	depCached map[*Dependency]bool
	committed bool
}

// NewContext creates a context for the given request pair. The App pool
// calls this with nil arguments and Reset fills them in per request.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Request: r, Writer: w, logger: slog.Default()}
}

// Reset rebinds the context to a new request, clearing all per-request
// state. Dependency cache entries from the previous request are discarded
// here, so nothing leaks across requests.
func (c *Context) Reset(w http.ResponseWriter, r *http.Request) {
	c.Request = r
	c.Writer = w
	c.route = nil
	c.params = nil
	c.committed = false
	clear(c.store)
	clear(c.deps)
	clear(c.depCached)
}

// Detach returns a copy of the context whose lifetime is independent of
// the receiver. The copy carries its own parameter, store and dependency
// maps, so a goroutine that outlives the request (an abandoned handler
// behind a timeout, a background task) can keep using the copy while the
// original is reset and returned to the pool.
//
// The copy initially shares the Request and Writer; callers that detach in
// order to outlive the request must also replace the Writer, since the
// underlying http.ResponseWriter becomes invalid when the request ends.
func (c *Context) Detach() *Context {
	d := &Context{
		Request:   c.Request,
		Writer:    c.Writer,
		logger:    c.logger,
		route:     c.route,
		committed: c.committed,
	}
	if len(c.params) > 0 {
		d.params = make(Params, len(c.params))
		for k, v := range c.params {
			d.params[k] = v
		}
	}
	if len(c.store) > 0 {
		d.store = make(map[string]interface{}, len(c.store))
		for k, v := range c.store {
			d.store[k] = v
		}
	}
	if len(c.deps) > 0 {
		d.deps = make(map[*Dependency]interface{}, len(c.deps))
		for k, v := range c.deps {
			d.deps[k] = v
		}
	}
	if len(c.depCached) > 0 {
		d.depCached = make(map[*Dependency]bool, len(c.depCached))
		for k, v := range c.depCached {
			d.depCached[k] = v
		}
	}
	return d
}

// Path returns the request path.
func (c *Context) Path() string {
	if c.Request == nil {
		return ""
	}
	return c.Request.URL.Path
}

// Route returns the matched route, or nil before routing.
func (c *Context) Route() *Route { return c.route }

// Logger returns the request logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

func (c *Context) setMatch(route *Route, params Params) {
	c.route = route
	c.params = params
}

// Params returns all converted path parameters.
func (c *Context) Params() Params { return c.params }

// Param returns a converted path parameter value, or nil when absent. The
// concrete type depends on the parameter's converter: str and path yield
// string, int yields int64, float yields float64, uuid yields uuid.UUID.
func (c *Context) Param(name string) interface{} {
	return c.params[name]
}

// ParamString returns a path parameter rendered as a string.
func (c *Context) ParamString(name string) string {
	v, ok := c.params[name]
	if !ok {
		return ""
	}
	if s, isString := v.(string); isString {
		return s
	}
	return fmt.Sprint(v)
}

// ParamInt returns an int-typed path parameter.
func (c *Context) ParamInt(name string) (int64, bool) {
	v, ok := c.params[name].(int64)
	return v, ok
}

// ParamFloat returns a float-typed path parameter.
func (c *Context) ParamFloat(name string) (float64, bool) {
	v, ok := c.params[name].(float64)
	return v, ok
}

// ParamUUID returns a uuid-typed path parameter.
func (c *Context) ParamUUID(name string) (uuid.UUID, bool) {
	v, ok := c.params[name].(uuid.UUID)
	return v, ok
}

// Set stores a request-scoped value, typically from a middleware for a
// downstream handler.
func (c *Context) Set(key string, value interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = value
}

// Get retrieves a request-scoped value.
func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.store[key]
	return v, ok
}

// MustGet retrieves a request-scoped value and panics when it is missing.
func (c *Context) MustGet(key string) interface{} {
	v, ok := c.store[key]
	if !ok {
		panic(fmt.Sprintf("lungo: no value for key %q", key))
	}
	return v
}

// Dependency returns the value resolved for a declared dependency.
func (c *Context) Dependency(d *Dependency) (interface{}, bool) {
	v, ok := c.deps[d]
	return v, ok
}

// MustDependency returns a resolved dependency value and panics when the
// dependency was not declared on the route.
func (c *Context) MustDependency(d *Dependency) interface{} {
	v, ok := c.deps[d]
	if !ok {
		panic(fmt.Sprintf("lungo: dependency %q was not resolved for this route", d.name))
	}
	return v
}

// SetDependency supplies a dependency value explicitly. The resolver treats
// it as already resolved and does not invoke the provider, so callers (and
// tests) can override any provider per request.
func (c *Context) SetDependency(d *Dependency, value interface{}) {
	c.storeDependency(d, value, true)
}

func (c *Context) cachedDependency(d *Dependency) (interface{}, bool) {
	if !c.depCached[d] {
		return nil, false
	}
	return c.deps[d], true
}

func (c *Context) storeDependency(d *Dependency, value interface{}, cache bool) {
	if c.deps == nil {
		c.deps = make(map[*Dependency]interface{})
	}
	c.deps[d] = value
	if cache {
		if c.depCached == nil {
			c.depCached = make(map[*Dependency]bool)
		}
		c.depCached[d] = true
	}
}

// GetHeader returns a request header value.
func (c *Context) GetHeader(key string) string {
	return c.Request.Header.Get(key)
}

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.Writer.Header().Set(key, value)
}

// GetCookie returns a named request cookie.
func (c *Context) GetCookie(name string) (*http.Cookie, error) {
	return c.Request.Cookie(name)
}

// SetCookie adds a Set-Cookie header to the response.
func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Writer, cookie)
}

// QueryParam returns a URL query parameter.
func (c *Context) QueryParam(name string) string {
	return c.Request.URL.Query().Get(name)
}

// BindJSON decodes the request body into v.
func (c *Context) BindJSON(v interface{}) error {
	if c.Request.Body == nil {
		return NewHTTPError(http.StatusBadRequest, "empty request body")
	}
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}

// Committed reports whether a response has been written through the
// context's helpers.
func (c *Context) Committed() bool { return c.committed }

func (c *Context) writeHeader(code int, contentType string) {
	if contentType != "" {
		c.Writer.Header().Set("Content-Type", contentType)
	}
	c.Writer.WriteHeader(code)
	c.committed = true
}

// String writes a plain-text response.
func (c *Context) String(code int, s string) error {
	c.writeHeader(code, "text/plain; charset=utf-8")
	_, err := c.Writer.Write([]byte(s))
	return err
}

// HTML writes an HTML response.
func (c *Context) HTML(code int, html string) error {
	c.writeHeader(code, "text/html; charset=utf-8")
	_, err := c.Writer.Write([]byte(html))
	return err
}

// JSON writes a JSON response.
func (c *Context) JSON(code int, v interface{}) error {
	c.writeHeader(code, "application/json; charset=utf-8")
	return json.NewEncoder(c.Writer).Encode(v)
}

// Blob writes raw bytes with an explicit content type.
func (c *Context) Blob(code int, contentType string, b []byte) error {
	c.writeHeader(code, contentType)
	_, err := c.Writer.Write(b)
	return err
}

// NoContent writes a bodyless response.
func (c *Context) NoContent(code int) error {
	c.writeHeader(code, "")
	return nil
}

// Redirect sends a redirect response.
func (c *Context) Redirect(code int, url string) error {
	http.Redirect(c.Writer, c.Request, url, code)
	c.committed = true
	return nil
}
