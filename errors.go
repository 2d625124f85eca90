package lungo

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Routing sentinels. Resolve returns these (or wraps them) so callers can
// translate them to 404/405 responses with errors.Is.
var (
	// ErrRouteNotFound means no registered pattern matched the request path.
	ErrRouteNotFound = errors.New("route not found")

	// ErrRouteNameNotFound means no route or group in the searched scope
	// carries the requested name. Returned by URLPathFor.
	ErrRouteNameNotFound = errors.New("no route with that name")
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code     int
	Message  interface{}
	Internal error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("code=%d, message=%v", e.Code, e.Message)
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(code int, message ...interface{}) *HTTPError {
	he := &HTTPError{Code: code, Message: http.StatusText(code)}
	if len(message) > 0 {
		he.Message = message[0]
	}
	return he
}

// SetInternal sets the internal error.
func (e *HTTPError) SetInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// Unwrap returns the internal error.
func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// PatternCompileError reports a malformed path template. It is returned at
// registration time and is fatal to startup; it is never recovered from.
type PatternCompileError struct {
	Template string
	Reason   string
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("cannot compile path %q: %s", e.Template, e.Reason)
}

// MethodNotAllowedError means at least one pattern matched the request path
// but none of the matching routes accepts the request method.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed (allowed: %s)", e.Method, strings.Join(e.Allowed, ", "))
}

// AllowHeader renders the allowed method set for the Allow response header.
func (e *MethodNotAllowedError) AllowHeader() string {
	allowed := make([]string, len(e.Allowed))
	copy(allowed, e.Allowed)
	sort.Strings(allowed)
	return strings.Join(allowed, ", ")
}

// RouteNameMismatchError is returned when URL generation is asked for a name
// a specific route or group does not own.
type RouteNameMismatchError struct {
	Requested string
	Actual    string
}

func (e *RouteNameMismatchError) Error() string {
	return fmt.Sprintf("route name %q does not match %q", e.Requested, e.Actual)
}

// ParameterMismatchError reports that the parameters supplied to URLPathFor do
// not line up with the parameters the pattern requires.
type ParameterMismatchError struct {
	Route   string
	Missing []string
	Extra   []string
	Invalid []string
}

func (e *ParameterMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing parameters: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "extra parameters: "+strings.Join(e.Extra, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid parameter values: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		parts = append(parts, "parameter mismatch")
	}
	return fmt.Sprintf("url for %q: %s", e.Route, strings.Join(parts, "; "))
}

// CircularDependencyError means a dependency provider depends, directly or
// transitively, on itself. Path holds the provider names along the cycle,
// ending with the provider that closed it.
type CircularDependencyError struct {
	Provider string
	Path     []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency on %q (path: %s)", e.Provider, strings.Join(e.Path, " -> "))
}

// DependencyResolutionError wraps a failure inside a dependency provider.
// Dependency-taxonomy errors (CircularDependencyError, another
// DependencyResolutionError) are never double-wrapped.
type DependencyResolutionError struct {
	Provider string
	Err      error
}

func (e *DependencyResolutionError) Error() string {
	return fmt.Sprintf("resolving dependency %q: %v", e.Provider, e.Err)
}

func (e *DependencyResolutionError) Unwrap() error {
	return e.Err
}
