package middlewares

import (
	"errors"
	"net/http"

	"github.com/buildwithgo/lungo"
	"github.com/buildwithgo/lungo/addons/sessions"
)

// ErrNoSession is passed to the error handler when no session middleware
// ran before SessionAuth.
var ErrNoSession = errors.New("session not found")

// ErrInvalidSession is passed to the error handler when the validator
// rejects the session data.
var ErrInvalidSession = errors.New("invalid session")

// SessionAuthConfig holds configuration for session-based auth.
// T must match the data type given to sessions.Start.
type SessionAuthConfig[T any] struct {
	// Validator checks whether the session data belongs to an
	// authenticated user.
	Validator func(data T, c *lungo.Context) (bool, error)

	// ErrorHandler handles rejected or missing sessions.
	ErrorHandler func(c *lungo.Context, err error) error

	// Skipper skips the middleware for matching requests.
	Skipper func(c *lungo.Context) bool
}

// DefaultSessionAuthConfig returns the defaults: never skip, reply 401.
func DefaultSessionAuthConfig[T any]() SessionAuthConfig[T] {
	return SessionAuthConfig[T]{
		Skipper: func(c *lungo.Context) bool { return false },
		ErrorHandler: func(c *lungo.Context, err error) error {
			return lungo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		},
	}
}

// SessionAuth returns a middleware that rejects requests without a valid
// session. sessions.Start must be applied further out in the chain.
func SessionAuth[T any](validator func(data T, c *lungo.Context) (bool, error)) lungo.Middleware {
	config := DefaultSessionAuthConfig[T]()
	config.Validator = validator
	return SessionAuthWithConfig(config)
}

// SessionAuthWithConfig returns a SessionAuth middleware with custom config.
func SessionAuthWithConfig[T any](config SessionAuthConfig[T]) lungo.Middleware {
	if config.Validator == nil {
		panic("SessionAuth: validator function is required")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSessionAuthConfig[T]().Skipper
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = DefaultSessionAuthConfig[T]().ErrorHandler
	}

	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			sess := sessions.Get[T](c)
			if sess == nil {
				return config.ErrorHandler(c, ErrNoSession)
			}

			valid, err := config.Validator(sess.Data, c)
			if err != nil {
				return config.ErrorHandler(c, err)
			}
			if !valid {
				return config.ErrorHandler(c, ErrInvalidSession)
			}

			return next(c)
		}
	}
}
