package middlewares

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/buildwithgo/lungo"
)

// BasicAuthUserKey is the context store key under which the authenticated
// username is placed for downstream handlers.
const BasicAuthUserKey = "basic_auth_user"

// Credential parsing failures, carried as the internal cause of the 401.
var (
	ErrMissingCredentials   = errors.New("missing Authorization header")
	ErrMalformedCredentials = errors.New("malformed basic credentials")
	ErrInvalidCredentials   = errors.New("invalid username or password")
)

// BasicAuthValidator checks a username/password pair. Returning false means
// the credentials are wrong; returning an error means validation itself
// failed and the error propagates to the boundary unchanged.
type BasicAuthValidator func(username, password string, c *lungo.Context) (bool, error)

// BasicAuthConfig holds the configuration for Basic Auth middleware.
type BasicAuthConfig struct {
	// Validator checks the decoded credentials. Required.
	Validator BasicAuthValidator

	// Realm is the authentication realm. Default is "Restricted".
	Realm string

	// ContextKey is the store key for the authenticated username.
	// Default is BasicAuthUserKey.
	ContextKey string

	// ErrorHandler replaces the default 401 response. The passed error is
	// one of the Err* credential failures above.
	ErrorHandler func(*lungo.Context, error) error

	// Skipper defines a function to skip the middleware per request.
	Skipper func(c *lungo.Context) bool
}

// DefaultBasicAuthConfig returns a default configuration.
func DefaultBasicAuthConfig() BasicAuthConfig {
	return BasicAuthConfig{
		Realm:      "Restricted",
		ContextKey: BasicAuthUserKey,
		Skipper:    func(c *lungo.Context) bool { return false },
	}
}

// BasicAuth returns a Basic Auth middleware with the default configuration.
func BasicAuth(validator BasicAuthValidator) lungo.Middleware {
	config := DefaultBasicAuthConfig()
	config.Validator = validator
	return BasicAuthWithConfig(config)
}

// BasicAuthWithConfig returns a Basic Auth middleware. Failures surface as
// a 401 *lungo.HTTPError whose internal error states which stage of
// credential handling failed; on success the username is stored under
// ContextKey before calling next.
func BasicAuthWithConfig(config BasicAuthConfig) lungo.Middleware {
	if config.Validator == nil {
		panic("BasicAuth: validator function is required")
	}
	defaults := DefaultBasicAuthConfig()
	if config.Skipper == nil {
		config.Skipper = defaults.Skipper
	}
	if config.Realm == "" {
		config.Realm = defaults.Realm
	}
	if config.ContextKey == "" {
		config.ContextKey = defaults.ContextKey
	}

	challenge := `Basic realm="` + config.Realm + `"`
	reject := func(c *lungo.Context, cause error) error {
		c.SetHeader("WWW-Authenticate", challenge)
		if config.ErrorHandler != nil {
			return config.ErrorHandler(c, cause)
		}
		return lungo.NewHTTPError(http.StatusUnauthorized,
			http.StatusText(http.StatusUnauthorized)).SetInternal(cause)
	}

	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			username, password, err := decodeBasicCredentials(c.GetHeader("Authorization"))
			if err != nil {
				return reject(c, err)
			}

			valid, err := config.Validator(username, password, c)
			if err != nil {
				return err
			}
			if !valid {
				return reject(c, ErrInvalidCredentials)
			}

			c.Set(config.ContextKey, username)
			return next(c)
		}
	}
}

func decodeBasicCredentials(header string) (username, password string, err error) {
	if header == "" {
		return "", "", ErrMissingCredentials
	}
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", ErrMalformedCredentials
	}
	decoded, decErr := base64.StdEncoding.DecodeString(header[len(prefix):])
	if decErr != nil {
		return "", "", ErrMalformedCredentials
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", ErrMalformedCredentials
	}
	return username, password, nil
}
