// Package oauth2 provides login and callback handlers for the
// authorization-code flow on top of golang.org/x/oauth2.
package oauth2

import (
	"errors"
	"net/http"

	"github.com/buildwithgo/lungo"
	"golang.org/x/oauth2"
)

// ErrInvalidState is reported when the callback state fails validation.
var ErrInvalidState = errors.New("oauth2: invalid state")

// Config holds OAuth2 configuration.
type Config struct {
	oauth2.Config

	// SuccessHandler is called after a successful token exchange. It
	// should establish the session or return the token to the client.
	SuccessHandler func(c *lungo.Context, token *oauth2.Token) error

	// ErrorHandler handles failures during the flow.
	ErrorHandler func(c *lungo.Context, err error) error

	// StateGenerator produces the state string sent to the provider.
	StateGenerator func(c *lungo.Context) string

	// StateValidator checks the state string on the callback.
	StateValidator func(c *lungo.Context, state string) bool
}

// LoginHandler returns a handler that redirects to the provider's consent
// page.
func LoginHandler(config *Config) lungo.Handler {
	return func(c *lungo.Context) error {
		state := ""
		if config.StateGenerator != nil {
			state = config.StateGenerator(c)
		}
		return c.Redirect(http.StatusTemporaryRedirect, config.AuthCodeURL(state))
	}
}

// CallbackHandler returns a handler that exchanges the callback code for a
// token. Without a SuccessHandler, the token is returned as JSON.
func CallbackHandler(config *Config) lungo.Handler {
	return func(c *lungo.Context) error {
		code := c.QueryParam("code")
		state := c.QueryParam("state")

		fail := func(err error) error {
			if config.ErrorHandler != nil {
				return config.ErrorHandler(c, err)
			}
			return err
		}

		if config.StateValidator != nil && !config.StateValidator(c, state) {
			return fail(ErrInvalidState)
		}
		if code == "" {
			return fail(lungo.NewHTTPError(http.StatusBadRequest, "missing authorization code"))
		}

		token, err := config.Exchange(c.Request.Context(), code)
		if err != nil {
			return fail(err)
		}

		if config.SuccessHandler != nil {
			return config.SuccessHandler(c, token)
		}
		return c.JSON(http.StatusOK, token)
	}
}
