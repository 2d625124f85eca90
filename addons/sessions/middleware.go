package sessions

import (
	"net/http"
	"time"

	"github.com/buildwithgo/lungo"
)

// ContextKey is where the middleware stores the session on the request
// context.
const ContextKey = "session"

// Start returns a middleware that loads the session named by the provider's
// cookie before the handler runs and saves it afterwards, even when the
// handler returns an error.
func Start[T any](p Provider[T]) lungo.Middleware {
	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			cookieName, ttl := p.CookieConfig()

			var sessionID string
			if cookie, err := c.GetCookie(cookieName); err == nil {
				sessionID = cookie.Value
			}

			session, err := p.Get(sessionID)
			if err != nil {
				session = p.NewSession()
			}

			c.Set(ContextKey, session)

			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookieName,
				Value:    session.ID,
				Path:     "/",
				HttpOnly: true,
				Expires:  time.Now().Add(ttl),
			})

			err = next(c)

			if saveErr := p.Save(session); saveErr != nil {
				// The response may already be on the wire; the session
				// loss is loggable but not reportable to the client.
				c.Logger().Error("session save failed",
					"session_id", session.ID, "error", saveErr)
			}

			return err
		}
	}
}

// Get retrieves the typed session placed on the context by Start, or nil
// when no session middleware ran.
func Get[T any](c *lungo.Context) *Session[T] {
	if val, ok := c.Get(ContextKey); ok {
		if s, ok := val.(*Session[T]); ok {
			return s
		}
	}
	return nil
}
