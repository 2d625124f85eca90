package middlewares

import (
	"github.com/google/uuid"

	"github.com/buildwithgo/lungo"
)

// RequestIDKey is the context store key under which the request ID is kept.
const RequestIDKey = "request_id"

// RequestID adds an X-Request-ID header to the response and context,
// generating a UUID when the client did not supply one.
func RequestID() lungo.Middleware {
	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			rid := c.Request.Header.Get("X-Request-ID")
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Writer.Header().Set("X-Request-ID", rid)
			c.Set(RequestIDKey, rid)
			return next(c)
		}
	}
}
