package middlewares

import (
	"time"

	"github.com/buildwithgo/lungo"
)

// Logger logs one structured line per request: method, path, duration and
// the error returned by the chain, if any. It uses the request context's
// logger, so WithLogger on the App controls the destination.
func Logger() lungo.Middleware {
	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			attrs := []interface{}{
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"duration", duration,
			}
			if rid, ok := c.Get(RequestIDKey); ok {
				attrs = append(attrs, "request_id", rid)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
				c.Logger().Error("request failed", attrs...)
				return err
			}
			c.Logger().Info("request", attrs...)
			return nil
		}
	}
}
