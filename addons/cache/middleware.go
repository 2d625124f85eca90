package cache

import (
	"bytes"
	"net/http"
	"time"

	"github.com/buildwithgo/lungo"
)

// responseRecorder tees the response so a successful body can be stored.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// CachePage returns a middleware that serves GET responses from the store
// for the given duration. Only 200 responses are cached; everything else
// passes through untouched.
func CachePage(store Cache, ttl time.Duration) lungo.Middleware {
	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			if c.Request.Method != http.MethodGet {
				return next(c)
			}

			key := "page:" + c.Request.URL.String()

			if val, ok := store.Get(key); ok {
				if body, ok := val.([]byte); ok {
					c.SetHeader("X-Cache", "HIT")
					_, err := c.Writer.Write(body)
					return err
				}
			}

			rec := &responseRecorder{
				ResponseWriter: c.Writer,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			c.Writer = rec

			err := next(c)

			if err == nil && rec.statusCode == http.StatusOK {
				store.Set(key, rec.body.Bytes(), ttl)
			}
			return err
		}
	}
}
