package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/buildwithgo/lungo"
)

// CORSConfig defines the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists the origins cross-origin requests may come from.
	// "*" matches any origin.
	AllowOrigins []string
	// AllowMethods lists the methods advertised in preflight responses.
	AllowMethods []string
	// AllowHeaders lists the non-simple request headers clients may send.
	AllowHeaders []string
	// ExposeHeaders lists response headers browsers may read.
	ExposeHeaders []string
	// AllowCredentials sets Access-Control-Allow-Credentials. When true the
	// matched origin is echoed back instead of "*", since browsers reject
	// the wildcard on credentialed requests.
	AllowCredentials bool
	// MaxAge is how long, in seconds, preflight results may be cached.
	// Zero omits the header.
	MaxAge int
}

func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
	}
}

// CORS returns a Cross-Origin Resource Sharing middleware. Requests without
// an Origin header pass through untouched apart from a Vary entry; preflight
// requests (OPTIONS with Access-Control-Request-Method) from an allowed
// origin are answered 204 without calling next.
func CORS(config ...CORSConfig) lungo.Middleware {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	allowMethods := strings.Join(cfg.AllowMethods, ",")
	allowHeaders := strings.Join(cfg.AllowHeaders, ",")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ",")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next lungo.Handler) lungo.Handler {
		return func(c *lungo.Context) error {
			// Caches must key on Origin whether or not this request is
			// cross-origin.
			c.Writer.Header().Add("Vary", "Origin")

			origin := c.GetHeader("Origin")
			if origin == "" {
				return next(c)
			}

			allowOrigin := matchOrigin(cfg.AllowOrigins, origin, cfg.AllowCredentials)
			preflight := c.Request.Method == http.MethodOptions &&
				c.GetHeader("Access-Control-Request-Method") != ""

			if allowOrigin == "" {
				if preflight {
					// Disallowed origin: no CORS headers, nothing to run.
					return c.NoContent(http.StatusNoContent)
				}
				return next(c)
			}

			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if !preflight {
				if exposeHeaders != "" {
					h.Set("Access-Control-Expose-Headers", exposeHeaders)
				}
				return next(c)
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			if allowHeaders != "" {
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			} else if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				h.Set("Access-Control-Allow-Headers", requested)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

func matchOrigin(allowed []string, origin string, credentials bool) string {
	for _, o := range allowed {
		if o == "*" {
			if credentials {
				return origin
			}
			return "*"
		}
		if o == origin {
			return origin
		}
	}
	return ""
}
