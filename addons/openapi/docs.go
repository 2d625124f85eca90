package openapi

import (
	"fmt"
	"net/http"

	"github.com/buildwithgo/lungo"
)

// SpecHandler serves the generated specification as JSON. Mount it where
// the docs page expects to find the spec, e.g. GET /openapi.json.
func SpecHandler(g *Generator) lungo.Handler {
	return func(c *lungo.Context) error {
		return c.JSON(http.StatusOK, g.Spec)
	}
}

// DocsHandler serves the Scalar reference page pointed at specURL.
func DocsHandler(specURL string) lungo.Handler {
	return func(c *lungo.Context) error {
		return c.HTML(http.StatusOK, ScalarHTML(specURL))
	}
}

// ScalarHTML returns a minimal HTML page that loads the Scalar API
// reference. url is the path the spec JSON is served from.
func ScalarHTML(url string) string {
	return fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <title>API Reference</title>
    <meta charset="utf-8" />
    <meta
      name="viewport"
      content="width=device-width, initial-scale=1" />
    <style>
      body {
        margin: 0;
      }
    </style>
  </head>
  <body>
    <script
      id="api-reference"
      data-url="%s"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>`, url)
}
