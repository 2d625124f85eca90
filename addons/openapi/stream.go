package openapi

import "github.com/buildwithgo/lungo"

// WrapStream registers a handler as a text/event-stream endpoint in the
// spec and returns the handler unchanged.
func WrapStream(g *Generator, method, path string, handler lungo.Handler) lungo.Handler {
	op := Operation{
		Summary: path,
		Responses: map[string]*Response{
			"200": {
				Description: "Stream Response",
				Content: map[string]*MediaType{
					"text/event-stream": {
						Schema: &Schema{Type: "string"},
					},
				},
			},
		},
	}
	g.AddRoute(method, path, op)
	return handler
}
