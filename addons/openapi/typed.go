package openapi

import (
	"net/http"
	"reflect"

	"github.com/buildwithgo/lungo"
)

// TypedHandler is a handler with a decoded request model and a typed
// response model.
type TypedHandler[Req any, Res any] func(*lungo.Context, *Req) (*Res, error)

// WrapHandler registers the request and response schemas of a typed
// handler with the generator and returns a plain lungo handler that
// decodes the body, invokes it, and encodes the result as JSON.
func WrapHandler[Req any, Res any](g *Generator, method, path string, handler TypedHandler[Req, Res]) lungo.Handler {
	var reqModel Req
	var resModel Res
	reqSchema := g.GenerateSchema(reqModel)
	resSchema := g.GenerateSchema(resModel)

	op := Operation{
		Summary: path,
		Responses: map[string]*Response{
			"200": {
				Description: "OK",
				Content: map[string]*MediaType{
					"application/json": {Schema: resSchema},
				},
			},
		},
	}

	if reqType := reflect.TypeOf(reqModel); reqType != nil &&
		reqType.Kind() == reflect.Struct && reqType.NumField() > 0 {
		op.RequestBody = &RequestBody{
			Description: "Request Body",
			Required:    true,
			Content: map[string]*MediaType{
				"application/json": {Schema: reqSchema},
			},
		}
	}

	g.AddRoute(method, path, op)

	return func(c *lungo.Context) error {
		var req Req
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			if err := c.BindJSON(&req); err != nil {
				return lungo.NewHTTPError(http.StatusBadRequest, "invalid request body")
			}
		}
		res, err := handler(c, &req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, res)
	}
}
