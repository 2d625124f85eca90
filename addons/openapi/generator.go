package openapi

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/buildwithgo/lungo"
)

// templateParamRe matches lungo path placeholders, typed or not:
// {id}, {id:int}, {filepath:path}.
var templateParamRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?::([a-zA-Z_]+))?\}`)

// Generator accumulates operations and component schemas into an OpenAPI v3
// document. Paths are written in lungo's template syntax; typed placeholders
// like {id:int} are normalized to plain OpenAPI placeholders and their
// converter types become path parameter schemas.
type Generator struct {
	Spec *OpenAPI
}

func NewGenerator(info Info) *Generator {
	return &Generator{
		Spec: &OpenAPI{
			OpenAPI: "3.0.0",
			Info:    info,
			Paths:   make(Paths),
			Components: &Components{
				Schemas: make(map[string]*Schema),
			},
		},
	}
}

// AddRoute registers a single operation under a lungo path template. Path
// parameters implied by the template are appended to the operation unless
// it already declares a parameter of the same name.
func (g *Generator) AddRoute(method, path string, op Operation) {
	plain, derived := normalizeTemplate(path)
	for _, p := range derived {
		if !hasPathParam(op.Parameters, p.Name) {
			op.Parameters = append(op.Parameters, p)
		}
	}

	item := g.Spec.Paths[plain]
	if item == nil {
		item = &PathItem{}
		g.Spec.Paths[plain] = item
	}
	item.setOperation(method, &op)
}

func hasPathParam(params []*Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name && p.In == "path" {
			return true
		}
	}
	return false
}

// FromRoutes imports an application's route table, one operation per
// route method.
//
// Typical use:
//
//	gen := openapi.NewGenerator(info)
//	gen.FromRoutes(app.Routes())
func (g *Generator) FromRoutes(routes []lungo.RouteInfo) {
	for _, info := range routes {
		g.AddRouteInfo(info)
	}
}

// AddRouteInfo imports a single route. The route name becomes the
// operationId when set; otherwise one is derived from method and path.
func (g *Generator) AddRouteInfo(info lungo.RouteInfo) {
	for _, method := range info.Methods {
		g.AddRoute(method, info.Path, Operation{
			OperationID: operationID(method, info),
			Summary:     info.Summary,
			Responses: map[string]*Response{
				"200": {Description: "OK"},
			},
		})
	}
}

// normalizeTemplate strips converter annotations from a lungo template and
// returns the parameters its placeholders imply. "{id:int}" becomes "{id}"
// plus a required integer path parameter.
func normalizeTemplate(template string) (string, []*Parameter) {
	var params []*Parameter
	plain := templateParamRe.ReplaceAllStringFunc(template, func(tok string) string {
		m := templateParamRe.FindStringSubmatch(tok)
		name, converter := m[1], m[2]
		params = append(params, &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   converterSchema(converter),
		})
		return "{" + name + "}"
	})
	return plain, params
}

// converterSchema maps a lungo converter name onto an OpenAPI schema.
func converterSchema(converter string) *Schema {
	switch converter {
	case "int":
		return &Schema{Type: "integer", Format: "int64"}
	case "float":
		return &Schema{Type: "number", Format: "double"}
	case "uuid":
		return &Schema{Type: "string", Format: "uuid"}
	default:
		// str, slug, path and custom converters all carry strings.
		return &Schema{Type: "string"}
	}
}

func operationID(method string, info lungo.RouteInfo) string {
	if info.Name != "" {
		return info.Name
	}
	id := strings.ToLower(method) + strings.ReplaceAll(info.Path, "/", "_")
	return templateParamRe.ReplaceAllString(id, "$1")
}

// GenerateSchema builds a schema for v. Named struct types are registered
// under Components and referenced by $ref; everything else is inlined.
func (g *Generator) GenerateSchema(v interface{}) *Schema {
	return g.schemaFor(reflect.TypeOf(v))
}

var timeType = reflect.TypeOf(time.Time{})

func (g *Generator) schemaFor(t reflect.Type) *Schema {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return &Schema{}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "binary"}
		}
		return &Schema{Type: "array", Items: g.schemaFor(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.schemaFor(t.Elem())}
	case reflect.Struct:
		if t == timeType {
			return &Schema{Type: "string", Format: "date-time"}
		}
		if t.Name() == "" {
			return g.structSchema(t)
		}
		return g.refSchema(t)
	default:
		return &Schema{Type: "string"}
	}
}

// refSchema registers a named struct under Components once and returns a
// reference to it. The placeholder written before descending breaks
// self-referential types.
func (g *Generator) refSchema(t reflect.Type) *Schema {
	name := t.Name()
	if _, seen := g.Spec.Components.Schemas[name]; !seen {
		g.Spec.Components.Schemas[name] = &Schema{}
		g.Spec.Components.Schemas[name] = g.structSchema(t)
	}
	return &Schema{Ref: "#/components/schemas/" + name}
}

func (g *Generator) structSchema(t reflect.Type) *Schema {
	schema := &Schema{
		Type:       "object",
		Properties: make(map[string]*Schema),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, omitempty, skip := jsonFieldName(field)
		if skip {
			continue
		}
		schema.Properties[name] = g.schemaFor(field.Type)
		if !omitempty && field.Type.Kind() != reflect.Ptr {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema
}

func jsonFieldName(field reflect.StructField) (name string, omitempty, skip bool) {
	name = field.Name
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			name = parts[0]
		}
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				omitempty = true
			}
		}
	}
	return name, omitempty, false
}
