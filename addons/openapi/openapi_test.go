package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/buildwithgo/lungo"
	"github.com/buildwithgo/lungo/addons/openapi"
)

type CreateUserRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestTypedHandlerAndSpec(t *testing.T) {
	app := lungo.New()

	gen := openapi.NewGenerator(openapi.Info{
		Title:   "Test API",
		Version: "1.0.0",
	})

	createHandler := func(c *lungo.Context, req *CreateUserRequest) (*UserResponse, error) {
		return &UserResponse{ID: "123", Name: req.Name}, nil
	}

	app.POST("/users", openapi.WrapHandler(gen, "POST", "/users", createHandler))
	app.GET("/openapi.json", openapi.SpecHandler(gen))

	t.Run("TypedHandler", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"name": "john", "age": 30}`))
		w := httptest.NewRecorder()

		app.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
		}

		var res UserResponse
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if res.Name != "john" || res.ID != "123" {
			t.Errorf("unexpected response: %+v", res)
		}
	})

	t.Run("SpecGeneration", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/openapi.json", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("spec status = %d", w.Code)
		}

		var spec openapi.OpenAPI
		if err := json.Unmarshal(w.Body.Bytes(), &spec); err != nil {
			t.Fatal(err)
		}

		if spec.Info.Title != "Test API" {
			t.Errorf("title = %q", spec.Info.Title)
		}

		pathItem, ok := spec.Paths["/users"]
		if !ok {
			t.Fatal("missing /users path")
		}
		if pathItem.Post == nil {
			t.Fatal("missing POST operation")
		}

		reqContent := pathItem.Post.RequestBody.Content["application/json"]
		if reqContent == nil || reqContent.Schema.Ref != "#/components/schemas/CreateUserRequest" {
			t.Errorf("request schema = %+v", reqContent)
		}

		schema, ok := spec.Components.Schemas["CreateUserRequest"]
		if !ok {
			t.Fatal("missing CreateUserRequest component")
		}
		if schema.Properties["name"].Type != "string" {
			t.Error("name property should be string")
		}
	})
}

func TestFromRoutes(t *testing.T) {
	app := lungo.New()
	ok := func(c *lungo.Context) error { return c.NoContent(http.StatusNoContent) }

	app.GET("/articles/{slug:slug}", ok, lungo.WithName("article"), lungo.WithSummary("Fetch one article"))
	app.Add("PUT", "/articles/{id:int}", ok)

	gen := openapi.NewGenerator(openapi.Info{Title: "Blog", Version: "0.1.0"})
	gen.FromRoutes(app.Routes())

	item, ok2 := gen.Spec.Paths["/articles/{slug}"]
	if !ok2 || item.Get == nil {
		t.Fatal("typed template should appear with plain placeholder")
	}
	if item.Get.OperationID != "article" {
		t.Errorf("operationId = %q, want route name", item.Get.OperationID)
	}
	if item.Get.Summary != "Fetch one article" {
		t.Errorf("summary = %q", item.Get.Summary)
	}
	if len(item.Get.Parameters) != 1 || item.Get.Parameters[0].Name != "slug" {
		t.Fatalf("parameters = %+v", item.Get.Parameters)
	}
	if item.Get.Parameters[0].Schema.Type != "string" {
		t.Error("slug parameter should be string")
	}

	put := gen.Spec.Paths["/articles/{id}"]
	if put == nil || put.Put == nil {
		t.Fatal("missing PUT /articles/{id}")
	}
	if put.Put.Parameters[0].Schema.Type != "integer" {
		t.Error("int converter should map to integer schema")
	}
}

func TestAddRouteNormalizesTemplates(t *testing.T) {
	gen := openapi.NewGenerator(openapi.Info{Title: "Blog", Version: "0.1.0"})

	gen.AddRoute("GET", "/posts/{post_id:int}/comments/{id:uuid}", openapi.Operation{
		Responses: map[string]*openapi.Response{"200": {Description: "OK"}},
	})

	item := gen.Spec.Paths["/posts/{post_id}/comments/{id}"]
	if item == nil || item.Get == nil {
		t.Fatalf("paths = %v, converter annotations should be stripped", gen.Spec.Paths)
	}
	if len(item.Get.Parameters) != 2 {
		t.Fatalf("parameters = %+v", item.Get.Parameters)
	}
	if item.Get.Parameters[0].Schema.Type != "integer" {
		t.Errorf("post_id schema = %+v", item.Get.Parameters[0].Schema)
	}
	if item.Get.Parameters[1].Schema.Format != "uuid" {
		t.Errorf("id schema = %+v", item.Get.Parameters[1].Schema)
	}

	// An explicit parameter of the same name wins over the derived one.
	gen.AddRoute("DELETE", "/posts/{post_id:int}", openapi.Operation{
		Parameters: []*openapi.Parameter{{
			Name: "post_id", In: "path", Required: true,
			Description: "post to remove",
			Schema:      &openapi.Schema{Type: "integer"},
		}},
		Responses: map[string]*openapi.Response{"204": {Description: "deleted"}},
	})
	del := gen.Spec.Paths["/posts/{post_id}"].Delete
	if len(del.Parameters) != 1 || del.Parameters[0].Description != "post to remove" {
		t.Errorf("parameters = %+v, explicit declaration should not be duplicated", del.Parameters)
	}
}

func TestGenerateSchemaShapes(t *testing.T) {
	type Profile struct {
		Email  string            `json:"email"`
		Age    int               `json:"age,omitempty"`
		Labels map[string]string `json:"labels,omitempty"`
		hidden string
	}
	_ = Profile{hidden: ""}

	gen := openapi.NewGenerator(openapi.Info{Title: "t", Version: "1"})
	ref := gen.GenerateSchema(&Profile{})
	if ref.Ref != "#/components/schemas/Profile" {
		t.Fatalf("ref = %q", ref.Ref)
	}

	schema := gen.Spec.Components.Schemas["Profile"]
	if schema.Properties["labels"].AdditionalProperties == nil ||
		schema.Properties["labels"].AdditionalProperties.Type != "string" {
		t.Errorf("labels schema = %+v, maps should carry additionalProperties", schema.Properties["labels"])
	}
	if _, ok := schema.Properties["hidden"]; ok {
		t.Error("unexported field leaked into schema")
	}
	if len(schema.Required) != 1 || schema.Required[0] != "email" {
		t.Errorf("required = %v, only non-omitempty fields are required", schema.Required)
	}
}
