// Package openapi generates OpenAPI v3 specifications for lungo
// applications. Paths can be imported wholesale from App.Routes, schemas
// are derived by reflection, and typed handlers register their request and
// response models as they are wired up.
package openapi
