package lungo

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Converter validates and converts a raw path-parameter capture into its
// typed value. Pattern returns the regular expression fragment used to
// capture the parameter; it must not contain capturing groups.
type Converter interface {
	Pattern() string
	Convert(raw string) (interface{}, error)
}

type stringConverter struct{}

func (stringConverter) Pattern() string { return "[^/]+" }
func (stringConverter) Convert(raw string) (interface{}, error) {
	return raw, nil
}

type intConverter struct{}

func (intConverter) Pattern() string { return "[0-9]+" }
func (intConverter) Convert(raw string) (interface{}, error) {
	return strconv.ParseInt(raw, 10, 64)
}

type floatConverter struct{}

func (floatConverter) Pattern() string { return "[0-9]+(?:\\.[0-9]+)?" }
func (floatConverter) Convert(raw string) (interface{}, error) {
	return strconv.ParseFloat(raw, 64)
}

// pathConverter is greedy: it captures the rest of the path, slashes
// included. The compiler only permits it in the final segment.
type pathConverter struct{}

func (pathConverter) Pattern() string { return ".*" }
func (pathConverter) Convert(raw string) (interface{}, error) {
	return raw, nil
}

type uuidConverter struct{}

func (uuidConverter) Pattern() string {
	return "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}"
}
func (uuidConverter) Convert(raw string) (interface{}, error) {
	return uuid.Parse(raw)
}

type slugConverter struct{}

func (slugConverter) Pattern() string { return "[a-z0-9]+(?:-[a-z0-9]+)*" }
func (slugConverter) Convert(raw string) (interface{}, error) {
	return raw, nil
}

var converters = map[string]Converter{
	"str":   stringConverter{},
	"int":   intConverter{},
	"float": floatConverter{},
	"path":  pathConverter{},
	"uuid":  uuidConverter{},
	"slug":  slugConverter{},
}

// RegisterConverter adds a custom parameter type to the compiler registry,
// usable as {name:typeName} in route paths. Registration is meant to happen
// at startup, before routes are compiled; it is not safe against concurrent
// compilation.
func RegisterConverter(typeName string, c Converter) error {
	if typeName == "" {
		return fmt.Errorf("converter type name must not be empty")
	}
	if c == nil {
		return fmt.Errorf("converter for %q must not be nil", typeName)
	}
	converters[typeName] = c
	return nil
}

func lookupConverter(typeName string) (Converter, bool) {
	c, ok := converters[typeName]
	return c, ok
}
