package openapi

import (
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"strings"
)

// CommentParser extracts doc comments from Go source so schema
// descriptions can mirror the code's own documentation.
type CommentParser struct {
	TypeDocs map[string]string // type name -> doc comment
}

// NewCommentParser creates an empty parser.
func NewCommentParser() *CommentParser {
	return &CommentParser{
		TypeDocs: make(map[string]string),
	}
}

// ParseDocs parses the Go files directly under root and records the doc
// comment of every declared type.
func (cp *CommentParser) ParseDocs(root string) error {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, root, func(fi os.FileInfo) bool {
		return true
	}, parser.ParseComments)
	if err != nil {
		return err
	}

	for _, pkg := range pkgs {
		d := doc.New(pkg, root, doc.AllDecls)
		for _, t := range d.Types {
			cp.TypeDocs[t.Name] = strings.TrimSpace(t.Doc)
		}
	}
	return nil
}

// ApplyComments parses root and copies matching type doc comments onto the
// generator's registered component schemas.
func ApplyComments(gen *Generator, root string) error {
	cp := NewCommentParser()
	if err := cp.ParseDocs(root); err != nil {
		return err
	}

	for name, schema := range gen.Spec.Components.Schemas {
		if doc, ok := cp.TypeDocs[name]; ok {
			schema.Description = doc
		}
	}
	return nil
}
