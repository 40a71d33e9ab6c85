package converter

import (
	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
)

// field converts one record field. A field is required unless its type is an
// optional union or it declares a default.
func (c *converter) field(f ir.Field, path string) (string, *jsonschema.Schema, bool) {
	var (
		prop     *jsonschema.Schema
		optional bool
	)
	if u, ok := f.Type.(*ir.Union); ok {
		prop, optional = c.resolveUnion(u, path)
	} else {
		prop = c.node(f.Type, path)
	}
	if f.Doc != "" {
		prop.Description = f.Doc
	}
	if f.HasDefault && f.Default != nil {
		prop.Default = f.Default
	}
	return f.Name, prop, !optional && !f.HasDefault
}
