package converter

import (
	"fmt"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
)

// Result is the outcome of one conversion
type Result struct {
	Schema *jsonschema.Schema
	// Unsupported lists every place that fell back to a string placeholder
	Unsupported []ir.UnsupportedConstruct
}

// ConvertRecord converts a record into a JSON Schema object fragment
func ConvertRecord(r *ir.Record) Result {
	if r == nil {
		return Convert(nil)
	}
	c := &converter{}
	s := c.record(r, rootPath(r))
	return Result{Schema: s, Unsupported: c.unsupported}
}

// Convert converts any schema node. Top-level unions are resolved the same
// way they are for fields; the optional flag is dropped.
func Convert(n ir.Node) Result {
	c := &converter{}
	var s *jsonschema.Schema
	switch t := n.(type) {
	case *ir.Record:
		if t == nil {
			s = c.node(nil, "$")
			break
		}
		s = c.record(t, rootPath(t))
	default:
		s = c.node(n, "$")
	}
	return Result{Schema: s, Unsupported: c.unsupported}
}

// converter carries the unsupported constructs seen during one call
type converter struct {
	unsupported []ir.UnsupportedConstruct
}

func (c *converter) report(path string, kind ir.ConstructKind, detail string) {
	c.unsupported = append(c.unsupported, ir.UnsupportedConstruct{Path: path, Kind: kind, Detail: detail})
}

func (c *converter) record(r *ir.Record, path string) *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	var required []string
	for _, f := range r.Fields {
		name, prop, req := c.field(f, path+"."+f.Name)
		props.Set(name, prop)
		if req {
			required = append(required, name)
		}
	}
	return &jsonschema.Schema{
		Type:        typeObject,
		Properties:  props,
		Required:    required,
		Description: r.Doc,
	}
}

func (c *converter) node(n ir.Node, path string) *jsonschema.Schema {
	switch t := n.(type) {
	case *ir.Record:
		if t != nil {
			return c.record(t, path)
		}
	case ir.Primitive:
		return &jsonschema.Schema{Type: PrimitiveType(t.Name)}
	case ir.LogicalPrimitive:
		return logicalOrPrimitive(t)
	case *ir.Array:
		return &jsonschema.Schema{Type: typeArray, Items: c.node(t.Items, path+"[]")}
	case *ir.Map:
		return &jsonschema.Schema{Type: typeObject, AdditionalProperties: c.node(t.Values, path+"{}")}
	case *ir.Enum:
		symbols := make([]any, 0, len(t.Symbols))
		for _, s := range t.Symbols {
			symbols = append(symbols, s)
		}
		return &jsonschema.Schema{Type: typeString, Enum: symbols}
	case *ir.Union:
		s, _ := c.resolveUnion(t, path)
		return s
	}
	c.report(path, ir.ConstructMalformed, fmt.Sprintf("no schema node (%T)", n))
	return &jsonschema.Schema{Type: typeString}
}

func rootPath(r *ir.Record) string {
	if r == nil || r.Name == "" {
		return "$"
	}
	return r.Name
}
