package converter

import (
	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
)

const decimalDescription = "Decimal value as string"

// logical types rendered as formatted strings
var logicalFormats = map[string]string{
	"timestamp-millis":       "date-time",
	"timestamp-micros":       "date-time",
	"local-timestamp-millis": "date-time",
	"local-timestamp-micros": "date-time",
	"date":                   "date",
	"time-millis":            "time",
	"time-micros":            "time",
	"uuid":                   "uuid",
}

// LogicalSchema returns the fragment for a recognised logical type. The
// second result is false when the tag is unknown and the plain primitive
// mapping applies instead.
func LogicalSchema(lp ir.LogicalPrimitive) (*jsonschema.Schema, bool) {
	if lp.LogicalType == "decimal" {
		return &jsonschema.Schema{Type: typeString, Description: decimalDescription}, true
	}
	if format, ok := logicalFormats[lp.LogicalType]; ok {
		return &jsonschema.Schema{Type: typeString, Format: format}, true
	}
	return nil, false
}

func logicalOrPrimitive(lp ir.LogicalPrimitive) *jsonschema.Schema {
	if s, ok := LogicalSchema(lp); ok {
		return s
	}
	return &jsonschema.Schema{Type: PrimitiveType(lp.Primitive)}
}
