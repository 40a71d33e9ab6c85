package converter

import "github.com/blimu-dev/asyncapi-gen/pkg/ir"

// JSON Schema type names
const (
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
	typeNull    = "null"
	typeArray   = "array"
	typeObject  = "object"
)

var primitiveTypes = map[string]string{
	ir.TypeString:  typeString,
	ir.TypeInt:     typeInteger,
	ir.TypeLong:    typeInteger,
	ir.TypeFloat:   typeNumber,
	ir.TypeDouble:  typeNumber,
	ir.TypeBoolean: typeBoolean,
	ir.TypeBytes:   typeString,
	ir.TypeNull:    typeNull,
}

// PrimitiveType maps a primitive type name to its JSON Schema type. Names
// outside the primitive set map to "string"; well-formed input never has
// them, and the parser reports them where it sees them.
func PrimitiveType(name string) string {
	if t, ok := primitiveTypes[name]; ok {
		return t
	}
	return typeString
}
