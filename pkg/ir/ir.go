package ir

// Kind identifies which variant of Node a value is
type Kind string

const (
	KindRecord           Kind = "record"
	KindPrimitive        Kind = "primitive"
	KindArray            Kind = "array"
	KindMap              Kind = "map"
	KindEnum             Kind = "enum"
	KindUnion            Kind = "union"
	KindLogicalPrimitive Kind = "logical"
)

// Primitive type names of the source schema language
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeInt     = "int"
	TypeLong    = "long"
	TypeFloat   = "float"
	TypeDouble  = "double"
	TypeBytes   = "bytes"
	TypeString  = "string"
)

// Node is one node of a schema tree. The set of implementations is closed:
// *Record, Primitive, *Array, *Map, *Enum, *Union and LogicalPrimitive.
type Node interface {
	Kind() Kind
	node()
}

// Record is a named object type with ordered fields
type Record struct {
	Name      string
	Namespace string
	Doc       string
	Fields    []Field
}

// Field is a single named member of a Record
type Field struct {
	Name string
	Type Node
	Doc  string
	// Default is only meaningful when HasDefault is true; a null default is stored as nil.
	Default    any
	HasDefault bool
}

// Optional reports whether the field may be absent: its type is an optional
// union or a default value is declared.
func (f Field) Optional() bool {
	if f.HasDefault {
		return true
	}
	u, ok := f.Type.(*Union)
	return ok && u.IsOptional()
}

// Primitive is a scalar type referenced by name
type Primitive struct {
	Name string
}

// LogicalPrimitive is a primitive annotated with a logical type tag
type LogicalPrimitive struct {
	Primitive   string
	LogicalType string
	// Precision and Scale are set for decimal logical types
	Precision int
	Scale     int
}

// Array wraps the element type
type Array struct {
	Items Node
}

// Map wraps the value type; keys are always strings
type Map struct {
	Values Node
}

// Enum is a named set of string symbols
type Enum struct {
	Name      string
	Namespace string
	Doc       string
	Symbols   []string
}

// Union is an ordered list of alternatives
type Union struct {
	Members []Node
}

func (*Record) Kind() Kind          { return KindRecord }
func (Primitive) Kind() Kind        { return KindPrimitive }
func (LogicalPrimitive) Kind() Kind { return KindLogicalPrimitive }
func (*Array) Kind() Kind           { return KindArray }
func (*Map) Kind() Kind             { return KindMap }
func (*Enum) Kind() Kind            { return KindEnum }
func (*Union) Kind() Kind           { return KindUnion }

func (*Record) node()          {}
func (Primitive) node()        {}
func (LogicalPrimitive) node() {}
func (*Array) node()           {}
func (*Map) node()             {}
func (*Enum) node()            {}
func (*Union) node()           {}

// FullName returns the namespace-qualified record name
func (r *Record) FullName() string {
	return qualify(r.Namespace, r.Name)
}

// FullName returns the namespace-qualified enum name
func (e *Enum) FullName() string {
	return qualify(e.Namespace, e.Name)
}

// IsNull reports whether n is the null marker
func IsNull(n Node) bool {
	p, ok := n.(Primitive)
	return ok && p.Name == TypeNull
}

// NonNull returns the members of the union that are not the null marker
func (u *Union) NonNull() []Node {
	out := make([]Node, 0, len(u.Members))
	for _, m := range u.Members {
		if !IsNull(m) {
			out = append(out, m)
		}
	}
	return out
}

// IsOptional reports whether the union is a two-member union of null and
// exactly one other alternative.
func (u *Union) IsOptional() bool {
	return len(u.Members) == 2 && len(u.NonNull()) == 1
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
