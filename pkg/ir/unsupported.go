package ir

import "fmt"

// ConstructKind classifies a schema construct that could not be represented faithfully
type ConstructKind string

const (
	// ConstructMalformed is a node matching none of the recognised shapes
	ConstructMalformed ConstructKind = "malformed"
	// ConstructGeneralUnion is a union that is not null plus exactly one alternative
	ConstructGeneralUnion ConstructKind = "general-union"
	// ConstructUnknownType is a type name that is neither primitive nor a defined named type
	ConstructUnknownType ConstructKind = "unknown-type"
	// ConstructRecursiveReference is a named type referenced while it is still being defined
	ConstructRecursiveReference ConstructKind = "recursive-reference"
)

// UnsupportedConstruct records one place where parsing or conversion fell back
// to a conservative string placeholder.
type UnsupportedConstruct struct {
	// Path is a dotted location such as "OrderCreated.items[].unit_price"
	Path   string
	Kind   ConstructKind
	Detail string
}

func (u UnsupportedConstruct) String() string {
	if u.Detail == "" {
		return fmt.Sprintf("%s at %s", u.Kind, u.Path)
	}
	return fmt.Sprintf("%s at %s: %s", u.Kind, u.Path, u.Detail)
}
