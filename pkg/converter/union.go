package converter

import (
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
)

// resolveUnion collapses a union into one fragment. A union of null and
// exactly one other alternative yields that alternative and is optional. A
// lone non-null member yields that member. Every other shape cannot be
// expressed here without loss, so it becomes a string placeholder and is
// recorded as an unsupported construct.
func (c *converter) resolveUnion(u *ir.Union, path string) (*jsonschema.Schema, bool) {
	nonNull := u.NonNull()
	switch {
	case u.IsOptional():
		return c.node(nonNull[0], path), true
	case len(u.Members) == 1 && len(nonNull) == 1:
		return c.node(nonNull[0], path), false
	}
	c.report(path, ir.ConstructGeneralUnion, fmt.Sprintf("union of %d members (%d non-null)", len(u.Members), len(nonNull)))
	return &jsonschema.Schema{Type: typeString}, false
}
