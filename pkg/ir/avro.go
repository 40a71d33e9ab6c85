package ir

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hamba/avro/v2"
)

// FromAvro builds a Node tree from a schema parsed by hamba/avro. Named type
// references resolve to their definition; a reference back into a record that
// is still being converted is reported as recursive and replaced by a string.
func FromAvro(s avro.Schema) (Node, []UnsupportedConstruct) {
	c := &avroConverter{inProgress: map[string]struct{}{}}
	n := c.convert(s, "")
	return n, c.unsupported
}

type avroConverter struct {
	inProgress  map[string]struct{}
	unsupported []UnsupportedConstruct
}

func (c *avroConverter) report(path string, kind ConstructKind, detail string) {
	if path == "" {
		path = "$"
	}
	c.unsupported = append(c.unsupported, UnsupportedConstruct{Path: path, Kind: kind, Detail: detail})
}

func (c *avroConverter) convert(s avro.Schema, path string) Node {
	switch t := s.(type) {
	case *avro.RecordSchema:
		return c.record(t, path)
	case *avro.RefSchema:
		named := t.Schema()
		if _, ok := c.inProgress[named.FullName()]; ok {
			c.report(path, ConstructRecursiveReference, fmt.Sprintf("%q references itself", named.FullName()))
			return Primitive{Name: TypeString}
		}
		return c.convert(named, path)
	case *avro.NullSchema:
		return Primitive{Name: TypeNull}
	case *avro.PrimitiveSchema:
		return logicalOrPrimitive(string(t.Type()), t.Logical())
	case *avro.FixedSchema:
		return logicalOrPrimitive(TypeBytes, t.Logical())
	case *avro.ArraySchema:
		return &Array{Items: c.convert(t.Items(), path+"[]")}
	case *avro.MapSchema:
		return &Map{Values: c.convert(t.Values(), path+"{}")}
	case *avro.EnumSchema:
		return &Enum{Name: t.Name(), Namespace: t.Namespace(), Doc: t.Doc(), Symbols: t.Symbols()}
	case *avro.UnionSchema:
		types := t.Types()
		members := make([]Node, 0, len(types))
		for i, m := range types {
			members = append(members, c.convert(m, fmt.Sprintf("%s<%d>", path, i)))
		}
		return &Union{Members: members}
	}
	c.report(path, ConstructMalformed, fmt.Sprintf("unhandled avro schema %T", s))
	return Primitive{Name: TypeString}
}

func (c *avroConverter) record(r *avro.RecordSchema, path string) Node {
	if path == "" {
		path = r.Name()
	}
	full := r.FullName()
	c.inProgress[full] = struct{}{}
	defer delete(c.inProgress, full)

	rec := &Record{Name: r.Name(), Namespace: r.Namespace(), Doc: r.Doc()}
	rec.Fields = make([]Field, 0, len(r.Fields()))
	for _, f := range r.Fields() {
		rec.Fields = append(rec.Fields, Field{
			Name:       f.Name(),
			Type:       c.convert(f.Type(), path+"."+f.Name()),
			Doc:        f.Doc(),
			Default:    jsonDefault(f.Default()),
			HasDefault: f.HasDefault(),
		})
	}
	return rec
}

func logicalOrPrimitive(name string, ls avro.LogicalSchema) Node {
	if ls == nil {
		return Primitive{Name: name}
	}
	lp := LogicalPrimitive{Primitive: name, LogicalType: string(ls.Type())}
	if d, ok := ls.(*avro.DecimalLogicalSchema); ok {
		lp.Precision = d.Precision()
		lp.Scale = d.Scale()
	}
	return lp
}

// jsonDefault turns a default decoded by hamba/avro back into its JSON form.
// Bytes and fixed values are written as strings with one code point per byte.
func jsonDefault(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return latin1(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = jsonDefault(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonDefault(e)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return latin1(b)
	}
	return v
}

func latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
