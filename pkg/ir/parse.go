package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

var primitiveNames = map[string]struct{}{
	TypeNull:    {},
	TypeBoolean: {},
	TypeInt:     {},
	TypeLong:    {},
	TypeFloat:   {},
	TypeDouble:  {},
	TypeBytes:   {},
	TypeString:  {},
}

// IsPrimitiveName reports whether name is one of the built-in primitive type names
func IsPrimitiveName(name string) bool {
	_, ok := primitiveNames[name]
	return ok
}

// Parse builds a Node tree from a generic decoded schema document: nested
// map[string]any, []any and string values as produced by any JSON or YAML
// decoder. Shapes that match no known construct are replaced by a string
// primitive and reported; Parse itself never fails.
func Parse(v any) (Node, []UnsupportedConstruct) {
	p := &parser{
		named:   map[string]Node{},
		pending: map[string]struct{}{},
	}
	n := p.parse(v, "", "")
	return n, p.unsupported
}

type parser struct {
	named       map[string]Node
	pending     map[string]struct{}
	unsupported []UnsupportedConstruct
}

func (p *parser) report(path string, kind ConstructKind, detail string) {
	if path == "" {
		path = "$"
	}
	p.unsupported = append(p.unsupported, UnsupportedConstruct{Path: path, Kind: kind, Detail: detail})
}

func (p *parser) parse(v any, path, ns string) Node {
	switch t := v.(type) {
	case string:
		return p.parseName(t, path, ns)
	case []any:
		members := make([]Node, 0, len(t))
		for i, m := range t {
			members = append(members, p.parse(m, fmt.Sprintf("%s<%d>", path, i), ns))
		}
		return &Union{Members: members}
	case map[string]any:
		return p.parseObject(t, path, ns)
	}
	p.report(path, ConstructMalformed, fmt.Sprintf("unexpected type declaration of kind %T", v))
	return Primitive{Name: TypeString}
}

func (p *parser) parseName(name, path, ns string) Node {
	if IsPrimitiveName(name) {
		return Primitive{Name: name}
	}
	candidates := []string{name}
	if !strings.Contains(name, ".") && ns != "" {
		candidates = []string{qualify(ns, name), name}
	}
	for _, c := range candidates {
		if _, ok := p.pending[c]; ok {
			p.report(path, ConstructRecursiveReference, fmt.Sprintf("%q references itself", c))
			return Primitive{Name: TypeString}
		}
		if n, ok := p.named[c]; ok {
			return n
		}
	}
	p.report(path, ConstructUnknownType, fmt.Sprintf("%q is not a primitive or a defined named type", name))
	return Primitive{Name: name}
}

func (p *parser) parseObject(m map[string]any, path, ns string) Node {
	switch t := m["type"].(type) {
	case string:
		switch t {
		case "record", "error":
			return p.parseRecord(m, path, ns)
		case "enum":
			return p.parseEnum(m, path, ns)
		case "array":
			items, ok := m["items"]
			if !ok {
				p.report(path, ConstructMalformed, "array without items")
				return Primitive{Name: TypeString}
			}
			return &Array{Items: p.parse(items, path+"[]", ns)}
		case "map":
			values, ok := m["values"]
			if !ok {
				p.report(path, ConstructMalformed, "map without values")
				return Primitive{Name: TypeString}
			}
			return &Map{Values: p.parse(values, path+"{}", ns)}
		case "fixed":
			return p.parseFixed(m, ns)
		}
		if IsPrimitiveName(t) {
			return primitiveWithLogical(t, m)
		}
		return p.parseName(t, path, ns)
	case map[string]any:
		return p.parseObject(t, path, ns)
	case []any:
		return p.parse(t, path, ns)
	case nil:
		p.report(path, ConstructMalformed, "object without type")
	default:
		p.report(path, ConstructMalformed, fmt.Sprintf("type attribute of kind %T", t))
	}
	return Primitive{Name: TypeString}
}

func (p *parser) parseRecord(m map[string]any, path, ns string) Node {
	name, namespace := splitName(stringOf(m["name"]), stringOf(m["namespace"]), ns)
	rec := &Record{Name: name, Namespace: namespace, Doc: stringOf(m["doc"])}
	if path == "" {
		path = name
	}
	full := rec.FullName()
	if full != "" {
		p.pending[full] = struct{}{}
	}

	var fields []any
	switch f := m["fields"].(type) {
	case []any:
		fields = f
	case nil:
	default:
		p.report(path, ConstructMalformed, "fields is not a list")
	}
	rec.Fields = make([]Field, 0, len(fields))
	for i, raw := range fields {
		fm, ok := raw.(map[string]any)
		if !ok {
			p.report(fmt.Sprintf("%s.fields[%d]", path, i), ConstructMalformed, "field is not an object")
			continue
		}
		fname := stringOf(fm["name"])
		fpath := path + "." + fname
		var ftype Node
		if t, ok := fm["type"]; ok {
			ftype = p.parse(t, fpath, namespace)
		} else {
			p.report(fpath, ConstructMalformed, "field without type")
			ftype = Primitive{Name: TypeString}
		}
		def, hasDefault := fm["default"]
		rec.Fields = append(rec.Fields, Field{
			Name:       fname,
			Type:       ftype,
			Doc:        stringOf(fm["doc"]),
			Default:    def,
			HasDefault: hasDefault,
		})
	}

	if full != "" {
		delete(p.pending, full)
		p.named[full] = rec
	}
	return rec
}

func (p *parser) parseEnum(m map[string]any, path, ns string) Node {
	name, namespace := splitName(stringOf(m["name"]), stringOf(m["namespace"]), ns)
	e := &Enum{Name: name, Namespace: namespace, Doc: stringOf(m["doc"])}
	raw, _ := m["symbols"].([]any)
	e.Symbols = make([]string, 0, len(raw))
	for _, s := range raw {
		sym, ok := s.(string)
		if !ok {
			p.report(path, ConstructMalformed, fmt.Sprintf("enum symbol of kind %T", s))
			continue
		}
		e.Symbols = append(e.Symbols, sym)
	}
	if full := e.FullName(); full != "" {
		p.named[full] = e
	}
	return e
}

func (p *parser) parseFixed(m map[string]any, ns string) Node {
	n := primitiveWithLogical(TypeBytes, m)
	name, namespace := splitName(stringOf(m["name"]), stringOf(m["namespace"]), ns)
	if full := qualify(namespace, name); full != "" {
		p.named[full] = n
	}
	return n
}

func primitiveWithLogical(name string, m map[string]any) Node {
	lt := stringOf(m["logicalType"])
	if lt == "" {
		return Primitive{Name: name}
	}
	return LogicalPrimitive{
		Primitive:   name,
		LogicalType: lt,
		Precision:   intOf(m["precision"]),
		Scale:       intOf(m["scale"]),
	}
}

// splitName applies the naming rules for named types: a dotted name carries
// its own namespace, otherwise the explicit or enclosing namespace is used.
func splitName(name, namespace, enclosing string) (string, string) {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:], name[:i]
	}
	if namespace == "" {
		namespace = enclosing
	}
	return name, namespace
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}
