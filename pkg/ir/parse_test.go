package ir

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(doc), &v))
	return v
}

func TestParse_Primitives(t *testing.T) {
	for name := range primitiveNames {
		n, unsupported := Parse(name)
		assert.Empty(t, unsupported)
		assert.Equal(t, Primitive{Name: name}, n)
	}
}

func TestParse_LogicalAndFixed(t *testing.T) {
	n, unsupported := Parse(decode(t, `{"type": "bytes", "logicalType": "decimal", "precision": 10, "scale": 2}`))
	require.Empty(t, unsupported)
	assert.Equal(t, LogicalPrimitive{Primitive: "bytes", LogicalType: "decimal", Precision: 10, Scale: 2}, n)

	n, unsupported = Parse(decode(t, `{"type": "fixed", "name": "Hash", "size": 16}`))
	require.Empty(t, unsupported)
	assert.Equal(t, Primitive{Name: "bytes"}, n)

	n, _ = Parse(decode(t, `{"type": "fixed", "name": "Amount", "size": 8, "logicalType": "decimal", "precision": 12}`))
	assert.Equal(t, LogicalPrimitive{Primitive: "bytes", LogicalType: "decimal", Precision: 12}, n)

	n, _ = Parse(decode(t, `{"type": "string"}`))
	assert.Equal(t, Primitive{Name: "string"}, n)
}

func TestParse_RecordFields(t *testing.T) {
	n, unsupported := Parse(decode(t, `{
		"type": "record",
		"name": "OrderCreated",
		"namespace": "com.example.orders",
		"doc": "Event published when a new order is created",
		"fields": [
			{"name": "order_id", "type": "string", "doc": "Order identifier"},
			{"name": "note", "type": ["null", "string"], "default": null},
			{"name": "country", "type": "string", "default": "USA"}
		]
	}`))
	require.Empty(t, unsupported)

	rec, ok := n.(*Record)
	require.True(t, ok)
	assert.Equal(t, "com.example.orders.OrderCreated", rec.FullName())
	assert.Equal(t, "Event published when a new order is created", rec.Doc)
	require.Len(t, rec.Fields, 3)

	assert.Equal(t, "Order identifier", rec.Fields[0].Doc)
	assert.False(t, rec.Fields[0].Optional())

	assert.True(t, rec.Fields[1].HasDefault)
	assert.Nil(t, rec.Fields[1].Default)
	assert.True(t, rec.Fields[1].Optional())

	assert.Equal(t, "USA", rec.Fields[2].Default)
	assert.True(t, rec.Fields[2].Optional())
}

func TestParse_NamedReferences(t *testing.T) {
	n, unsupported := Parse(decode(t, `{
		"type": "record",
		"name": "Order",
		"namespace": "com.acme",
		"fields": [
			{"name": "shipping", "type": {"type": "record", "name": "Address", "fields": [{"name": "city", "type": "string"}]}},
			{"name": "billing", "type": "Address"},
			{"name": "legacy", "type": "com.acme.Address"},
			{"name": "carrier", "type": {"type": "enum", "name": "Carrier", "symbols": ["UPS", "DHL"]}},
			{"name": "fallback_carrier", "type": ["null", "Carrier"]}
		]
	}`))
	require.Empty(t, unsupported)

	rec := n.(*Record)
	shipping := rec.Fields[0].Type
	assert.Same(t, shipping, rec.Fields[1].Type)
	assert.Same(t, shipping, rec.Fields[2].Type)

	u, ok := rec.Fields[4].Type.(*Union)
	require.True(t, ok)
	assert.True(t, u.IsOptional())
	assert.Same(t, rec.Fields[3].Type, u.NonNull()[0])
}

func TestParse_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind ConstructKind
		path string
	}{
		{
			name: "self reference",
			doc:  `{"type": "record", "name": "Node", "fields": [{"name": "next", "type": ["null", "Node"]}]}`,
			kind: ConstructRecursiveReference,
			path: "Node.next<1>",
		},
		{
			name: "unknown named type",
			doc:  `{"type": "record", "name": "R", "fields": [{"name": "x", "type": "com.acme.Missing"}]}`,
			kind: ConstructUnknownType,
			path: "R.x",
		},
		{
			name: "numeric type",
			doc:  `{"type": "record", "name": "R", "fields": [{"name": "x", "type": 7}]}`,
			kind: ConstructMalformed,
			path: "R.x",
		},
		{
			name: "array without items",
			doc:  `{"type": "record", "name": "R", "fields": [{"name": "xs", "type": {"type": "array"}}]}`,
			kind: ConstructMalformed,
			path: "R.xs",
		},
		{
			name: "field without type",
			doc:  `{"type": "record", "name": "R", "fields": [{"name": "x"}]}`,
			kind: ConstructMalformed,
			path: "R.x",
		},
		{
			name: "object without type",
			doc:  `{"name": "R"}`,
			kind: ConstructMalformed,
			path: "$",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, unsupported := Parse(decode(t, test.doc))
			require.Len(t, unsupported, 1)
			assert.Equal(t, test.kind, unsupported[0].Kind)
			assert.Equal(t, test.path, unsupported[0].Path)
		})
	}
}

func TestParse_UnknownTypeKeepsName(t *testing.T) {
	n, unsupported := Parse("decimal128")
	require.Len(t, unsupported, 1)
	assert.Equal(t, Primitive{Name: "decimal128"}, n)
}

func TestUnion_IsOptional(t *testing.T) {
	null := Primitive{Name: TypeNull}
	str := Primitive{Name: TypeString}

	assert.True(t, (&Union{Members: []Node{null, str}}).IsOptional())
	assert.True(t, (&Union{Members: []Node{str, null}}).IsOptional())
	assert.False(t, (&Union{Members: []Node{str}}).IsOptional())
	assert.False(t, (&Union{Members: []Node{null, null}}).IsOptional())
	assert.False(t, (&Union{Members: []Node{null, str, Primitive{Name: TypeInt}}}).IsOptional())
}

const avroOrder = `{
	"type": "record",
	"name": "OrderCreated",
	"namespace": "com.example.orders",
	"doc": "Order event",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "address", "type": {"type": "record", "name": "Address", "fields": [{"name": "city", "type": "string"}]}},
		{"name": "billing", "type": ["null", "Address"], "default": null},
		{"name": "total", "type": {"type": "bytes", "logicalType": "decimal", "precision": 10, "scale": 2}},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "tags", "type": {"type": "array", "items": "string"}},
		{"name": "metadata", "type": {"type": "map", "values": "string"}},
		{"name": "status", "type": {"type": "enum", "name": "Status", "symbols": ["NEW", "PAID"]}},
		{"name": "flag", "type": "bytes", "default": "\u00ff"},
		{"name": "discount", "type": {"type": "bytes", "logicalType": "decimal", "precision": 4, "scale": 2}, "default": "\u0000"},
		{"name": "checksum", "type": {"type": "fixed", "name": "Checksum", "size": 2}, "default": "ab"}
	]
}`

func TestFromAvro_MatchesParse(t *testing.T) {
	schema, err := avro.ParseWithCache(avroOrder, "", &avro.SchemaCache{})
	require.NoError(t, err)

	fromAvro, unsupported := FromAvro(schema)
	require.Empty(t, unsupported)
	parsed, unsupported := Parse(decode(t, avroOrder))
	require.Empty(t, unsupported)

	a := fromAvro.(*Record)
	p := parsed.(*Record)
	assert.Equal(t, p.FullName(), a.FullName())
	assert.Equal(t, p.Doc, a.Doc)
	require.Len(t, a.Fields, len(p.Fields))
	for i := range p.Fields {
		assert.Equal(t, p.Fields[i].Name, a.Fields[i].Name)
		assert.Equal(t, p.Fields[i].Type.Kind(), a.Fields[i].Type.Kind(), "field %s", p.Fields[i].Name)
		assert.Equal(t, p.Fields[i].Optional(), a.Fields[i].Optional(), "field %s", p.Fields[i].Name)
		assert.Equal(t, p.Fields[i].Default, a.Fields[i].Default, "field %s", p.Fields[i].Name)
	}
	assert.Equal(t, "\u00ff", a.Fields[8].Default)
	assert.Equal(t, "\x00", a.Fields[9].Default)
	assert.Equal(t, "ab", a.Fields[10].Default)
	assert.Equal(t, LogicalPrimitive{Primitive: "bytes", LogicalType: "decimal", Precision: 10, Scale: 2}, a.Fields[3].Type)
	assert.Equal(t, LogicalPrimitive{Primitive: "long", LogicalType: "timestamp-millis"}, a.Fields[4].Type)
}

func TestFromAvro_RecursiveReference(t *testing.T) {
	schema, err := avro.ParseWithCache(`{
		"type": "record",
		"name": "LinkedNode",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "next", "type": ["null", "LinkedNode"]}
		]
	}`, "", &avro.SchemaCache{})
	require.NoError(t, err)

	n, unsupported := FromAvro(schema)

	require.Len(t, unsupported, 1)
	assert.Equal(t, ConstructRecursiveReference, unsupported[0].Kind)
	assert.Equal(t, "LinkedNode.next<1>", unsupported[0].Path)
	rec := n.(*Record)
	u := rec.Fields[1].Type.(*Union)
	assert.Equal(t, Primitive{Name: TypeString}, u.Members[1])
}
