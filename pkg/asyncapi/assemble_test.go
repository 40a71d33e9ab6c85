package asyncapi

import (
	"encoding/json"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams(role Role, mode PayloadMode) Params {
	return Params{
		Role: role,
		Info: Info{Title: "Order Producer Service", Version: "1.0.0", Description: "Publishes orders"},
		Server: ServerSpec{
			Name:   "development",
			Server: Server{Host: "localhost:19092", Protocol: "kafka", Description: "Local Redpanda broker"},
		},
		Channel:          ChannelSpec{Name: "orders.created", Description: "Topic for newly created order events"},
		OperationSummary: "Publish a new order event",
		Message:          MessageSpec{Name: "OrderCreated", Title: "Order Created Event", Summary: "Event emitted when a new order is placed"},
		Mode:             mode,
	}
}

func TestAssemble_ProducerWithReference(t *testing.T) {
	locator := "http://redpanda:8081/subjects/orders.created-value/versions/latest/schema"
	p := baseParams(RoleProducer, PayloadRef)
	p.Locator = locator

	doc, err := Assemble(p)
	require.NoError(t, err)

	tree, err := doc.Map()
	require.NoError(t, err)

	assert.Equal(t, "3.0.0", tree["asyncapi"])
	assert.Equal(t, ContentTypeAvro, tree["defaultContentType"])

	op := tree["operations"].(map[string]any)["publishOrderCreated"].(map[string]any)
	assert.Equal(t, "send", op["action"])
	assert.Equal(t, map[string]any{"$ref": "#/channels/orders.created"}, op["channel"])
	assert.Equal(t, []any{map[string]any{"$ref": "#/channels/orders.created/messages/OrderCreated"}}, op["messages"])

	channel := tree["channels"].(map[string]any)["orders.created"].(map[string]any)
	assert.Equal(t, "orders.created", channel["address"])
	assert.Equal(t, map[string]any{"OrderCreated": map[string]any{"$ref": "#/components/messages/OrderCreated"}}, channel["messages"])

	components := tree["components"].(map[string]any)
	assert.NotContains(t, components, "schemas")
	msg := components["messages"].(map[string]any)["OrderCreated"].(map[string]any)
	payload := msg["payload"].(map[string]any)
	assert.Equal(t, SchemaFormatAvro, payload["schemaFormat"])
	assert.Equal(t, map[string]any{"$ref": locator}, payload["schema"])
	assert.NotContains(t, payload, "$ref")
}

func TestAssemble_ConsumerInline(t *testing.T) {
	schema := &jsonschema.Schema{Type: "object", Required: []string{"order_id"}}
	p := baseParams(RoleConsumer, PayloadInline)
	p.Channel = ChannelSpec{Name: "order-events", Address: "order-events"}
	p.Schema = schema

	doc, err := Assemble(p)
	require.NoError(t, err)

	op, ok := doc.Operations["receiveOrderCreated"]
	require.True(t, ok)
	assert.Equal(t, ActionReceive, op.Action)
	assert.Equal(t, ContentTypeJSON, doc.DefaultContentType)

	msg := doc.Components.Messages["OrderCreated"]
	assert.Equal(t, ContentTypeJSON, msg.ContentType)
	assert.Equal(t, Payload{Ref: "#/components/schemas/OrderCreated"}, msg.Payload)
	assert.Same(t, schema, doc.Components.Schemas["OrderCreated"])
}

func TestAssemble_EmbeddedAvro(t *testing.T) {
	raw := json.RawMessage(`{"type":"record","name":"OrderCreated","fields":[]}`)
	p := baseParams(RoleProducer, PayloadAvro)
	p.Avro = raw
	p.DefaultContentType = "application/vnd.apache.avro+json"

	doc, err := Assemble(p)
	require.NoError(t, err)

	out, err := json.Marshal(doc.Components.Messages["OrderCreated"].Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"schemaFormat": "application/vnd.apache.avro+json;version=1.9.0",
		"schema": {"type":"record","name":"OrderCreated","fields":[]}
	}`, string(out))
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		err    error
	}{
		{"ref without locator", func(p *Params) { p.Mode = PayloadRef }, ErrMissingLocator},
		{"inline without schema", func(p *Params) { p.Mode = PayloadInline }, ErrMissingSchema},
		{"avro without document", func(p *Params) { p.Mode = PayloadAvro }, ErrMissingAvro},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := baseParams(RoleProducer, PayloadRef)
			test.mutate(&p)

			_, err := Assemble(p)
			assert.ErrorIs(t, err, test.err)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		p := baseParams(Role("observer"), PayloadRef)
		p.Locator = "x"
		_, err := Assemble(p)
		assert.ErrorContains(t, err, "unknown role")
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := Assemble(baseParams(RoleProducer, PayloadMode("embed")))
		assert.ErrorContains(t, err, "unknown payload mode")
	})

	t.Run("missing channel", func(t *testing.T) {
		p := baseParams(RoleProducer, PayloadRef)
		p.Locator = "x"
		p.Channel.Name = ""
		_, err := Assemble(p)
		assert.ErrorContains(t, err, "channel name")
	})
}

func TestAssemble_EscapesPointers(t *testing.T) {
	p := baseParams(RoleProducer, PayloadRef)
	p.Locator = "x"
	p.Channel.Name = "orders/created"
	p.OperationID = "sendOrder"

	doc, err := Assemble(p)
	require.NoError(t, err)

	op := doc.Operations["sendOrder"]
	assert.Equal(t, "#/channels/orders~1created", op.Channel.Ref)
	assert.Equal(t, "orders/created", doc.Channels["orders/created"].Address)
}

func TestParsePayloadMode(t *testing.T) {
	for _, s := range []string{"ref", "inline", "avro"} {
		m, err := ParsePayloadMode(s)
		require.NoError(t, err)
		assert.Equal(t, PayloadMode(s), m)
	}
	_, err := ParsePayloadMode("")
	assert.Error(t, err)
}
