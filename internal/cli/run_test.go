package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const orderSchema = "testdata/order_created.avsc"

func TestRunGenerate_Fallback(t *testing.T) {
	var buf bytes.Buffer
	err := RunGenerate(context.Background(), RunGenerateParams{
		Fallback: FallbackParams{
			Role:        "producer",
			Schema:      orderSchema,
			Channel:     "orders.created",
			RegistryURL: "http://redpanda:8081",
			Format:      "json",
		},
		Stdout: &buf,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc["operations"], "publishOrderCreated")
}

func TestRunGenerate_Config(t *testing.T) {
	dir := t.TempDir()
	schema, err := filepath.Abs(orderSchema)
	require.NoError(t, err)
	cfgPath := filepath.Join(dir, "asyncapigen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
registryUrl: http://redpanda:8081
documents:
  - name: producer
    schema: `+schema+`
    channel: {name: orders.created}
    output: `+filepath.Join(dir, "producer.yaml")+`
  - name: consumer
    role: consumer
    schema: `+schema+`
    channel: {name: order-events}
    output: `+filepath.Join(dir, "consumer.yaml")+`
`), 0o644))

	require.NoError(t, RunGenerate(context.Background(), RunGenerateParams{ConfigPath: cfgPath, Document: "consumer"}))

	_, err = os.Stat(filepath.Join(dir, "producer.yaml"))
	assert.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(filepath.Join(dir, "consumer.yaml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Contains(t, doc["operations"], "receiveOrderCreated")
}

func TestRunGenerate_Errors(t *testing.T) {
	err := RunGenerate(context.Background(), RunGenerateParams{})
	assert.ErrorContains(t, err, "--config or --schema")

	err = RunGenerate(context.Background(), RunGenerateParams{Fallback: FallbackParams{Schema: orderSchema, Inline: true, Payload: "ref"}})
	assert.ErrorContains(t, err, "--inline")

	err = RunGenerate(context.Background(), RunGenerateParams{ConfigPath: "testdata/missing.yaml"})
	assert.Error(t, err)
}

func TestRunConvert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunConvert(context.Background(), RunConvertParams{Schema: orderSchema, Stdout: &buf}))

	var schema map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "object", schema["type"])

	out := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, RunConvert(context.Background(), RunConvertParams{Schema: orderSchema, Format: "yaml", Output: out}))
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "type: object")

	assert.Error(t, RunConvert(context.Background(), RunConvertParams{Schema: orderSchema, Format: "xml"}))
}

func TestRunValidate(t *testing.T) {
	assert.NoError(t, RunValidate(context.Background(), orderSchema))
	assert.Error(t, RunValidate(context.Background(), "testdata/missing.avsc"))
}

func TestRunCheck(t *testing.T) {
	assert.NoError(t, RunCheck(context.Background(), RunCheckParams{Schema: orderSchema, Message: "testdata/order_message.json"}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"order_id": 7}`), 0o644))
	err := RunCheck(context.Background(), RunCheckParams{Schema: orderSchema, Message: bad})
	assert.ErrorContains(t, err, "does not match schema")
}
