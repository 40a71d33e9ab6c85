package asyncapigen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/asyncapi-gen/pkg/config"
)

const exampleSchema = "examples/schemas/order_created.avsc"

func TestConvertFile(t *testing.T) {
	schema, unsupported, err := ConvertFile(context.Background(), exampleSchema)
	require.NoError(t, err)
	assert.Empty(t, unsupported)
	assert.Equal(t, "Event emitted when a new order is placed", schema.Description)

	first := schema.Properties.Oldest()
	require.NotNil(t, first)
	assert.Equal(t, "order_id", first.Key)
}

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, ValidateSchema(context.Background(), exampleSchema))

	bad := filepath.Join(t.TempDir(), "bad.avsc")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type": "record", "name": "X", "fields": [{"name": "a", "type": "nope"}]}`), 0o644))
	assert.Error(t, ValidateSchema(context.Background(), bad))
}

func TestGenerateDocument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "consumer.json")
	err := GenerateDocument(context.Background(), GenerateDocumentOptions{
		Document: config.Document{
			Role:    "consumer",
			Schema:  exampleSchema,
			Channel: config.Channel{Name: "order-events"},
			Format:  "json",
			Output:  out,
		},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"receiveOrderCreated"`)
}
