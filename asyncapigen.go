// Package asyncapigen generates AsyncAPI 3.0 documents from Avro schemas.
//
// Avro record schemas are converted into JSON Schema fragments and wrapped in a
// single-channel AsyncAPI document describing either the producing or the
// consuming side of a topic. The message payload is referenced from a schema
// registry, embedded as the Avro schema itself, or inlined as JSON Schema.
//
// Quick Start:
//
//	import asyncapigen "github.com/blimu-dev/asyncapi-gen"
//
//	// Describe the producer of orders.created, pointing at the registry
//	err := asyncapigen.GenerateDocument(ctx, asyncapigen.GenerateDocumentOptions{
//		RegistryURL: "http://redpanda:8081",
//		Document: config.Document{
//			Role:    "producer",
//			Schema:  "./schemas/order_created.avsc",
//			Channel: config.Channel{Name: "orders.created"},
//			Output:  "./asyncapi/producer.yaml",
//		},
//	})
//
// For more advanced usage, see the generator, converter and asyncapi packages.
package asyncapigen

import (
	"context"

	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/generator"
	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
)

// GenerateDocumentOptions contains options for document generation
type GenerateDocumentOptions = generator.GenerateDocumentOptions

// GenerateDocument generates one or more documents, either from a config file
// or from a single document description.
//
// Example:
//
//	err := asyncapigen.GenerateDocument(ctx, asyncapigen.GenerateDocumentOptions{
//		Document: config.Document{
//			Role:    "consumer",
//			Schema:  "./schemas/order_created.avsc",
//			Channel: config.Channel{Name: "order-events"},
//			Format:  "json",
//		},
//	})
func GenerateDocument(ctx context.Context, opts GenerateDocumentOptions) error {
	return generator.GenerateDocument(ctx, opts)
}

// GenerateFromConfig generates documents from a YAML configuration file.
// Optionally, you can name a single document to generate only that one.
//
// Example:
//
//	// Generate all documents from config
//	err := asyncapigen.GenerateFromConfig(ctx, "./asyncapigen.yaml")
//
//	// Generate only the consumer document
//	err := asyncapigen.GenerateFromConfig(ctx, "./asyncapigen.yaml", "consumer")
func GenerateFromConfig(ctx context.Context, configPath string, only ...string) error {
	return generator.GenerateFromConfig(ctx, configPath, only...)
}

// ConvertFile converts an Avro schema file to a JSON Schema fragment. Constructs
// that cannot be expressed are replaced by string schemas and returned
// alongside the fragment.
//
// Example:
//
//	schema, unsupported, err := asyncapigen.ConvertFile(ctx, "./schemas/order_created.avsc")
func ConvertFile(ctx context.Context, path string) (*jsonschema.Schema, []ir.UnsupportedConstruct, error) {
	conv, err := generator.ConvertFile(ctx, path, false)
	if err != nil {
		return nil, nil, err
	}
	return conv.Schema, conv.Unsupported, nil
}

// ValidateSchema checks that a file holds a valid Avro schema.
// This is useful before registering a schema or generating documents from it.
//
// Example:
//
//	if err := asyncapigen.ValidateSchema(ctx, "./schemas/order_created.avsc"); err != nil {
//		log.Fatalf("Invalid Avro schema: %v", err)
//	}
func ValidateSchema(ctx context.Context, path string) error {
	return generator.ValidateSchema(ctx, path)
}
