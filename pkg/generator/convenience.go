package generator

import (
	"context"

	"github.com/blimu-dev/asyncapi-gen/pkg/config"
	"github.com/blimu-dev/asyncapi-gen/pkg/source"
)

// GenerateDocumentOptions contains options for the convenience GenerateDocument function
type GenerateDocumentOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// Only generates the named document from config (optional)
	Only string

	// Fallback options when no config file is provided
	RegistryURL string          // Schema registry base URL
	Document    config.Document // Single document description
}

// GenerateDocument is a convenience function for generating documents with minimal configuration
func GenerateDocument(ctx context.Context, opts GenerateDocumentOptions) error {
	return NewService().Generate(ctx, GenerateOptions{
		ConfigPath: opts.ConfigPath,
		Only:       opts.Only,
		Fallback: FallbackOptions{
			RegistryURL: opts.RegistryURL,
			Document:    opts.Document,
		},
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string, only ...string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	onlyDocument := ""
	if len(only) > 0 {
		onlyDocument = only[0]
	}

	return NewService().GenerateFromConfig(ctx, cfg, onlyDocument)
}

// ConvertFile loads a local Avro schema file and converts it to JSON Schema
func ConvertFile(ctx context.Context, path string, strict bool) (*Conversion, error) {
	s, err := source.NewLoader(nil).Load(ctx, source.Request{Path: path, Strict: strict})
	if err != nil {
		return nil, err
	}
	return ConvertSchema(s)
}

// ValidateSchema checks that a local file is a valid Avro schema
func ValidateSchema(ctx context.Context, path string) error {
	_, err := source.NewLoader(nil).Load(ctx, source.Request{Path: path, Strict: true})
	return err
}
