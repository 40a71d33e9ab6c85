package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
	"github.com/blimu-dev/asyncapi-gen/pkg/config"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator/jsondoc"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator/yamldoc"
	"github.com/blimu-dev/asyncapi-gen/pkg/logger"
	"github.com/blimu-dev/asyncapi-gen/pkg/payload"
)

type FallbackParams struct {
	Role        string
	Schema      string
	Subject     string
	Channel     string
	RegistryURL string
	Payload     string
	Fetch       bool
	// Inline is shorthand for Payload avro with Fetch
	Inline bool
	Strict bool
	Format string
	Output string
	Title  string
}

type RunGenerateParams struct {
	ConfigPath string
	Document   string
	Fallback   FallbackParams
	Stdout     io.Writer
}

func RunGenerate(ctx context.Context, p RunGenerateParams) error {
	svc := generator.NewService().WithStdout(stdout(p.Stdout))
	if p.ConfigPath != "" {
		cfg, err := config.Load(p.ConfigPath)
		if err != nil {
			return err
		}
		return svc.GenerateFromConfig(ctx, cfg, p.Document)
	}

	fb := p.Fallback
	if fb.Schema == "" && !(fb.Inline || fb.Fetch) {
		return errors.New("either --config or --schema must be provided")
	}
	if fb.Inline {
		if fb.Payload != "" && fb.Payload != string(asyncapi.PayloadAvro) {
			return fmt.Errorf("--inline cannot be combined with --payload %s", fb.Payload)
		}
		fb.Payload = string(asyncapi.PayloadAvro)
		fb.Fetch = true
	}
	cfg, err := generator.FallbackConfig(generator.FallbackOptions{
		RegistryURL: fb.RegistryURL,
		Document: config.Document{
			Role:    fb.Role,
			Schema:  absPath(fb.Schema),
			Subject: fb.Subject,
			Payload: fb.Payload,
			Fetch:   fb.Fetch,
			Strict:  fb.Strict,
			Format:  fb.Format,
			Output:  outputPath(fb.Output),
			Title:   fb.Title,
			Channel: config.Channel{Name: fb.Channel},
		},
	})
	if err != nil {
		return err
	}
	return svc.GenerateFromConfig(ctx, cfg, "")
}

type RunConvertParams struct {
	Schema string
	Strict bool
	// Format is json or yaml
	Format string
	Output string
	Stdout io.Writer
}

// RunConvert writes the JSON Schema fragment of an Avro schema file
func RunConvert(ctx context.Context, p RunConvertParams) error {
	log := logger.FromContext(ctx)

	conv, err := generator.ConvertFile(ctx, p.Schema, p.Strict)
	if err != nil {
		return err
	}
	for _, u := range conv.Unsupported {
		log.Warn("Unsupported Avro construct replaced by string", "path", u.Path, "kind", u.Kind, "detail", u.Detail)
	}

	var out []byte
	switch p.Format {
	case "", "json":
		out, err = jsondoc.Marshal(conv.Schema, "  ")
	case "yaml":
		out, err = yamldoc.Marshal(conv.Schema)
	default:
		return fmt.Errorf("unsupported format %q (expected json or yaml)", p.Format)
	}
	if err != nil {
		return err
	}
	return writeOutput(outputPath(p.Output), stdout(p.Stdout), out)
}

// RunValidate checks that a file holds a valid Avro schema
func RunValidate(ctx context.Context, schema string) error {
	if err := generator.ValidateSchema(ctx, schema); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Schema is valid", "schema", schema)
	return nil
}

type RunCheckParams struct {
	Schema  string
	Message string
}

// RunCheck validates a sample JSON message against the converted schema
func RunCheck(ctx context.Context, p RunCheckParams) error {
	conv, err := generator.ConvertFile(ctx, p.Schema, false)
	if err != nil {
		return err
	}
	message, err := readInput(p.Message)
	if err != nil {
		return err
	}
	if err := payload.Validate(conv.Schema, message); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("Message matches schema", "schema", p.Schema, "message", p.Message)
	return nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
