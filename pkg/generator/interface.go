package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
	"github.com/blimu-dev/asyncapi-gen/pkg/config"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator/jsondoc"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator/markdown"
	"github.com/blimu-dev/asyncapi-gen/pkg/generator/yamldoc"
	"github.com/blimu-dev/asyncapi-gen/pkg/logger"
	"github.com/blimu-dev/asyncapi-gen/pkg/registry"
	"github.com/blimu-dev/asyncapi-gen/pkg/source"
)

// Encoder defines the interface for document output formats
type Encoder interface {
	// Encode writes the document to w
	Encode(w io.Writer, doc *asyncapi.Document) error
	// GetFormat returns the format identifier for this encoder (e.g., "yaml")
	GetFormat() string
}

// Registry manages available encoders
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a new encoder registry
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[string]Encoder),
	}
}

// Register adds an encoder to the registry
func (r *Registry) Register(enc Encoder) {
	r.encoders[enc.GetFormat()] = enc
}

// Get retrieves an encoder by format
func (r *Registry) Get(format string) (Encoder, bool) {
	enc, exists := r.encoders[format]
	return enc, exists
}

// GetAvailableFormats returns all registered formats, sorted
func (r *Registry) GetAvailableFormats() []string {
	formats := make([]string, 0, len(r.encoders))
	for f := range r.encoders {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// GenerateOptions contains options for document generation
type GenerateOptions struct {
	ConfigPath string
	// Only generates the named document from config
	Only     string
	Fallback FallbackOptions
}

// FallbackOptions describe a single document when no config file is provided
type FallbackOptions struct {
	RegistryURL string
	Document    config.Document
}

// Service provides high-level document generation functionality
type Service struct {
	registry *Registry
	fetcher  source.Fetcher
	stdout   io.Writer
}

// NewService creates a new generator service with the default encoders
func NewService() *Service {
	encoders := NewRegistry()
	encoders.Register(jsondoc.NewJSONEncoder())
	encoders.Register(yamldoc.NewYAMLEncoder())
	encoders.Register(markdown.NewMarkdownEncoder())
	return &Service{
		registry: encoders,
		stdout:   os.Stdout,
	}
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(encoders *Registry) *Service {
	return &Service{
		registry: encoders,
		stdout:   os.Stdout,
	}
}

// WithFetcher makes the service fetch schemas through f instead of a registry
// client built from the configuration
func (s *Service) WithFetcher(f source.Fetcher) *Service {
	s.fetcher = f
	return s
}

// WithStdout sets where documents without an output file are written
func (s *Service) WithStdout(w io.Writer) *Service {
	s.stdout = w
	return s
}

// GetRegistry returns the encoder registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate generates documents based on the provided options
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) error {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath == "" {
		cfg, err = FallbackConfig(opts.Fallback)
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return err
	}
	return s.GenerateFromConfig(ctx, cfg, opts.Only)
}

// FallbackConfig builds a one-document configuration from flag values
func FallbackConfig(fb FallbackOptions) (*config.Config, error) {
	d := fb.Document
	registryURL := strings.TrimRight(fb.RegistryURL, "/")
	d.ApplyDefaults()
	if err := d.Validate(registryURL); err != nil {
		return nil, err
	}
	return &config.Config{
		RegistryURL: registryURL,
		Documents:   []config.Document{d},
	}, nil
}

// GenerateFromConfig builds and writes every document of cfg, or only the
// one named only
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config, only string) error {
	log := logger.FromContext(ctx)

	fetcher, err := s.fetcherFor(cfg)
	if err != nil {
		return err
	}
	builder := NewBuilder(source.NewLoader(fetcher), cfg.RegistryURL)

	matched := false
	for _, d := range cfg.Documents {
		if only != "" && d.Name != only {
			continue
		}
		matched = true

		enc, exists := s.registry.Get(d.Format)
		if !exists {
			return fmt.Errorf("document %s: unsupported format %q (available: %s)",
				d.Name, d.Format, strings.Join(s.registry.GetAvailableFormats(), ", "))
		}

		result, err := builder.Build(ctx, d)
		if err != nil {
			return fmt.Errorf("document %s: %w", d.Name, err)
		}
		for _, u := range result.Unsupported {
			log.Warn("Unsupported Avro construct replaced by string", "document", d.Name, "path", u.Path, "kind", u.Kind, "detail", u.Detail)
		}

		if err := s.write(d, enc, result.Document); err != nil {
			return fmt.Errorf("document %s: %w", d.Name, err)
		}
		log.Info("Generated AsyncAPI document", "document", d.Name, "role", d.Role, "payload", d.Payload, "output", outputLabel(d.Output))

		if err := s.executePostCommand(d); err != nil {
			return fmt.Errorf("post-command failed for document %s: %w", d.Name, err)
		}
	}
	if only != "" && !matched {
		return fmt.Errorf("no document named %q in config", only)
	}
	return nil
}

func (s *Service) fetcherFor(cfg *config.Config) (source.Fetcher, error) {
	if s.fetcher != nil {
		return s.fetcher, nil
	}
	needed := false
	for _, d := range cfg.Documents {
		needed = needed || d.Fetch
	}
	if !needed {
		return nil, nil
	}
	client, err := registry.NewClient(registry.Config{
		URL:      cfg.RegistryURL,
		Username: cfg.Registry.Username,
		Password: cfg.Registry.Password,
		Timeout:  cfg.Registry.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) write(d config.Document, enc Encoder, doc *asyncapi.Document) error {
	if d.Output == "" || d.Output == "-" {
		return enc.Encode(s.stdout, doc)
	}
	if err := os.MkdirAll(filepath.Dir(d.Output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(d.Output)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", d.Output, err)
	}
	defer file.Close()

	if err := enc.Encode(file, doc); err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.Output, err)
	}
	return file.Close()
}

// executePostCommand runs the document's post-command in the output directory
func (s *Service) executePostCommand(d config.Document) error {
	command := d.PostCommand
	if len(command) == 0 {
		return nil
	}

	cmd := exec.Command(command[0], command[1:]...)
	if d.Output != "" && d.Output != "-" {
		cmd.Dir = filepath.Dir(d.Output)
	}
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("post-command (%s) failed: %w", strings.Join(command, " "), err)
	}
	return nil
}

func outputLabel(output string) string {
	if output == "" || output == "-" {
		return "stdout"
	}
	return output
}
