package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
)

// DefaultFormat is used when a document does not name an output format
const DefaultFormat = "yaml"

// Config represents the complete configuration for document generation
type Config struct {
	// RegistryURL is the schema registry used for payload references and fetching
	RegistryURL string     `yaml:"registryUrl"`
	Registry    Registry   `yaml:"registry"`
	Documents   []Document `yaml:"documents"`
}

// Registry holds optional registry connection settings. Username and Password
// are expanded from the environment, e.g. "${REGISTRY_PASSWORD}".
type Registry struct {
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Document represents configuration for a single AsyncAPI document
type Document struct {
	// Name identifies the document for --document filtering, defaults to the role
	Name string `yaml:"name"`
	// Role is producer or consumer
	Role string `yaml:"role"`
	// Schema is the local Avro schema file (.avsc)
	Schema string `yaml:"schema"`
	// Subject is the registry subject, defaults to <channel>-value
	Subject string `yaml:"subject"`
	// Payload is ref, inline or avro
	Payload string `yaml:"payload"`
	// Fetch loads the schema from the registry, falling back to Schema
	Fetch bool `yaml:"fetch"`
	// Strict rejects schemas that are not valid Avro
	Strict bool `yaml:"strict"`
	// Format is json, yaml or markdown
	Format string `yaml:"format"`
	// Output is the file to write; empty or "-" writes to stdout
	Output string `yaml:"output"`
	// PostCommand runs after the document is written, in the output directory.
	// Uses Docker Compose array format: ["asyncapi", "validate", "producer.yaml"]
	PostCommand []string `yaml:"postCommand"`

	Title   string `yaml:"title"`
	Version string `yaml:"version"`
	// Description is a text/template rendered with the document context
	Description        string `yaml:"description"`
	DefaultContentType string `yaml:"defaultContentType"`

	Server    Server    `yaml:"server"`
	Channel   Channel   `yaml:"channel"`
	Operation Operation `yaml:"operation"`
	Message   Message   `yaml:"message"`
}

type Server struct {
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
	Description string `yaml:"description"`
}

type Channel struct {
	Name        string `yaml:"name"`
	Address     string `yaml:"address"`
	Description string `yaml:"description"`
}

type Operation struct {
	ID      string `yaml:"id"`
	Summary string `yaml:"summary"`
}

type Message struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Summary     string `yaml:"summary"`
	Description string `yaml:"description"`
	ContentType string `yaml:"contentType"`
}

// Local servers used when a document names none
var (
	DefaultProducerServer = Server{
		Name:        "development",
		Host:        "localhost:19092",
		Protocol:    "kafka",
		Description: "Local Redpanda broker",
	}
	DefaultConsumerServer = Server{
		Name:        "localstack",
		Host:        "localstack:4566",
		Protocol:    "sqs",
		Description: "LocalStack SQS endpoint",
	}
)

// Load loads configuration from a YAML file. Relative schema and output
// paths are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, filepath.Dir(path))
}

// Parse decodes, validates and defaults a configuration document. Relative
// paths are resolved against the working directory.
func Parse(data []byte) (*Config, error) {
	return parse(data, "")
}

func parse(data []byte, baseDir string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Documents) == 0 {
		return nil, errors.New("config.documents must contain at least one document")
	}
	cfg.RegistryURL = strings.TrimRight(cfg.RegistryURL, "/")
	if cfg.RegistryURL != "" && !isURL(cfg.RegistryURL) {
		return nil, fmt.Errorf("config.registryUrl must be an http(s) URL, got %q", cfg.RegistryURL)
	}
	cfg.Registry.Username = os.ExpandEnv(cfg.Registry.Username)
	cfg.Registry.Password = os.ExpandEnv(cfg.Registry.Password)

	seen := map[string]int{}
	for i := range cfg.Documents {
		d := &cfg.Documents[i]
		d.ApplyDefaults()
		if err := d.Validate(cfg.RegistryURL); err != nil {
			return nil, fmt.Errorf("documents[%d]: %w", i, err)
		}
		if j, ok := seen[d.Name]; ok {
			return nil, fmt.Errorf("documents[%d]: name %q already used by documents[%d]", i, d.Name, j)
		}
		seen[d.Name] = i
		d.Schema = absPath(baseDir, d.Schema)
		if d.Output != "-" {
			d.Output = absPath(baseDir, d.Output)
		}
	}
	return &cfg, nil
}

// ApplyDefaults fills everything that does not depend on the schema itself
func (d *Document) ApplyDefaults() {
	if d.Role == "" {
		d.Role = string(asyncapi.RoleProducer)
	}
	if d.Name == "" {
		d.Name = d.Role
	}
	if d.Payload == "" {
		switch {
		case d.Role == string(asyncapi.RoleConsumer):
			d.Payload = string(asyncapi.PayloadInline)
		case d.Fetch:
			d.Payload = string(asyncapi.PayloadAvro)
		default:
			d.Payload = string(asyncapi.PayloadRef)
		}
	}
	if d.Format == "" {
		d.Format = DefaultFormat
	}
	if d.Version == "" {
		d.Version = "1.0.0"
	}
	if d.Server.Host == "" {
		def := DefaultProducerServer
		if d.Role == string(asyncapi.RoleConsumer) {
			def = DefaultConsumerServer
		}
		if d.Server.Name == "" {
			d.Server.Name = def.Name
		}
		d.Server.Host = def.Host
		if d.Server.Protocol == "" {
			d.Server.Protocol = def.Protocol
		}
		if d.Server.Description == "" {
			d.Server.Description = def.Description
		}
	}
	if d.Server.Name == "" {
		d.Server.Name = "default"
	}
	if d.Channel.Name == "" && d.Subject != "" {
		d.Channel.Name = ChannelForSubject(d.Subject)
	}
	if d.Subject == "" && d.Channel.Name != "" {
		d.Subject = SubjectForChannel(d.Channel.Name)
	}
}

// Validate checks a defaulted document
func (d *Document) Validate(registryURL string) error {
	role := asyncapi.Role(d.Role)
	if _, err := role.Action(); err != nil {
		return err
	}
	mode, err := asyncapi.ParsePayloadMode(d.Payload)
	if err != nil {
		return err
	}
	if d.Schema == "" && !(d.Fetch && d.Subject != "") {
		return errors.New("schema is required unless fetch and subject are set")
	}
	if mode == asyncapi.PayloadRef && registryURL == "" {
		return errors.New("payload ref requires registryUrl")
	}
	if d.Fetch && registryURL == "" {
		return errors.New("fetch requires registryUrl")
	}
	if d.Fetch && d.Subject == "" {
		return errors.New("subject or channel.name is required to fetch from the registry")
	}
	if d.Server.Protocol == "" {
		return errors.New("server.protocol is required when server.host is set")
	}
	return nil
}

// ChannelForSubject derives a topic name from a TopicNameStrategy subject
func ChannelForSubject(subject string) string {
	return strings.TrimSuffix(strings.TrimSuffix(subject, "-value"), "-key")
}

// SubjectForChannel is the TopicNameStrategy value subject of a topic
func SubjectForChannel(channel string) string {
	return channel + "-value"
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func absPath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) || isURL(p) {
		return p
	}
	abs, _ := filepath.Abs(filepath.Join(baseDir, p))
	return abs
}
