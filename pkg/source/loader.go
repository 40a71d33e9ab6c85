package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/hamba/avro/v2"

	"github.com/blimu-dev/asyncapi-gen/pkg/logger"
)

// Fetcher returns the latest schema document registered for a subject
type Fetcher interface {
	LatestSchema(ctx context.Context, subject string) ([]byte, error)
}

// Request selects where a schema document comes from
type Request struct {
	// Path of the local .avsc file
	Path string
	// Subject in the schema registry, used when Fetch is set
	Subject string
	// Fetch tries the registry first and falls back to Path
	Fetch bool
	// Strict rejects documents that are not valid Avro
	Strict bool
}

// Schema is a loaded Avro schema document
type Schema struct {
	// Raw is the document exactly as read
	Raw []byte
	// Tree is the decoded JSON value
	Tree any
	// Avro is set in strict mode
	Avro avro.Schema
	// Origin is the file path or the registry subject the document came from
	Origin   string
	Warnings []string
}

// Loader reads schema documents from disk or a registry
type Loader struct {
	registry Fetcher
}

// NewLoader creates a loader. registry may be nil when fetching is never requested.
func NewLoader(registry Fetcher) *Loader {
	return &Loader{registry: registry}
}

// Load reads the document selected by req. A failed registry fetch falls back
// to the local file and records a warning.
func (l *Loader) Load(ctx context.Context, req Request) (*Schema, error) {
	log := logger.FromContext(ctx)

	var warnings []string
	if req.Fetch {
		raw, err := l.fetch(ctx, req.Subject)
		if err == nil {
			s, err := decode(raw, "registry:"+req.Subject, req.Strict)
			if err == nil {
				log.Debug("Loaded schema from registry", "subject", req.Subject)
				return s, nil
			}
			warnings = append(warnings, fmt.Sprintf("registry schema for %s is unusable (%v), using local file", req.Subject, err))
		} else {
			warnings = append(warnings, fmt.Sprintf("could not fetch %s from registry (%v), using local file", req.Subject, err))
		}
		if req.Path == "" {
			return nil, fmt.Errorf("failed to load schema for %s: no local file to fall back to: %s", req.Subject, warnings[0])
		}
	}

	if req.Path == "" {
		return nil, fmt.Errorf("schema path is required")
	}
	raw, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", req.Path, err)
	}
	s, err := decode(raw, filepath.ToSlash(req.Path), req.Strict)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema file %s: %w", req.Path, err)
	}
	s.Warnings = warnings
	for _, w := range warnings {
		log.Warn(w)
	}
	return s, nil
}

func (l *Loader) fetch(ctx context.Context, subject string) ([]byte, error) {
	if l.registry == nil {
		return nil, fmt.Errorf("no schema registry configured")
	}
	if subject == "" {
		return nil, fmt.Errorf("subject is required to fetch from the registry")
	}
	return l.registry.LatestSchema(ctx, subject)
}

func decode(raw []byte, origin string, strict bool) (*Schema, error) {
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	s := &Schema{Raw: raw, Tree: tree, Origin: origin}
	if strict {
		parsed, err := Validate(raw)
		if err != nil {
			return nil, err
		}
		s.Avro = parsed
	}
	return s, nil
}

// Validate parses raw as an Avro schema. Each call uses its own name cache so
// documents never see each other's named types.
func Validate(raw []byte) (avro.Schema, error) {
	s, err := avro.ParseWithCache(string(raw), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("invalid Avro schema: %w", err)
	}
	return s, nil
}
