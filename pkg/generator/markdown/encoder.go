package markdown

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
)

//go:embed templates/*
var templatesFS embed.FS

const documentTemplate = "document.md.gotmpl"

// MarkdownEncoder implements the Encoder interface for human readable docs
type MarkdownEncoder struct{}

// NewMarkdownEncoder creates a new Markdown encoder
func NewMarkdownEncoder() *MarkdownEncoder {
	return &MarkdownEncoder{}
}

// GetFormat returns the encoder format identifier
func (e *MarkdownEncoder) GetFormat() string {
	return "markdown"
}

// Property is one row of a payload table
type Property struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Encode renders doc as a Markdown page
func (e *MarkdownEncoder) Encode(w io.Writer, doc *asyncapi.Document) error {
	funcMap := template.FuncMap{}
	for k, v := range sprig.TxtFuncMap() {
		funcMap[k] = v
	}
	funcMap["refName"] = refName
	funcMap["cell"] = cell
	funcMap["properties"] = Properties
	funcMap["isReference"] = func(v any) bool {
		_, ok := v.(asyncapi.Reference)
		return ok
	}
	funcMap["schemaFor"] = func(ref string) *jsonschema.Schema {
		return doc.Components.Schemas[refName(ref)]
	}
	funcMap["prettyJSON"] = prettyJSON
	funcMap["messageNames"] = func(m map[string]asyncapi.Reference) []string {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}

	tmplContent, err := templatesFS.ReadFile("templates/" + documentTemplate)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", documentTemplate, err)
	}
	tmpl, err := template.New(documentTemplate).Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", documentTemplate, err)
	}
	if err := tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", documentTemplate, err)
	}
	return nil
}

// Properties lists the top-level properties of an object schema in
// declaration order
func Properties(s *jsonschema.Schema) []Property {
	if s == nil || s.Properties == nil {
		return nil
	}
	required := map[string]bool{}
	for _, r := range s.Required {
		required[r] = true
	}
	out := make([]Property, 0, s.Properties.Len())
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Property{
			Name:        pair.Key,
			Type:        TypeLabel(pair.Value),
			Required:    required[pair.Key],
			Description: pair.Value.Description,
		})
	}
	return out
}

// TypeLabel is a short human readable type, e.g. "array<string>" or
// "string (date-time)"
func TypeLabel(s *jsonschema.Schema) string {
	if s == nil {
		return ""
	}
	switch s.Type {
	case "array":
		return "array<" + TypeLabel(s.Items) + ">"
	case "object":
		if s.AdditionalProperties != nil && s.Properties == nil {
			return "map<" + TypeLabel(s.AdditionalProperties) + ">"
		}
		return "object"
	case "string":
		if len(s.Enum) > 0 {
			symbols := make([]string, 0, len(s.Enum))
			for _, e := range s.Enum {
				symbols = append(symbols, fmt.Sprint(e))
			}
			return "enum (" + strings.Join(symbols, ", ") + ")"
		}
	}
	if s.Format != "" {
		return s.Type + " (" + s.Format + ")"
	}
	return s.Type
}

func refName(ref string) string {
	i := strings.LastIndex(ref, "/")
	name := ref[i+1:]
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(name)
}

// cell keeps a value on one table row
func cell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.Join(strings.Fields(s), " ")
}

func prettyJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
