package jsondoc

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
)

// JSONEncoder implements the Encoder interface for JSON documents
type JSONEncoder struct {
	// Indent defaults to two spaces
	Indent string
}

// NewJSONEncoder creates a new JSON encoder
func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{Indent: "  "}
}

// GetFormat returns the encoder format identifier
func (e *JSONEncoder) GetFormat() string {
	return "json"
}

// Encode writes doc as indented JSON
func (e *JSONEncoder) Encode(w io.Writer, doc *asyncapi.Document) error {
	raw, err := Marshal(doc, e.Indent)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// Marshal encodes v as JSON without HTML escaping, followed by a newline
func Marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
