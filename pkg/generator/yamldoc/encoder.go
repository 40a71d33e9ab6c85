package yamldoc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
)

// YAMLEncoder implements the Encoder interface for YAML documents
type YAMLEncoder struct{}

// NewYAMLEncoder creates a new YAML encoder
func NewYAMLEncoder() *YAMLEncoder {
	return &YAMLEncoder{}
}

// GetFormat returns the encoder format identifier
func (e *YAMLEncoder) GetFormat() string {
	return "yaml"
}

// Encode writes doc as block style YAML
func (e *YAMLEncoder) Encode(w io.Writer, doc *asyncapi.Document) error {
	raw, err := Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// Marshal encodes v as YAML. Values go through their JSON form first so json
// tags, custom marshalers and ordered properties decide the key order.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("failed to re-read document: %w", err)
	}
	plain(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// plain drops the flow and quoting styles inherited from JSON. The encoder
// still quotes scalars whose plain form would change type.
func plain(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plain(c)
	}
}
