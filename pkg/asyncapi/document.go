package asyncapi

import (
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Version is the AsyncAPI version written into every document
const Version = "3.0.0"

// Content types used by generated documents
const (
	ContentTypeAvro = "application/vnd.apache.avro+json"
	ContentTypeJSON = "application/json"
	// SchemaFormatAvro tags payloads that carry or reference an Avro schema
	SchemaFormatAvro = "application/vnd.apache.avro+json;version=1.9.0"
)

// Document is an AsyncAPI document. Field order follows the document skeleton
// so encoders emit sections in the conventional order.
type Document struct {
	AsyncAPI           string               `json:"asyncapi"`
	Info               Info                 `json:"info"`
	DefaultContentType string               `json:"defaultContentType"`
	Servers            map[string]Server    `json:"servers"`
	Channels           map[string]Channel   `json:"channels"`
	Operations         map[string]Operation `json:"operations"`
	Components         Components           `json:"components"`
}

type Info struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

type Server struct {
	Host        string `json:"host"`
	Protocol    string `json:"protocol"`
	Description string `json:"description,omitempty"`
}

type Channel struct {
	Address     string               `json:"address"`
	Description string               `json:"description,omitempty"`
	Messages    map[string]Reference `json:"messages"`
}

// Action is what an application does on a channel
type Action string

const (
	ActionSend    Action = "send"
	ActionReceive Action = "receive"
)

type Operation struct {
	Action   Action      `json:"action"`
	Channel  Reference   `json:"channel"`
	Summary  string      `json:"summary,omitempty"`
	Messages []Reference `json:"messages"`
}

type Components struct {
	Messages map[string]Message            `json:"messages"`
	Schemas  map[string]*jsonschema.Schema `json:"schemas,omitempty"`
}

type Message struct {
	Name        string  `json:"name"`
	Title       string  `json:"title,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	Description string  `json:"description,omitempty"`
	ContentType string  `json:"contentType,omitempty"`
	Payload     Payload `json:"payload"`
}

// Payload is either a local reference ($ref only) or a multi-format schema
// (schemaFormat plus schema).
type Payload struct {
	Ref          string `json:"$ref,omitempty"`
	SchemaFormat string `json:"schemaFormat,omitempty"`
	// Schema is a Reference for externalised schemas or the raw Avro document
	Schema any `json:"schema,omitempty"`
}

// Reference is a JSON reference object
type Reference struct {
	Ref string `json:"$ref"`
}

// Map returns the document as a generic tree of map[string]any and []any
func (d *Document) Map() (map[string]any, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
