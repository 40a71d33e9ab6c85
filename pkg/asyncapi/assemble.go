package asyncapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/utils"
)

// Role is the side of the channel the documented application sits on
type Role string

const (
	RoleProducer Role = "producer"
	RoleConsumer Role = "consumer"
)

// Action returns the operation action for the role
func (r Role) Action() (Action, error) {
	switch r {
	case RoleProducer:
		return ActionSend, nil
	case RoleConsumer:
		return ActionReceive, nil
	}
	return "", fmt.Errorf("unknown role %q (expected producer or consumer)", r)
}

func (r Role) verb() string {
	if r == RoleProducer {
		return "publish"
	}
	return "receive"
}

// PayloadMode selects how the message payload schema is expressed
type PayloadMode string

const (
	// PayloadRef points at an external schema locator such as a registry URL
	PayloadRef PayloadMode = "ref"
	// PayloadInline embeds the converted JSON Schema under components.schemas
	PayloadInline PayloadMode = "inline"
	// PayloadAvro embeds the Avro schema document itself
	PayloadAvro PayloadMode = "avro"
)

// ParsePayloadMode validates a payload mode name
func ParsePayloadMode(s string) (PayloadMode, error) {
	switch m := PayloadMode(s); m {
	case PayloadRef, PayloadInline, PayloadAvro:
		return m, nil
	}
	return "", fmt.Errorf("unknown payload mode %q (expected ref, inline or avro)", s)
}

var (
	ErrMissingLocator = errors.New("payload mode ref requires a schema locator")
	ErrMissingSchema  = errors.New("payload mode inline requires a converted schema")
	ErrMissingAvro    = errors.New("payload mode avro requires an avro schema document")
)

// ServerSpec names the single server of the document
type ServerSpec struct {
	Name string
	Server
}

// ChannelSpec describes the single channel of the document
type ChannelSpec struct {
	Name string
	// Address defaults to Name
	Address     string
	Description string
}

// MessageSpec describes the single message of the document
type MessageSpec struct {
	Name        string
	Title       string
	Summary     string
	Description string
	// ContentType defaults to the Avro content type for ref and avro payloads
	// and to application/json for inline payloads
	ContentType string
}

// Params is the input of Assemble
type Params struct {
	Role               Role
	Info               Info
	DefaultContentType string
	Server             ServerSpec
	Channel            ChannelSpec
	// OperationID defaults to publish<Message> or receive<Message>
	OperationID      string
	OperationSummary string
	Message          MessageSpec

	Mode PayloadMode
	// Locator is used by PayloadRef
	Locator string
	// Schema is used by PayloadInline
	Schema *jsonschema.Schema
	// Avro is used by PayloadAvro
	Avro json.RawMessage
}

// Assemble builds a document with one server, one channel, one operation and
// one message. It fails when the input selected by Mode is missing rather than
// producing a document with a dangling payload.
func Assemble(p Params) (*Document, error) {
	action, err := p.Role.Action()
	if err != nil {
		return nil, err
	}
	if p.Channel.Name == "" {
		return nil, errors.New("channel name is required")
	}
	if p.Message.Name == "" {
		return nil, errors.New("message name is required")
	}
	if p.Server.Name == "" {
		return nil, errors.New("server name is required")
	}

	payload, schemas, defaultCT, err := buildPayload(p)
	if err != nil {
		return nil, err
	}

	contentType := p.Message.ContentType
	if contentType == "" {
		contentType = defaultCT
	}
	docContentType := p.DefaultContentType
	if docContentType == "" {
		docContentType = contentType
	}
	address := p.Channel.Address
	if address == "" {
		address = p.Channel.Name
	}
	opID := p.OperationID
	if opID == "" {
		opID = p.Role.verb() + utils.ToPascalCaseAdvanced(p.Message.Name)
	}

	channelRef := "#/channels/" + escapePointer(p.Channel.Name)
	doc := &Document{
		AsyncAPI:           Version,
		Info:               p.Info,
		DefaultContentType: docContentType,
		Servers:            map[string]Server{p.Server.Name: p.Server.Server},
		Channels: map[string]Channel{
			p.Channel.Name: {
				Address:     address,
				Description: p.Channel.Description,
				Messages: map[string]Reference{
					p.Message.Name: {Ref: "#/components/messages/" + escapePointer(p.Message.Name)},
				},
			},
		},
		Operations: map[string]Operation{
			opID: {
				Action:   action,
				Channel:  Reference{Ref: channelRef},
				Summary:  p.OperationSummary,
				Messages: []Reference{{Ref: channelRef + "/messages/" + escapePointer(p.Message.Name)}},
			},
		},
		Components: Components{
			Messages: map[string]Message{
				p.Message.Name: {
					Name:        p.Message.Name,
					Title:       p.Message.Title,
					Summary:     p.Message.Summary,
					Description: p.Message.Description,
					ContentType: contentType,
					Payload:     payload,
				},
			},
			Schemas: schemas,
		},
	}
	return doc, nil
}

func buildPayload(p Params) (Payload, map[string]*jsonschema.Schema, string, error) {
	switch p.Mode {
	case PayloadRef:
		if p.Locator == "" {
			return Payload{}, nil, "", ErrMissingLocator
		}
		return Payload{SchemaFormat: SchemaFormatAvro, Schema: Reference{Ref: p.Locator}}, nil, ContentTypeAvro, nil
	case PayloadInline:
		if p.Schema == nil {
			return Payload{}, nil, "", ErrMissingSchema
		}
		schemas := map[string]*jsonschema.Schema{p.Message.Name: p.Schema}
		return Payload{Ref: "#/components/schemas/" + escapePointer(p.Message.Name)}, schemas, ContentTypeJSON, nil
	case PayloadAvro:
		if len(p.Avro) == 0 {
			return Payload{}, nil, "", ErrMissingAvro
		}
		return Payload{SchemaFormat: SchemaFormatAvro, Schema: p.Avro}, nil, ContentTypeAvro, nil
	}
	_, err := ParsePayloadMode(string(p.Mode))
	return Payload{}, nil, "", err
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string {
	return pointerEscaper.Replace(s)
}
