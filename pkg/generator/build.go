package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
	"github.com/blimu-dev/asyncapi-gen/pkg/config"
	"github.com/blimu-dev/asyncapi-gen/pkg/converter"
	"github.com/blimu-dev/asyncapi-gen/pkg/ir"
	"github.com/blimu-dev/asyncapi-gen/pkg/registry"
	"github.com/blimu-dev/asyncapi-gen/pkg/source"
	"github.com/blimu-dev/asyncapi-gen/pkg/utils"
)

// Result is one assembled document and what happened while building it
type Result struct {
	Document *asyncapi.Document
	// Schema is the converted payload schema, also set when it is not inlined
	Schema      *jsonschema.Schema
	Unsupported []ir.UnsupportedConstruct
	Warnings    []string
}

// Builder turns a configured document into an AsyncAPI document
type Builder struct {
	loader      *source.Loader
	registryURL string
}

// NewBuilder creates a builder. registryURL is used for payload references.
func NewBuilder(loader *source.Loader, registryURL string) *Builder {
	return &Builder{loader: loader, registryURL: strings.TrimRight(registryURL, "/")}
}

// Build loads the schema of d, converts it and assembles the document
func (b *Builder) Build(ctx context.Context, d config.Document) (*Result, error) {
	schema, err := b.loader.Load(ctx, source.Request{
		Path:    d.Schema,
		Subject: d.Subject,
		Fetch:   d.Fetch,
		Strict:  d.Strict,
	})
	if err != nil {
		return nil, err
	}

	conv, err := ConvertSchema(schema)
	if err != nil {
		return nil, err
	}
	record, _ := conv.Node.(*ir.Record)

	mode := asyncapi.PayloadMode(d.Payload)
	role := asyncapi.Role(d.Role)
	names, err := resolveNames(d, record, schema)
	if err != nil {
		return nil, err
	}
	if d.Subject == "" {
		d.Subject = config.SubjectForChannel(names.channel)
	}

	description, err := renderDescription(d, names, b.registryURL)
	if err != nil {
		return nil, err
	}

	params := asyncapi.Params{
		Role:               role,
		Info:               asyncapi.Info{Title: names.title, Version: d.Version, Description: description},
		DefaultContentType: d.DefaultContentType,
		Server: asyncapi.ServerSpec{
			Name:   d.Server.Name,
			Server: asyncapi.Server{Host: d.Server.Host, Protocol: d.Server.Protocol, Description: d.Server.Description},
		},
		Channel: asyncapi.ChannelSpec{
			Name:        names.channel,
			Address:     d.Channel.Address,
			Description: names.channelDescription,
		},
		OperationID:      d.Operation.ID,
		OperationSummary: names.operationSummary,
		Message: asyncapi.MessageSpec{
			Name:        names.message,
			Title:       names.messageTitle,
			Summary:     names.messageSummary,
			Description: names.messageDescription,
			ContentType: d.Message.ContentType,
		},
		Mode: mode,
	}
	switch mode {
	case asyncapi.PayloadRef:
		params.Locator = registry.SchemaURL(b.registryURL, d.Subject)
	case asyncapi.PayloadInline:
		params.Schema = conv.Schema
	case asyncapi.PayloadAvro:
		var buf bytes.Buffer
		if err := json.Compact(&buf, schema.Raw); err != nil {
			return nil, fmt.Errorf("failed to compact Avro schema: %w", err)
		}
		params.Avro = buf.Bytes()
	}

	doc, err := asyncapi.Assemble(params)
	if err != nil {
		return nil, err
	}
	return &Result{
		Document:    doc,
		Schema:      conv.Schema,
		Unsupported: conv.Unsupported,
		Warnings:    schema.Warnings,
	}, nil
}

// Conversion is a schema document turned into a JSON Schema fragment
type Conversion struct {
	Node ir.Node
	converter.Result
}

// ConvertSchema builds the schema tree from a loaded document and converts
// it. Strictly loaded documents are read from their parsed Avro form.
func ConvertSchema(s *source.Schema) (*Conversion, error) {
	if s == nil {
		return nil, errors.New("no schema loaded")
	}
	var (
		node    ir.Node
		parsing []ir.UnsupportedConstruct
	)
	if s.Avro != nil {
		node, parsing = ir.FromAvro(s.Avro)
	} else {
		node, parsing = ir.Parse(s.Tree)
	}
	res := converter.Convert(node)
	res.Unsupported = append(parsing, res.Unsupported...)
	return &Conversion{Node: node, Result: res}, nil
}

type names struct {
	title              string
	channel            string
	channelDescription string
	operationSummary   string
	message            string
	messageTitle       string
	messageSummary     string
	messageDescription string

	namespace string
	doc       string
	origin    string
}

// resolveNames fills what the configuration leaves open from the schema
func resolveNames(d config.Document, record *ir.Record, schema *source.Schema) (names, error) {
	n := names{
		title:              d.Title,
		channel:            d.Channel.Name,
		channelDescription: d.Channel.Description,
		operationSummary:   d.Operation.Summary,
		message:            d.Message.Name,
		messageTitle:       d.Message.Title,
		messageSummary:     d.Message.Summary,
		messageDescription: d.Message.Description,
		origin:             displayPath(schema.Origin),
	}
	if record != nil {
		n.namespace = record.Namespace
		n.doc = record.Doc
		if n.message == "" {
			n.message = record.Name
		}
	}
	if n.message == "" {
		return n, errors.New("message.name is required when the schema is not a named record")
	}

	words := utils.ToTitle(n.message)
	if n.channel == "" {
		n.channel = utils.ToKebabCase(n.message)
	}
	if n.title == "" {
		if d.Role == string(asyncapi.RoleConsumer) {
			n.title = words + " Consumer"
		} else {
			n.title = words + " Producer"
		}
	}
	if n.messageTitle == "" {
		n.messageTitle = words + " Event"
	}
	if n.messageSummary == "" {
		n.messageSummary = n.doc
	}
	if n.operationSummary == "" {
		if d.Role == string(asyncapi.RoleConsumer) {
			n.operationSummary = fmt.Sprintf("Receive %s events from %s", n.message, n.channel)
		} else {
			n.operationSummary = fmt.Sprintf("Publish %s events to %s", n.message, n.channel)
		}
	}
	if n.channelDescription == "" {
		n.channelDescription = fmt.Sprintf("Channel carrying %s events", n.message)
	}
	if n.messageDescription == "" && d.Payload == string(asyncapi.PayloadInline) {
		ns := n.namespace
		if ns == "" {
			ns = "N/A"
		}
		n.messageDescription = fmt.Sprintf("Generated from Avro schema: %s\nNamespace: %s", n.origin, ns)
	}
	return n, nil
}

// displayPath shows local schema files relative to the working directory
// when they live below it
func displayPath(p string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(wd, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
