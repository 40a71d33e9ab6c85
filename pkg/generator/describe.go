package generator

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/asyncapi-gen/pkg/asyncapi"
	"github.com/blimu-dev/asyncapi-gen/pkg/config"
)

//go:embed templates/*
var templatesFS embed.FS

// DescriptionData is what description templates are rendered with
type DescriptionData struct {
	Title       string
	Version     string
	Role        string
	Message     string
	Channel     string
	Subject     string
	Namespace   string
	Doc         string
	SchemaPath  string
	RegistryURL string
	Server      config.Server
}

// renderDescription renders the configured description, or the role's
// default one, as a text/template with sprig functions
func renderDescription(d config.Document, n names, registryURL string) (string, error) {
	data := DescriptionData{
		Title:       n.title,
		Version:     d.Version,
		Role:        d.Role,
		Message:     n.message,
		Channel:     n.channel,
		Subject:     d.Subject,
		Namespace:   n.namespace,
		Doc:         n.doc,
		SchemaPath:  n.origin,
		RegistryURL: registryURL,
		Server:      d.Server,
	}

	name := "description"
	text := d.Description
	if text == "" {
		name = "producer.md.gotmpl"
		if d.Role == string(asyncapi.RoleConsumer) {
			name = "consumer.md.gotmpl"
		}
		content, err := templatesFS.ReadFile("templates/" + name)
		if err != nil {
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
		text = string(content)
	}
	return RenderTemplate(name, text, data)
}

// RenderTemplate executes text with the sprig function map
func RenderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return b.String(), nil
}
