// Package emails holds the HTML templates the external auth provider sends
// on our behalf (signup confirmation, magic link, recovery, invite, email
// change). In production the provider substitutes the placeholders; this
// package embeds the canonical copies, validates them, and renders
// previews.
package emails

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names, matching the provider's mail-send steps.
const (
	ConfirmSignup = "confirm_signup"
	MagicLink     = "magic_link"
	Recovery      = "recovery"
	Invite        = "invite"
	EmailChange   = "email_change"
)

// Data carries the placeholder values a mail-send step substitutes.
type Data struct {
	SiteURL         string
	ConfirmationURL string
	Token           string
	Email           string
	NewEmail        string
}

// Renderer parses and renders the embedded template set.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates. It fails if any template is
// missing or malformed, so a broken template set is caught at startup.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	r := &Renderer{templates: tmpl}
	for _, name := range r.Names() {
		if tmpl.Lookup(name+".html") == nil {
			return nil, fmt.Errorf("email template %q is missing", name)
		}
	}
	return r, nil
}

// Names lists the template set in stable order.
func (r *Renderer) Names() []string {
	names := []string{ConfirmSignup, MagicLink, Recovery, Invite, EmailChange}
	sort.Strings(names)
	return names
}

// Render substitutes placeholders into one template.
func (r *Renderer) Render(name string, data Data) (string, error) {
	tmpl := r.templates.Lookup(name + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email template %q: %w", name, err)
	}
	return buf.String(), nil
}

// Raw returns the unrendered template source, which is what gets uploaded
// to the auth provider's template configuration.
func (r *Renderer) Raw(name string) (string, error) {
	content, err := templateFS.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	return string(content), nil
}
