package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tmorren/selah/internal/emails"
)

type EmailsController struct {
	renderer *emails.Renderer
	siteURL  string
}

func NewEmailsController(renderer *emails.Renderer, siteURL string) *EmailsController {
	return &EmailsController{renderer: renderer, siteURL: siteURL}
}

// ListTemplates returns the names of the auth email templates.
// GET /api/admin/emails
func (ec *EmailsController) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": ec.renderer.Names()})
}

// PreviewTemplate renders a template with placeholder data so operators can
// review the HTML before handing it to the auth provider.
// GET /api/admin/emails/:name/preview
func (ec *EmailsController) PreviewTemplate(c *gin.Context) {
	name := c.Param("name")

	data := emails.Data{
		SiteURL:         ec.siteURL,
		ConfirmationURL: ec.siteURL + "/auth/confirm?token=preview-token",
		Token:           "preview-token",
		Email:           "reader@example.com",
		NewEmail:        "new-reader@example.com",
	}

	html, err := ec.renderer.Render(name, data)
	if err != nil {
		respondNotFound(c, "email template")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetTemplateSource returns the raw template text for export.
// GET /api/admin/emails/:name
func (ec *EmailsController) GetTemplateSource(c *gin.Context) {
	raw, err := ec.renderer.Raw(c.Param("name"))
	if err != nil {
		respondNotFound(c, "email template")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(raw))
}
