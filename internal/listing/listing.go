package listing

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

const (
	listingTemplateNameConstant        = "listing"
	escapeFunctionNameConstant         = "escape"
	listingRenderErrorTemplateConstant = "unable to render listing: %w"
)

const listingTemplateConstant = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>apks</title>
</head>
<body>
<pre>
{{range .}}<a href="apk/{{escape .APKFileName}}">{{escape .Name}}</a>
{{end}}</pre>
</body>
</html>`

var entityEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

var listingTemplate = newListingTemplate()

// Link is one anchor of the listing.
type Link struct {
	Name        string
	APKFileName string
}

// Escape replaces the HTML special characters &, <, >, " and ' with entities.
func Escape(text string) string {
	return entityEscaper.Replace(text)
}

// Render writes the listing page with one anchor per link, in order.
func Render(writer io.Writer, links []Link) error {
	if renderError := listingTemplate.Execute(writer, links); renderError != nil {
		return fmt.Errorf(listingRenderErrorTemplateConstant, renderError)
	}
	return nil
}

func newListingTemplate() *template.Template {
	functions := template.FuncMap{escapeFunctionNameConstant: Escape}
	return template.Must(template.New(listingTemplateNameConstant).Funcs(functions).Parse(listingTemplateConstant))
}
