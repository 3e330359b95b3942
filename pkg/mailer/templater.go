package mailer

import (
	"bytes"
	"text/template"
)

// RenderTemplate renders an email or notification template with the provided data.
func RenderTemplate(tmpl string, data any) (string, error) {
	tpl, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
