// Package prompt renders the chat prompt templates shipped with the binary.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render executes the named template with the given data.
func Render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return sb.String(), nil
}

// QuerySystem returns the static system prompt for knowledge-base answers.
func QuerySystem() string {
	s, err := Render("query_system.tmpl", nil)
	if err != nil {
		// Static template with no variables; a render failure is a packaging bug.
		panic(err)
	}
	return s
}

// QueryStructuredSystem returns the system prompt for JSON-shaped answers.
func QueryStructuredSystem() string {
	s, err := Render("query_structured_system.tmpl", nil)
	if err != nil {
		// Static template with no variables; a render failure is a packaging bug.
		panic(err)
	}
	return s
}

// QueryUser renders the user prompt with the retrieved context and question.
func QueryUser(context, question string) (string, error) {
	return Render("query_user.tmpl", map[string]string{
		"Context":  context,
		"Question": question,
	})
}

// Rewrite renders the query-rewrite prompt for the given question.
func Rewrite(question string) (string, error) {
	return Render("query_rewrite.tmpl", map[string]string{
		"Question": question,
	})
}
