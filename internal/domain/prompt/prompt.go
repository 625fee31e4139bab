// Package prompt renders the system and user prompts sent to the
// text-generation collaborator.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(userPromptTmpl))

// MaxWeakAreas is the number of weak areas listed in the user prompt.
const MaxWeakAreas = 5

// System returns the fixed instructions for the collaborator.
func System() string {
	return strings.TrimSpace(systemPrompt)
}

// UserData carries the values rendered into the user prompt.
type UserData struct {
	Percentage int
	WeakAreas  []string
	Struggles  []string
	// Assessment is the raw self-assessment as JSON.
	Assessment string
	Catalog    string
}

// User renders the user prompt. Only the first MaxWeakAreas weak areas are
// included.
func User(data UserData) (string, error) {
	if len(data.WeakAreas) > MaxWeakAreas {
		data.WeakAreas = data.WeakAreas[:MaxWeakAreas]
	}
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render user prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
