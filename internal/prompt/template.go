// Package prompt renders stored prompt texts with named placeholder
// substitution. Prompts live in Firestore and use {NAME} tokens; a required
// token that is absent from the prompt body, or that has no value supplied,
// fails the render instead of silently producing a prompt with literal
// tokens or dropped content.
package prompt

import (
	"fmt"
	"strings"
)

// Template wraps a raw prompt body with its declared placeholders.
type Template struct {
	text     string
	required []string
	optional []string
}

// New wraps a prompt body. Declare placeholders with Require and Allow
// before rendering.
func New(text string) *Template {
	return &Template{text: text}
}

// Require declares placeholders that must appear in the body and must be
// given a value.
func (t *Template) Require(names ...string) *Template {
	t.required = append(t.required, names...)
	return t
}

// Allow declares placeholders that are substituted when present but may be
// missing from either the body or the values.
func (t *Template) Allow(names ...string) *Template {
	t.optional = append(t.optional, names...)
	return t
}

// Render substitutes declared placeholders with their values. Brace tokens
// that were never declared are left untouched; prompt bodies legitimately
// contain JSON examples and nested tag formats meant for the model. All
// substitutions happen in a single pass over the original text, so a token
// occurring inside a substituted value stays literal.
func (t *Template) Render(vars map[string]string) (string, error) {
	pairs := make([]string, 0, 2*(len(t.required)+len(t.optional)))
	for _, name := range t.required {
		token := "{" + name + "}"
		if !strings.Contains(t.text, token) {
			return "", fmt.Errorf("prompt is missing required placeholder %s", token)
		}
		val, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("no value supplied for required placeholder %s", token)
		}
		pairs = append(pairs, token, val)
	}
	for _, name := range t.optional {
		if val, ok := vars[name]; ok {
			pairs = append(pairs, "{"+name+"}", val)
		}
	}
	return strings.NewReplacer(pairs...).Replace(t.text), nil
}
