package prompt_test

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/prompt"
)

func TestRenderSubstitutesRequired(t *testing.T) {
	tmpl := prompt.New("Analyze the following:\n{DOCUMENT_TEXT}\nRespond as JSON.").
		Require("DOCUMENT_TEXT")

	got, err := tmpl.Render(map[string]string{"DOCUMENT_TEXT": "hello world"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "hello world") {
		t.Errorf("rendered output missing substituted value: %q", got)
	}
	if strings.Contains(got, "{DOCUMENT_TEXT}") {
		t.Errorf("rendered output still contains placeholder token: %q", got)
	}
}

func TestRenderFailsFast(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		vars    map[string]string
		wantErr string
	}{
		{
			name:    "placeholder absent from template",
			text:    "A prompt that forgot its placeholder.",
			vars:    map[string]string{"DOCUMENT_TEXT": "text"},
			wantErr: "missing required placeholder",
		},
		{
			name:    "value not supplied",
			text:    "Analyze: {DOCUMENT_TEXT}",
			vars:    map[string]string{},
			wantErr: "no value supplied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prompt.New(tt.text).Require("DOCUMENT_TEXT").Render(tt.vars)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRenderOptional(t *testing.T) {
	tmpl := prompt.New("Tag format: {ai_review_tag}. Body: {template_content}").
		Require("template_content").
		Allow("ai_review_tag")

	// Optional value missing: its token stays put, required still renders.
	got, err := tmpl.Render(map[string]string{"template_content": "body"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "{ai_review_tag}") {
		t.Errorf("optional token should remain when no value supplied: %q", got)
	}

	got, err = tmpl.Render(map[string]string{
		"template_content": "body",
		"ai_review_tag":    "[DRAFT-AI: {content}]",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "[DRAFT-AI: {content}]") {
		t.Errorf("optional value not substituted: %q", got)
	}
}

func TestRenderDoesNotCascade(t *testing.T) {
	// A token occurring inside an earlier-substituted value must stay
	// literal; document text can legitimately mention placeholder names.
	tmpl := prompt.New("Body: {template_content}\nTag: {ai_review_tag}").
		Require("template_content").
		Allow("ai_review_tag")

	got, err := tmpl.Render(map[string]string{
		"template_content": "this body mentions {ai_review_tag} literally",
		"ai_review_tag":    "[AI-REVIEW]",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "this body mentions {ai_review_tag} literally") {
		t.Errorf("token inside substituted value was rewritten: %q", got)
	}
	if !strings.Contains(got, "Tag: [AI-REVIEW]") {
		t.Errorf("declared token in the original text was not substituted: %q", got)
	}
}

func TestRenderLeavesUndeclaredTokens(t *testing.T) {
	// Prompt bodies carry JSON examples the model should see verbatim.
	text := `Respond as {"summary": "...", "requirements": []} given {DOCUMENT_TEXT}.`
	got, err := prompt.New(text).Require("DOCUMENT_TEXT").Render(map[string]string{"DOCUMENT_TEXT": "doc"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, `{"summary": "...", "requirements": []}`) {
		t.Errorf("undeclared brace content was altered: %q", got)
	}
}
