package gcp_test

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/sowforge/internal/gcp"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markdown fence", "```markdown\n# SOW\nBody\n```", "# SOW\nBody"},
		{"json fence", "```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"bare fence", "```\ntext\n```", "text"},
		{"no fence", "plain text", "plain text"},
		{"surrounding whitespace", "  \n# Title\n  ", "# Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gcp.StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectRefusal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"refusal", "I am unable to process this document.", true},
		{"refusal mid-text", "Unfortunately, as a large language model, I must decline.", true},
		{"normal output", "# Statement of Work\n1. Scope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := gcp.DetectRefusal(tt.in); got != tt.want {
				t.Errorf("DetectRefusal(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("part one "), genai.Text("part two")},
				},
			},
		},
	}
	if got := gcp.ExtractText(resp); got != "part one part two" {
		t.Errorf("ExtractText = %q, want %q", got, "part one part two")
	}

	if got := gcp.ExtractText(nil); got != "" {
		t.Errorf("ExtractText(nil) = %q, want empty", got)
	}
	if got := gcp.ExtractText(&genai.GenerateContentResponse{}); got != "" {
		t.Errorf("ExtractText(empty) = %q, want empty", got)
	}
}
