package services_test

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/services"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{
		"summary": "A procurement bill for vehicle registration systems.",
		"requirements": [
			{"id": "REQ-1", "description": "The system shall process registrations online."},
			{"id": "REQ-2", "description": "The system shall retain records for seven years."}
		]
	}`

	analysis, err := services.ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis failed: %v", err)
	}
	if analysis.Summary == "" {
		t.Error("Summary is empty")
	}
	if len(analysis.Requirements) != 2 {
		t.Fatalf("len(Requirements) = %d, want 2", len(analysis.Requirements))
	}
	if analysis.Requirements[1].ID != "REQ-2" {
		t.Errorf("Requirements[1].ID = %q, want REQ-2", analysis.Requirements[1].ID)
	}
}

func TestParseAnalysisStripsFences(t *testing.T) {
	raw := "```json\n{\"summary\": \"fenced\", \"requirements\": []}\n```"
	analysis, err := services.ParseAnalysis(raw)
	if err != nil {
		t.Fatalf("ParseAnalysis failed: %v", err)
	}
	if analysis.Summary != "fenced" {
		t.Errorf("Summary = %q, want %q", analysis.Summary, "fenced")
	}
}

func TestParseAnalysisRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"not json", "I could not analyze this document.", "failed to parse"},
		{"empty summary", `{"summary": "", "requirements": []}`, "empty summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := services.ParseAnalysis(tt.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
