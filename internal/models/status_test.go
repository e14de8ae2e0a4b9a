package models_test

import (
	"testing"

	"github.com/Lllllllleong/sowforge/internal/models"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from models.DocumentStatus
		to   models.DocumentStatus
		want bool
	}{
		{"new to processing", "", models.StatusProcessingOCR, true},
		{"processing to extracted", models.StatusProcessingOCR, models.StatusTextExtracted, true},
		{"processing to failed", models.StatusProcessingOCR, models.StatusOCRFailed, true},
		{"extracted to analyzing", models.StatusTextExtracted, models.StatusAnalyzing, true},
		{"analyzing to success", models.StatusAnalyzing, models.StatusAnalyzedSuccess, true},
		{"analyzing to failed", models.StatusAnalyzing, models.StatusAnalysisFailed, true},
		{"reupload from terminal", models.StatusAnalyzedSuccess, models.StatusProcessingOCR, true},
		{"skip extraction", models.StatusProcessingOCR, models.StatusAnalyzedSuccess, false},
		{"backwards", models.StatusAnalyzedSuccess, models.StatusAnalyzing, false},
		{"new straight to analyzing", "", models.StatusAnalyzing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := models.ValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	terminal := []models.DocumentStatus{
		models.StatusAnalyzedSuccess,
		models.StatusOCRFailed,
		models.StatusAnalysisFailed,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}

	active := []models.DocumentStatus{
		models.StatusProcessingOCR,
		models.StatusTextExtracted,
		models.StatusAnalyzing,
	}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}
