package services_test

import (
	"testing"

	"github.com/Lllllllleong/sowforge/internal/services"
)

func TestParseBatchResult(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{
			name:    "text with extra fields",
			payload: `{"text": "extracted content", "pages": [{"pageNumber": 1}], "mimeType": "application/pdf"}`,
			want:    "extracted content",
		},
		{
			name:    "empty text field",
			payload: `{"text": "", "pages": []}`,
			want:    "",
		},
		{
			name:    "text field absent",
			payload: `{"pages": []}`,
			want:    "",
		},
		{
			name:    "not json",
			payload: `<html>access denied</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.ParseBatchResult([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBatchResult failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBatchResult = %q, want %q", got, tt.want)
			}
		})
	}
}
