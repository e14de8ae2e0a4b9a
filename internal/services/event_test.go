package services_test

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/services"
)

func TestDecodeGCSEvent(t *testing.T) {
	direct := `{"bucket": "uploads", "name": "proj1/docA/bill.pdf"}`
	wrapped := fmt.Sprintf(`{"message": {"data": %q}}`,
		base64.StdEncoding.EncodeToString([]byte(direct)))

	tests := []struct {
		name    string
		data    string
		bucket  string
		object  string
		wantErr bool
	}{
		{"direct eventarc delivery", direct, "uploads", "proj1/docA/bill.pdf", false},
		{"pubsub push envelope", wrapped, "uploads", "proj1/docA/bill.pdf", false},
		{"not json", "not json at all", "", "", true},
		{"missing fields", `{"bucket": "uploads"}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := services.DecodeGCSEvent([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeGCSEvent failed: %v", err)
			}
			if event.Bucket != tt.bucket || event.Name != tt.object {
				t.Errorf("got (%q, %q), want (%q, %q)", event.Bucket, event.Name, tt.bucket, tt.object)
			}
		})
	}
}
