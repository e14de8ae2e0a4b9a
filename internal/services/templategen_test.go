package services_test

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/services"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Vehicle Registration SOW", "vehicle_registration_sow"},
		{"IT / Infrastructure", "it___infrastructure"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := services.Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewTemplateID(t *testing.T) {
	id := services.NewTemplateID("Vehicle Registration SOW")
	if !strings.HasPrefix(id, "vehicle_registration_sow_") {
		t.Errorf("id = %q, want slug prefix", id)
	}
	suffix := strings.TrimPrefix(id, "vehicle_registration_sow_")
	if len(suffix) != 8 {
		t.Errorf("suffix %q has length %d, want 8", suffix, len(suffix))
	}

	if other := services.NewTemplateID("Vehicle Registration SOW"); other == id {
		t.Errorf("two generated IDs collided: %q", id)
	}
}
