package services_test

import (
	"testing"

	"github.com/Lllllllleong/sowforge/internal/services"
)

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name      string
		pageCount int
		limit     int
		want      services.ProcessingMethod
	}{
		{"well under limit", 3, 15, services.MethodSync},
		{"exactly at limit", 15, 15, services.MethodSync},
		{"one over limit", 16, 15, services.MethodBatch},
		{"far over limit", 400, 15, services.MethodBatch},
		{"single page, limit one", 1, 1, services.MethodSync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.SelectMethod(tt.pageCount, tt.limit); got != tt.want {
				t.Errorf("SelectMethod(%d, %d) = %q, want %q", tt.pageCount, tt.limit, got, tt.want)
			}
		})
	}
}
