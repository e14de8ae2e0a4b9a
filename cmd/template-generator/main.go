package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/services"
	"github.com/Lllllllleong/sowforge/internal/store"
)

var (
	templateGenInstance *services.TemplateGenFunction
	once                sync.Once
	initErr             error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("GenerateTemplate", generateTemplate)
}

func main() {}

// generateTemplate is the HTTP handler for template generation requests.
func generateTemplate(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		templateGenInstance, initErr = services.NewTemplateGen(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Template generator initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.TemplateGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if len(req.SampleFiles) == 0 || req.TemplateName == "" {
		http.Error(w, "Missing 'sample_files' or 'template_name' in request body", http.StatusBadRequest)
		return
	}

	res, err := templateGenInstance.Process(r.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Referenced prompt or sample not found.", http.StatusNotFound)
			return
		}
		http.Error(w, "An error occurred during template generation.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
