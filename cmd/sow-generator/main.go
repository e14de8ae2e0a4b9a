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
	sowGenInstance *services.SOWGenFunction
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("GenerateSOW", generateSOW)
}

func main() {}

// generateSOW is the HTTP handler for SOW generation requests.
func generateSOW(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		sowGenInstance, initErr = services.NewSOWGen(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: SOW generator initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.SOWGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.TemplateID == "" {
		http.Error(w, "Missing 'projectId' or 'templateId' in request body", http.StatusBadRequest)
		return
	}

	res, err := sowGenInstance.Process(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoAnalyzedDocuments):
			http.Error(w, "No successfully analyzed documents found in this project.", http.StatusBadRequest)
		case errors.Is(err, store.ErrNotFound):
			http.Error(w, "Referenced project or template not found.", http.StatusNotFound)
		default:
			// Internal detail stays in the logs.
			http.Error(w, "An error occurred during SOW generation.", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
