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
	exportInstance *services.DocExportFunction
	once           sync.Once
	initErr        error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("CreateDoc", createDoc)
}

func main() {}

// createDoc is the HTTP handler for SOW export requests.
func createDoc(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		exportInstance, initErr = services.NewDocExport(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Doc exporter initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.DocExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.SOWID == "" {
		http.Error(w, "Missing 'projectId' or 'sowId' in request body", http.StatusBadRequest)
		return
	}

	res, err := exportInstance.Process(r.Context(), &req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Referenced project or SOW not found.", http.StatusNotFound)
			return
		}
		http.Error(w, "An error occurred while creating the Google Doc.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
