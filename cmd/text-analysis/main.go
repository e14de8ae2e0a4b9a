package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/sowforge/internal/services"
)

var (
	analysisInstance *services.AnalysisFunction
	once             sync.Once
	initErr          error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("AnalyzeText", analyzeText)
}

func main() {}

// analyzeText is the Cloud Function entry point for extracted-text artifacts.
func analyzeText(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		analysisInstance, initErr = services.NewAnalysis(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	gcsEvent, err := services.DecodeGCSEvent(e.Data())
	if err != nil {
		slog.Error("Failed to decode event data", "error", err, "data", string(e.Data()))
		return err
	}

	return analysisInstance.Process(ctx, gcsEvent)
}
