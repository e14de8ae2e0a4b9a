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
	reconcilerInstance *services.BatchResultFunction
	once               sync.Once
	initErr            error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("HandleBatchResult", handleBatchResult)
}

func main() {}

// handleBatchResult is the Cloud Function entry point for batch extraction
// output objects.
func handleBatchResult(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		reconcilerInstance, initErr = services.NewBatchResult(context.Background())
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

	return reconcilerInstance.Process(ctx, gcsEvent)
}
