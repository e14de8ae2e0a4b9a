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
	preprocessInstance *services.PreprocessFunction
	once               sync.Once
	initErr            error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("DocPreprocessTrigger", docPreprocessTrigger)
}

// main is required by the Go Functions Framework.
func main() {}

// docPreprocessTrigger is the Cloud Function entry point for new uploads.
func docPreprocessTrigger(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		preprocessInstance, initErr = services.NewPreprocess(context.Background())
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

	return preprocessInstance.Process(ctx, gcsEvent)
}
