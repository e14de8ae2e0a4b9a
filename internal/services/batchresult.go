package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/paths"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// BatchResultConfig holds bootstrap configuration for the reconciler.
type BatchResultConfig struct {
	ProjectID string
}

// BatchResultFunction correlates a batch extraction job's output file back
// to the logical document that submitted it. The route runs in a separate
// invocation from the router; the object path is the only shared context.
type BatchResultFunction struct {
	objects  *gcp.Objects
	store    *store.Store
	settings *models.GlobalConfig
	config   BatchResultConfig
}

// NewBatchResult creates a new BatchResultFunction instance.
func NewBatchResult(ctx context.Context) (*BatchResultFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	st := store.New(firestoreClient)

	settings, err := st.LoadGlobalConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global config: %w", err)
	}

	objects, err := gcp.NewObjects(ctx)
	if err != nil {
		return nil, err
	}

	return &BatchResultFunction{
		objects:  objects,
		store:    st,
		settings: settings,
		config:   BatchResultConfig{ProjectID: projectID},
	}, nil
}

// ParseBatchResult extracts the aggregated text field from a batch job's
// result JSON.
func ParseBatchResult(data []byte) (string, error) {
	var payload models.BatchResultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("failed to parse batch result payload: %w", err)
	}
	return payload.Text, nil
}

// Process handles the arrival of one batch output object. Unlike the
// router, an undecodable path here is a surfaced error: a result file at an
// unexpected location means the job's output configuration is wrong.
func (f *BatchResultFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if !strings.HasSuffix(e.Name, ".json") {
		logCtx.Info("Ignoring non-JSON object in batch output bucket.")
		return nil
	}

	ref, err := paths.Decode(e.Name)
	if err != nil {
		logCtx.Error("Batch result landed at an undecodable path.", "error", err)
		return fmt.Errorf("batch result path %q: %w", e.Name, err)
	}
	logCtx = logCtx.With("projectId", ref.ProjectID, "documentId", ref.DocumentID)
	logCtx.Info("Reconciling batch extraction result.")

	data, err := f.objects.DownloadBytes(ctx, e.Bucket, e.Name)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to download batch result", err)
	}

	text, err := ParseBatchResult(data)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to parse batch result", err)
	}

	if text == "" {
		logCtx.Warn("Batch result contains no text.")
		f.recordFailure(ctx, ref, "Batch extraction did not return any text.")
		return nil
	}

	textPath := paths.EncodeTextPath(ref.ProjectID, ref.DocumentID)
	if err := f.objects.UploadText(ctx, f.settings.ProcessedTextBucket, textPath, text); err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to save extracted text", err)
	}

	if ref.IsTemplateJob() {
		err := f.store.UpdateTemplateJobProgress(ctx, ref.TemplateJobID, ref.DocumentID, "Text extracted, ready for aggregation.")
		if err != nil {
			logCtx.Error("Failed to update template job progress.", "jobId", ref.TemplateJobID, "error", err)
			return err
		}
		logCtx.Info("Template job file reconciled.", "jobId", ref.TemplateJobID, "textPath", textPath)
		return nil
	}

	err = f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusTextExtracted, nil)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to update status to TEXT_EXTRACTED", err)
	}

	logCtx.Info("Batch result reconciled.", "textPath", textPath)
	return nil
}

// recordFailure routes a failure note to the record that tracks this file:
// the source document for project uploads, the job progress map for
// template-aggregation jobs. Both writes are best-effort.
func (f *BatchResultFunction) recordFailure(ctx context.Context, ref paths.Ref, message string) {
	if ref.IsTemplateJob() {
		if err := f.store.UpdateTemplateJobProgress(ctx, ref.TemplateJobID, ref.DocumentID, message); err != nil {
			slog.Error("CRITICAL: Failed to record template job failure.", "jobId", ref.TemplateJobID, "error", err)
		}
		return
	}
	f.store.MarkDocumentFailed(ctx, ref.ProjectID, ref.DocumentID, models.StatusOCRFailed, message)
}

func (f *BatchResultFunction) handleError(ctx context.Context, logCtx *slog.Logger, ref paths.Ref, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	f.recordFailure(ctx, ref, fullError)
	return errors.New(fullError)
}
