package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/paths"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// ProcessingMethod names the extraction route chosen for a document.
type ProcessingMethod string

const (
	MethodSync  ProcessingMethod = "sync"
	MethodBatch ProcessingMethod = "batch"
)

// SelectMethod decides sync versus batch extraction. A page count at the
// limit exactly takes the synchronous route.
func SelectMethod(pageCount, syncPageLimit int) ProcessingMethod {
	if pageCount <= syncPageLimit {
		return MethodSync
	}
	return MethodBatch
}

// The router holds its collaborators behind narrow interfaces, satisfied by
// *gcp.Objects, *store.Store and *gcp.DocAIClient.

type objectStore interface {
	DownloadBytes(ctx context.Context, bucket, object string) ([]byte, error)
	UploadText(ctx context.Context, bucket, object, content string) error
}

type documentStore interface {
	EnsureProject(ctx context.Context, projectID string) error
	SetDocumentStatus(ctx context.Context, projectID, documentID string, status models.DocumentStatus, extra map[string]any) error
	MarkDocumentFailed(ctx context.Context, projectID, documentID string, status models.DocumentStatus, message string)
}

type pdfExtractor interface {
	ExtractSync(ctx context.Context, pdfBytes []byte) (string, error)
	SubmitBatch(ctx context.Context, inputURI, outputURI string) error
}

// PreprocessConfig holds bootstrap configuration for the OCR router.
type PreprocessConfig struct {
	ProjectID string
}

// PreprocessFunction routes newly uploaded documents to synchronous or
// batch text extraction based on page count.
type PreprocessFunction struct {
	objects  objectStore
	store    documentStore
	docai    pdfExtractor
	settings *models.GlobalConfig
	config   PreprocessConfig
}

// NewPreprocess creates a new PreprocessFunction instance.
func NewPreprocess(ctx context.Context) (*PreprocessFunction, error) {
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

	docaiClient, err := gcp.NewDocAIClient(ctx, settings)
	if err != nil {
		return nil, err
	}

	slog.Info("OCR router initialized.", "syncPageLimit", settings.SyncPageLimit)
	return &PreprocessFunction{
		objects:  objects,
		store:    st,
		docai:    docaiClient,
		settings: settings,
		config:   PreprocessConfig{ProjectID: projectID},
	}, nil
}

// Process handles a new upload. A path that does not match the upload
// convention is ignored silently: the uploads bucket receives unrelated
// objects and the event is simply not ours.
func (f *PreprocessFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	ref, err := paths.DecodeSource(e.Name)
	if err != nil {
		if errors.Is(err, paths.ErrMalformed) {
			logCtx.Warn("Ignoring file with unexpected path structure.")
			return nil
		}
		return err
	}
	logCtx = logCtx.With("projectId", ref.ProjectID, "documentId", ref.DocumentID)
	logCtx.Info("Processing new upload.")

	// The project record comes into existence with the first upload;
	// sub-collection writes alone would leave it as a virtual document the
	// generation endpoints cannot read.
	if err := f.store.EnsureProject(ctx, ref.ProjectID); err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to materialize project record", err)
	}

	pdfBytes, err := f.objects.DownloadBytes(ctx, e.Bucket, e.Name)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to download source PDF", err)
	}

	pageCount, err := countPages(pdfBytes)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to get page count", err)
	}

	err = f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusProcessingOCR, map[string]any{
		"page_count":       pageCount,
		"originalFilename": ref.Remainder,
	})
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to update status to PROCESSING_OCR", err)
	}

	method := SelectMethod(pageCount, f.settings.SyncPageLimit)
	logCtx.Info("Extraction route selected.", "pageCount", pageCount, "method", string(method))

	if method == MethodSync {
		return f.processSync(ctx, logCtx, ref, pdfBytes)
	}
	return f.submitBatch(ctx, logCtx, ref, e)
}

func (f *PreprocessFunction) processSync(ctx context.Context, logCtx *slog.Logger, ref paths.Ref, pdfBytes []byte) error {
	text, err := f.docai.ExtractSync(ctx, pdfBytes)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "sync extraction failed", err)
	}

	textPath := paths.EncodeTextPath(ref.ProjectID, ref.DocumentID)
	if err := f.objects.UploadText(ctx, f.settings.ProcessedTextBucket, textPath, text); err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to save extracted text", err)
	}

	err = f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusTextExtracted, map[string]any{
		"processing_method": string(MethodSync),
	})
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to update status to TEXT_EXTRACTED", err)
	}

	logCtx.Info("Sync extraction complete.", "textPath", textPath)
	return nil
}

func (f *PreprocessFunction) submitBatch(ctx context.Context, logCtx *slog.Logger, ref paths.Ref, e models.GCSEvent) error {
	inputURI := fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name)
	outputURI := paths.BatchOutputPrefix(f.settings.BatchOutputBucket, ref.ProjectID, ref.DocumentID)

	if err := f.docai.SubmitBatch(ctx, inputURI, outputURI); err != nil {
		return f.handleError(ctx, logCtx, ref, "batch extraction submission failed", err)
	}

	// Status stays PROCESSING_OCR; the batch result handler advances it
	// when the job's output lands.
	err := f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusProcessingOCR, map[string]any{
		"processing_method": string(MethodBatch),
	})
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to record batch processing method", err)
	}

	logCtx.Info("Batch extraction submitted.", "outputUri", outputURI)
	return nil
}

func (f *PreprocessFunction) handleError(ctx context.Context, logCtx *slog.Logger, ref paths.Ref, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	f.store.MarkDocumentFailed(ctx, ref.ProjectID, ref.DocumentID, models.StatusOCRFailed, fullError)
	return errors.New(fullError)
}

func countPages(pdfBytes []byte) (int, error) {
	cfg := pdfmodel.NewDefaultConfiguration()
	cfg.ValidationMode = pdfmodel.ValidationRelaxed
	return api.PageCount(bytes.NewReader(pdfBytes), cfg)
}
