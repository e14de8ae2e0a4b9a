package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/paths"
	"github.com/Lllllllleong/sowforge/internal/prompt"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// AnalysisConfig holds bootstrap configuration for the analysis stage.
type AnalysisConfig struct {
	ProjectID string
}

// AnalysisFunction turns an extracted-text artifact into a structured
// analysis via a category-selected prompt.
type AnalysisFunction struct {
	objects  *gcp.Objects
	store    *store.Store
	vertex   *gcp.VertexClient
	settings *models.GlobalConfig
	config   AnalysisConfig
}

// NewAnalysis creates a new AnalysisFunction instance.
func NewAnalysis(ctx context.Context) (*AnalysisFunction, error) {
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

	vertexClient, err := gcp.NewVertexClient(ctx, settings)
	if err != nil {
		return nil, err
	}

	return &AnalysisFunction{
		objects:  objects,
		store:    st,
		vertex:   vertexClient,
		settings: settings,
		config:   AnalysisConfig{ProjectID: projectID},
	}, nil
}

// ParseAnalysis decodes the model's JSON output into a typed analysis.
func ParseAnalysis(raw string) (*models.Analysis, error) {
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(gcp.StripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse analysis JSON from model: %w", err)
	}
	if analysis.Summary == "" {
		return nil, errors.New("analysis result has an empty summary")
	}
	return &analysis, nil
}

// Process analyzes one extracted-text artifact.
func (f *AnalysisFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	ref, err := paths.DecodeText(e.Name)
	if err != nil {
		if errors.Is(err, paths.ErrMalformed) {
			logCtx.Warn("Ignoring file with unexpected path structure.")
			return nil
		}
		return err
	}
	if ref.IsTemplateJob() {
		// Template-job artifacts in the processed-text bucket feed template
		// generation, not per-document analysis.
		logCtx.Info("Skipping template job artifact.", "jobId", ref.TemplateJobID)
		return nil
	}
	logCtx = logCtx.With("projectId", ref.ProjectID, "documentId", ref.DocumentID)

	// Set ANALYZING up front so progress is visible while the model runs.
	err = f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusAnalyzing, nil)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to update status to ANALYZING", err)
	}
	logCtx.Info("Analysis started.")

	doc, err := f.store.GetSourceDocument(ctx, ref.ProjectID, ref.DocumentID)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to read source document", err)
	}
	category := doc.Category
	if category == "" {
		category = f.settings.DefaultDocumentCategory
	}

	promptID := f.settings.AnalysisPromptID(category)
	logCtx.Info("Prompt selected.", "category", category, "promptId", promptID)

	promptText, err := f.store.GetPromptText(ctx, promptID)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to fetch analysis prompt", err)
	}

	documentText, err := f.objects.DownloadText(ctx, e.Bucket, e.Name)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to download extracted text", err)
	}
	logCtx.Info("Analyzing document text.", "characters", len(documentText))

	finalPrompt, err := prompt.New(promptText).Require("DOCUMENT_TEXT").Render(map[string]string{
		"DOCUMENT_TEXT": documentText,
	})
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to render analysis prompt", err)
	}

	raw, err := f.vertex.Generate(ctx, f.vertex.AnalysisModel, finalPrompt)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "analysis model call failed", err)
	}

	analysis, err := ParseAnalysis(raw)
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to parse analysis result", err)
	}

	err = f.store.SetDocumentStatus(ctx, ref.ProjectID, ref.DocumentID, models.StatusAnalyzedSuccess, map[string]any{
		"analysis":         analysis,
		"model_used":       f.settings.AnalysisModel,
		"prompt_used":      promptID,
		"temperature_used": f.settings.AnalysisTemperature,
		"analyzed_at":      firestore.ServerTimestamp,
	})
	if err != nil {
		return f.handleError(ctx, logCtx, ref, "failed to save analysis result", err)
	}

	logCtx.Info("Analysis complete.", "requirements", len(analysis.Requirements))
	return nil
}

func (f *AnalysisFunction) handleError(ctx context.Context, logCtx *slog.Logger, ref paths.Ref, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	f.store.MarkDocumentFailed(ctx, ref.ProjectID, ref.DocumentID, models.StatusAnalysisFailed, fullError)
	return errors.New(fullError)
}
