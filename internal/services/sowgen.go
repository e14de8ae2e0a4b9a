package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/prompt"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// ErrNoAnalyzedDocuments is returned when SOW generation is requested for a
// project without a single successfully analyzed document. It is a
// precondition failure, not a transient one; the HTTP layer maps it to 400.
var ErrNoAnalyzedDocuments = errors.New("no successfully analyzed documents found in project")

const metaSummaryPrompt = `You are a senior project lead. You have received summaries from multiple source documents for an upcoming Statement of Work. Your task is to synthesize these individual summaries into a single, cohesive, high-level project overview. This overview should explain the project's overall goal and the role of the different document types.

INDIVIDUAL SUMMARIES:
%s

Synthesize these into a single, comprehensive project overview paragraph.`

// SOWGenConfig holds bootstrap configuration for SOW generation.
type SOWGenConfig struct {
	ProjectID string
}

// SOWGenFunction aggregates a project's analyses and merges them with a
// template into a generated SOW.
type SOWGenFunction struct {
	objects  *gcp.Objects
	store    *store.Store
	vertex   *gcp.VertexClient
	settings *models.GlobalConfig
	config   SOWGenConfig
}

// NewSOWGen creates a new SOWGenFunction instance.
func NewSOWGen(ctx context.Context) (*SOWGenFunction, error) {
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

	return &SOWGenFunction{
		objects:  objects,
		store:    st,
		vertex:   vertexClient,
		settings: settings,
		config:   SOWGenConfig{ProjectID: projectID},
	}, nil
}

// AggregateAnalyses flattens requirements across documents, tagging each
// with the filename it came from, and collects per-document summaries.
// Documents are walked in ID order so output is deterministic.
func AggregateAnalyses(docs map[string]models.SourceDocument) ([]models.Requirement, []models.DocumentSummary) {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var requirements []models.Requirement
	var summaries []models.DocumentSummary
	for _, id := range ids {
		doc := docs[id]
		if doc.Analysis == nil {
			continue
		}
		filename := doc.OriginalFilename
		if filename == "" {
			filename = "Unknown"
		}
		category := doc.Category
		if category == "" {
			category = "General"
		}
		for _, req := range doc.Analysis.Requirements {
			req.SourceFile = filename
			requirements = append(requirements, req)
		}
		summaries = append(summaries, models.DocumentSummary{
			Filename: filename,
			Category: category,
			Summary:  doc.Analysis.Summary,
		})
	}
	return requirements, summaries
}

// BuildMetaSummaryPrompt assembles the synthesis prompt from the collected
// per-document summaries.
func BuildMetaSummaryPrompt(summaries []models.DocumentSummary) (string, error) {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summaries: %w", err)
	}
	return fmt.Sprintf(metaSummaryPrompt, string(data)), nil
}

// Process runs one SOW generation for the named project and template.
func (f *SOWGenFunction) Process(ctx context.Context, req *models.SOWGenerationRequest) (*models.SOWGenerationResponse, error) {
	logCtx := slog.With("projectId", req.ProjectID, "templateId", req.TemplateID)
	logCtx.Info("SOW generation started.")

	docs, err := f.store.AnalyzedDocuments(ctx, req.ProjectID)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to query analyzed documents", err)
	}
	if len(docs) == 0 {
		f.markProjectFailed(ctx, req.ProjectID, ErrNoAnalyzedDocuments.Error())
		return nil, ErrNoAnalyzedDocuments
	}

	requirements, summaries := AggregateAnalyses(docs)
	logCtx.Info("Aggregated analyses.", "documents", len(summaries), "requirements", len(requirements))

	metaPrompt, err := BuildMetaSummaryPrompt(summaries)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to build meta-summary prompt", err)
	}
	overview, err := f.vertex.Generate(ctx, f.vertex.GenerationModel, metaPrompt)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "meta-summary model call failed", err)
	}

	aggregated := models.AggregatedAnalysis{
		ProjectOverview: overview,
		AllRequirements: requirements,
	}
	aggregatedJSON, err := json.MarshalIndent(aggregated, "", "  ")
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to marshal aggregated analysis", err)
	}

	template, err := f.store.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			f.markProjectFailed(ctx, req.ProjectID, err.Error())
			return nil, err
		}
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to read template", err)
	}
	templateContent, err := f.objects.DownloadText(ctx, f.settings.TemplatesBucket, template.GCSPath)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to download template body", err)
	}

	sowPromptText, err := f.store.GetPromptText(ctx, f.settings.SOWGenerationPromptID)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to fetch SOW generation prompt", err)
	}

	project, err := f.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to read project", err)
	}
	projectName := project.ProjectName
	if projectName == "" {
		projectName = "Untitled Project"
	}

	titlePrefix := f.settings.SOWTitlePrefix
	if titlePrefix == "" {
		titlePrefix = "SOW Draft for"
	}
	finalPrompt, err := prompt.New(sowPromptText).
		Require("template_content", "aggregated_analysis_json", "project_name_placeholder").
		Allow("ai_review_tag").
		Render(map[string]string{
			"template_content":         templateContent,
			"aggregated_analysis_json": string(aggregatedJSON),
			"project_name_placeholder": fmt.Sprintf("%s %s", titlePrefix, projectName),
			"ai_review_tag":            f.settings.AIReviewTagFormat,
		})
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to render SOW prompt", err)
	}

	logCtx.Info("Sending final merge prompt to Vertex AI.")
	raw, err := f.vertex.Generate(ctx, f.vertex.GenerationModel, finalPrompt)
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "SOW generation model call failed", err)
	}
	sowText := gcp.StripFences(raw)

	sowID, err := f.store.AddGeneratedSOW(ctx, req.ProjectID, models.GeneratedSOW{
		TemplateID: req.TemplateID,
		Text:       sowText,
		ModelUsed:  f.settings.SOWGenerationModel,
		PromptUsed: f.settings.SOWGenerationPromptID,
	})
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to save generated SOW", err)
	}

	err = f.store.UpdateProject(ctx, req.ProjectID, map[string]any{
		"generatedSowText":    sowText,
		"status":              string(models.ProjectStatusSOWGenerated),
		"model_used_for_sow":  f.settings.SOWGenerationModel,
		"prompt_used_for_sow": f.settings.SOWGenerationPromptID,
	})
	if err != nil {
		return nil, f.handleError(ctx, logCtx, req.ProjectID, "failed to update project status", err)
	}

	logCtx.Info("SOW generation complete.", "sowId", sowID)
	return &models.SOWGenerationResponse{SOWID: sowID, SOWText: sowText}, nil
}

func (f *SOWGenFunction) markProjectFailed(ctx context.Context, projectID, message string) {
	err := f.store.UpdateProject(ctx, projectID, map[string]any{
		"status":        string(models.ProjectStatusSOWGenerationFailed),
		"error_message": message,
	})
	if err != nil {
		slog.Error("CRITICAL: Failed to record SOW generation failure.", "projectId", projectID, "error", err)
	}
}

func (f *SOWGenFunction) handleError(ctx context.Context, logCtx *slog.Logger, projectID, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)
	f.markProjectFailed(ctx, projectID, fullError)
	return errors.New(fullError)
}
