package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/prompt"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// SampleSeparator marks document boundaries in the concatenated sample text
// fed to the template generation prompt.
const SampleSeparator = "\n\n--- SAMPLE DOCUMENT ---\n"

// TemplateGenConfig holds bootstrap configuration for template generation.
type TemplateGenConfig struct {
	ProjectID string
}

// TemplateGenFunction synthesizes a reusable SOW template from a set of
// sample documents.
type TemplateGenFunction struct {
	objects  *gcp.Objects
	store    *store.Store
	vertex   *gcp.VertexClient
	docai    *gcp.DocAIClient
	settings *models.GlobalConfig
	config   TemplateGenConfig
}

// NewTemplateGen creates a new TemplateGenFunction instance.
func NewTemplateGen(ctx context.Context) (*TemplateGenFunction, error) {
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

	docaiClient, err := gcp.NewDocAIClient(ctx, settings)
	if err != nil {
		return nil, err
	}

	return &TemplateGenFunction{
		objects:  objects,
		store:    st,
		vertex:   vertexClient,
		docai:    docaiClient,
		settings: settings,
		config:   TemplateGenConfig{ProjectID: projectID},
	}, nil
}

// Slugify turns a template name into an identifier-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "/", "_")
	return slug
}

// NewTemplateID derives a unique template identifier from its display name.
func NewTemplateID(name string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s_%s", Slugify(name), suffix)
}

// Process generates one template from the request's sample files.
func (f *TemplateGenFunction) Process(ctx context.Context, req *models.TemplateGenerationRequest) (*models.TemplateGenerationResponse, error) {
	logCtx := slog.With("templateName", req.TemplateName, "sampleCount", len(req.SampleFiles))
	logCtx.Info("Template generation started.")

	concatenated, err := f.extractSampleTexts(ctx, req.SampleFiles)
	if err != nil {
		logCtx.Error("Failed to extract sample texts.", "error", err)
		return nil, err
	}

	promptText, err := f.store.GetPromptText(ctx, f.settings.TemplateGenPromptID)
	if err != nil {
		logCtx.Error("Failed to fetch template generation prompt.", "error", err)
		return nil, err
	}

	finalPrompt, err := prompt.New(promptText).Require("concatenated_text").Render(map[string]string{
		"concatenated_text": concatenated,
	})
	if err != nil {
		return nil, err
	}

	logCtx.Info("Sending template generation prompt to Vertex AI.")
	raw, err := f.vertex.Generate(ctx, f.vertex.GenerationModel, finalPrompt)
	if err != nil {
		logCtx.Error("Template generation model call failed.", "error", err)
		return nil, err
	}
	templateText := gcp.StripFences(raw)

	templateID := NewTemplateID(req.TemplateName)
	gcsPath := templateID + ".md"
	// Template IDs are unique; a colliding write must never replace an
	// existing template body.
	if err := f.objects.SaveAtomically(ctx, f.settings.TemplatesBucket, gcsPath, templateText); err != nil {
		logCtx.Error("Failed to save template body.", "error", err)
		return nil, err
	}

	err = f.store.SaveTemplate(ctx, templateID, models.Template{
		Name:          req.TemplateName,
		Description:   req.TemplateDescription,
		GCSPath:       gcsPath,
		SourceSamples: req.SampleFiles,
	})
	if err != nil {
		logCtx.Error("Failed to save template record.", "error", err)
		return nil, err
	}

	logCtx.Info("Template generation complete.", "templateId", templateID)
	return &models.TemplateGenerationResponse{
		Message:    "Template created successfully",
		TemplateID: templateID,
	}, nil
}

// extractSampleTexts pulls text out of every sample file, running PDF
// samples through synchronous extraction. Samples are fetched concurrently
// but joined in request order so the concatenation is stable.
func (f *TemplateGenFunction) extractSampleTexts(ctx context.Context, sampleFiles []string) (string, error) {
	texts := make([]string, len(sampleFiles))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(4)

	for i, filePath := range sampleFiles {
		eg.Go(func() error {
			text, err := f.extractOneSample(gctx, filePath)
			if err != nil {
				return fmt.Errorf("sample %s: %w", filePath, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}
	return strings.Join(texts, SampleSeparator), nil
}

func (f *TemplateGenFunction) extractOneSample(ctx context.Context, filePath string) (string, error) {
	if strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		pdfBytes, err := f.objects.DownloadBytes(ctx, f.settings.TemplateSamplesBucket, filePath)
		if err != nil {
			return "", err
		}
		text, err := f.docai.ExtractSync(ctx, pdfBytes)
		if err != nil {
			return "", err
		}
		slog.Info("Extracted sample text from PDF.", "sample", filePath)
		return text, nil
	}

	text, err := f.objects.DownloadText(ctx, f.settings.TemplateSamplesBucket, filePath)
	if err != nil {
		return "", err
	}
	slog.Info("Read sample text directly.", "sample", filePath)
	return text, nil
}
