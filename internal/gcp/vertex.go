package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/sowforge/internal/models"
)

// VertexClient holds the pre-configured generative models used by the
// pipeline: one tuned for structured analysis output and one for free-form
// SOW/template text.
type VertexClient struct {
	AnalysisModel   *genai.GenerativeModel
	GenerationModel *genai.GenerativeModel
	baseClient      *genai.Client
}

// NewVertexClient creates a client with both models configured from the
// global settings document.
func NewVertexClient(ctx context.Context, cfg *models.GlobalConfig) (*VertexClient, error) {
	if cfg.GCPProjectID == "" || cfg.VertexAILocation == "" {
		return nil, fmt.Errorf("NewVertexClient: gcp_project_id and vertex_ai_location cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, cfg.GCPProjectID, cfg.VertexAILocation)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the analysis model ---
	analysisModel := baseClient.GenerativeModel(cfg.AnalysisModel)
	analysisModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output so the analysis result parses into a typed struct.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(cfg.AnalysisTemperature),
	}
	analysisModel.SafetySettings = permissiveSafetySettings()

	// --- Configure the generation model ---
	generationModel := baseClient.GenerativeModel(cfg.SOWGenerationModel)
	generationModel.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr(cfg.SOWGenerationTemperature),
		MaxOutputTokens: genai.Ptr(cfg.SOWGenerationMaxTokens),
	}
	generationModel.SafetySettings = permissiveSafetySettings()

	return &VertexClient{
		AnalysisModel:   analysisModel,
		GenerationModel: generationModel,
		baseClient:      baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// Generate sends a single text prompt and returns the concatenated text of
// the first candidate. An empty response (typically a safety block) is an
// error; the pipeline never treats silence as success.
func (c *VertexClient) Generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text := ExtractText(resp)
	if text == "" {
		return "", fmt.Errorf("model returned an empty response, likely due to safety filters")
	}
	if phrase, refused := DetectRefusal(text); refused {
		return "", fmt.Errorf("model response indicates refusal (%q)", phrase)
	}
	return text, nil
}

// ExtractText robustly pulls the text parts out of a model response.
func ExtractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			builder.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(builder.String())
}

// StripFences removes markdown code-fence artifacts that models wrap around
// generated documents.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// DetectRefusal reports whether the text looks like an LLM refusal rather
// than real output, returning the matched phrase.
func DetectRefusal(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

func permissiveSafetySettings() []*genai.SafetySetting {
	// Source documents are legal and procurement text; the default
	// thresholds block legitimate content too aggressively.
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
	}
}
