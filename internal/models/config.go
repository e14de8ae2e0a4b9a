package models

// GlobalConfig is the singleton settings/global_config document. It is
// administered outside the pipeline and read-only from our side; every
// service loads it once at construction time.
type GlobalConfig struct {
	GCPProjectID     string `firestore:"gcp_project_id"`
	VertexAILocation string `firestore:"vertex_ai_location"`

	UploadsBucket         string `firestore:"gcs_uploads_bucket"`
	ProcessedTextBucket   string `firestore:"gcs_processed_text_bucket"`
	BatchOutputBucket     string `firestore:"gcs_batch_output_bucket"`
	TemplateSamplesBucket string `firestore:"gcs_template_samples_bucket"`
	TemplatesBucket       string `firestore:"gcs_templates_bucket"`

	DocAIProcessorID string `firestore:"docai_processor_id"`
	DocAILocation    string `firestore:"docai_location"`
	SyncPageLimit    int    `firestore:"sync_page_limit"`

	DefaultDocumentCategory string            `firestore:"default_document_category"`
	DefaultAnalysisPromptID string            `firestore:"default_analysis_prompt_id"`
	PromptMapping           map[string]string `firestore:"prompt_mapping"`

	AnalysisModel       string  `firestore:"legislative_analysis_model"`
	AnalysisTemperature float32 `firestore:"analysis_model_temperature"`

	SOWGenerationModel       string  `firestore:"sow_generation_model"`
	SOWGenerationTemperature float32 `firestore:"sow_generation_model_temperature"`
	SOWGenerationMaxTokens   int32   `firestore:"sow_generation_max_tokens"`
	SOWGenerationPromptID    string  `firestore:"sow_generation_prompt_id"`
	TemplateGenPromptID      string  `firestore:"template_generation_prompt_id"`

	SOWTitlePrefix    string `firestore:"sow_title_prefix"`
	AIReviewTagFormat string `firestore:"ai_review_tag_format"`
}

// AnalysisPromptID resolves the prompt for a document category, falling back
// to the configured default when the category has no mapping.
func (c *GlobalConfig) AnalysisPromptID(category string) string {
	if id, ok := c.PromptMapping[category]; ok {
		return id
	}
	if c.DefaultAnalysisPromptID != "" {
		return c.DefaultAnalysisPromptID
	}
	return "general_analysis_prompt"
}
