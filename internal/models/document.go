package models

import "time"

// Project is the top-level record for a SOW engagement in Firestore.
// It is created on first document upload and mutated by every downstream
// stage.
type Project struct {
	ProjectName      string    `firestore:"projectName,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	GeneratedSOWText string    `firestore:"generatedSowText,omitempty"`
	ModelUsedForSOW  string    `firestore:"model_used_for_sow,omitempty"`
	PromptUsedForSOW string    `firestore:"prompt_used_for_sow,omitempty"`
	GoogleDocURL     string    `firestore:"google_doc_url,omitempty"`
	ErrorMessage     string    `firestore:"error_message,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
}

// SourceDocument tracks one uploaded file through OCR and analysis. It lives
// in the source_documents sub-collection under its project.
type SourceDocument struct {
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Category         string    `firestore:"category,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	StatusMessage    string    `firestore:"status_message,omitempty"`
	ErrorTraceback   string    `firestore:"error_traceback,omitempty"`
	PageCount        int       `firestore:"page_count,omitempty"`
	ProcessingMethod string    `firestore:"processing_method,omitempty"`
	Analysis         *Analysis `firestore:"analysis,omitempty"`
	ModelUsed        string    `firestore:"model_used,omitempty"`
	PromptUsed       string    `firestore:"prompt_used,omitempty"`
	TemperatureUsed  float32   `firestore:"temperature_used,omitempty"`
	AnalyzedAt       time.Time `firestore:"analyzed_at,omitempty"`
	LastUpdatedAt    time.Time `firestore:"last_updated_at,omitempty"`
}

// Analysis is the structured result produced by the analysis model. The
// shape mirrors the JSON contract of the analysis prompts.
type Analysis struct {
	Summary      string        `firestore:"summary" json:"summary"`
	Requirements []Requirement `firestore:"requirements" json:"requirements"`
}

// Requirement is a single extracted requirement. SourceFile is attached
// during aggregation so the generated SOW can attribute each requirement to
// the document it came from.
type Requirement struct {
	ID          string `firestore:"id,omitempty" json:"id,omitempty"`
	Description string `firestore:"description" json:"description"`
	SourceFile  string `firestore:"source_file,omitempty" json:"source_file,omitempty"`
}

// DocumentSummary pairs a per-document summary with its origin, used as
// input to the meta-summary call in SOW generation.
type DocumentSummary struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// AggregatedAnalysis is the cross-document payload substituted into the SOW
// generation prompt.
type AggregatedAnalysis struct {
	ProjectOverview string        `json:"project_overview"`
	AllRequirements []Requirement `json:"all_requirements"`
}

// Template is a reusable SOW skeleton. The body lives in the templates
// bucket at GCSPath; the record itself is immutable once created.
type Template struct {
	Name          string    `firestore:"name"`
	Description   string    `firestore:"description,omitempty"`
	GCSPath       string    `firestore:"gcs_path"`
	SourceSamples []string  `firestore:"source_samples,omitempty"`
	CreatedAt     time.Time `firestore:"created_at,omitempty"`
}

// TemplateJob tracks a multi-file batch extraction run feeding template
// generation. ProcessedFiles is keyed by documentID within the job.
type TemplateJob struct {
	ProcessedFiles map[string]string `firestore:"processed_files,omitempty"`
	CreatedAt      time.Time         `firestore:"created_at,omitempty"`
}

// GeneratedSOW is one generation run's output, stored in the generated_sow
// sub-collection under its project. DocURL is attached later by the export
// stage.
type GeneratedSOW struct {
	TemplateID string    `firestore:"template_id,omitempty"`
	Text       string    `firestore:"text"`
	ModelUsed  string    `firestore:"model_used,omitempty"`
	PromptUsed string    `firestore:"prompt_used,omitempty"`
	DocURL     string    `firestore:"doc_url,omitempty"`
	CreatedAt  time.Time `firestore:"created_at,omitempty"`
}
