package models

// DocumentStatus is the closed set of states a SourceDocument moves through.
type DocumentStatus string

const (
	StatusProcessingOCR   DocumentStatus = "PROCESSING_OCR"
	StatusTextExtracted   DocumentStatus = "TEXT_EXTRACTED"
	StatusOCRFailed       DocumentStatus = "OCR_FAILED"
	StatusAnalyzing       DocumentStatus = "ANALYZING"
	StatusAnalyzedSuccess DocumentStatus = "ANALYZED_SUCCESS"
	StatusAnalysisFailed  DocumentStatus = "ANALYSIS_FAILED"
)

// ProjectStatus is the closed set of states for a Project record.
type ProjectStatus string

const (
	ProjectStatusSOWGenerated        ProjectStatus = "SOW_GENERATED"
	ProjectStatusSOWGenerationFailed ProjectStatus = "SOW_GENERATION_FAILED"
)

// documentTransitions is the allowed-transition table for SourceDocument
// statuses within a single run. The empty string is the implicit initial
// state of a freshly created record. PROCESSING_OCR is reachable from any
// state because a re-uploaded file restarts the pipeline.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	"":                    {StatusProcessingOCR},
	StatusProcessingOCR:   {StatusTextExtracted, StatusOCRFailed},
	StatusTextExtracted:   {StatusAnalyzing, StatusOCRFailed},
	StatusAnalyzing:       {StatusAnalyzedSuccess, StatusAnalysisFailed},
	StatusAnalyzedSuccess: {},
	StatusOCRFailed:       {},
	StatusAnalysisFailed:  {},
}

// ValidTransition reports whether moving from one document status to the
// next is within the allowed table. Re-entering PROCESSING_OCR is always
// valid (re-upload).
func ValidTransition(from, to DocumentStatus) bool {
	if to == StatusProcessingOCR {
		return true
	}
	for _, next := range documentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a document status admits no further transitions
// short of a re-upload.
func (s DocumentStatus) Terminal() bool {
	return s == StatusAnalyzedSuccess || s == StatusOCRFailed || s == StatusAnalysisFailed
}
