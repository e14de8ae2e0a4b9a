package models

// These structs define the JSON payloads for the HTTP-triggered functions
// and the GCS event envelope consumed by the event-triggered ones.

// GCSEvent is the payload of a GCS object-created notification.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// PubSubEnvelope is the wrapper Eventarc uses when a GCS notification is
// re-delivered through a Pub/Sub push subscription. Data is the base64
// encoded GCSEvent JSON.
type PubSubEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
	} `json:"message"`
}

// SOWGenerationRequest is the input for the sow-generator function.
type SOWGenerationRequest struct {
	ProjectID  string `json:"projectId"`
	TemplateID string `json:"templateId"`
}

// SOWGenerationResponse is the output of the sow-generator function.
type SOWGenerationResponse struct {
	SOWID   string `json:"sowId"`
	SOWText string `json:"sowText"`
}

// TemplateGenerationRequest is the input for the template-generator function.
type TemplateGenerationRequest struct {
	SampleFiles         []string `json:"sample_files"`
	TemplateName        string   `json:"template_name"`
	TemplateDescription string   `json:"template_description"`
}

// TemplateGenerationResponse is the output of the template-generator function.
type TemplateGenerationResponse struct {
	Message    string `json:"message"`
	TemplateID string `json:"templateId"`
}

// DocExportRequest is the input for the doc-exporter function.
type DocExportRequest struct {
	ProjectID string `json:"projectId"`
	SOWID     string `json:"sowId"`
}

// DocExportResponse is the output of the doc-exporter function.
type DocExportResponse struct {
	DocURL string `json:"doc_url"`
}

// BatchResultPayload is the JSON written by a batch extraction job into the
// batch output bucket. Only the aggregated text field matters to us; the
// rest of the document structure is ignored.
type BatchResultPayload struct {
	Text string `json:"text"`
}
