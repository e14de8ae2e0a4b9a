package gcp

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/sowforge/internal/models"
)

// DocAIClient wraps the Document AI processor used for text extraction,
// in both its synchronous and batch modes.
type DocAIClient struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

// NewDocAIClient creates a Document AI client pinned to the processor and
// regional endpoint named in the global settings.
func NewDocAIClient(ctx context.Context, cfg *models.GlobalConfig) (*DocAIClient, error) {
	if cfg.DocAIProcessorID == "" || cfg.DocAILocation == "" {
		return nil, fmt.Errorf("NewDocAIClient: docai_processor_id and docai_location cannot be empty")
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.DocAILocation)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client for location %s: %w", cfg.DocAILocation, err)
	}

	return &DocAIClient{
		client: client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.GCPProjectID, cfg.DocAILocation, cfg.DocAIProcessorID),
	}, nil
}

func (d *DocAIClient) Close() error {
	return d.client.Close()
}

// ExtractSync runs a synchronous extraction over in-memory PDF bytes and
// returns the full document text.
func (d *DocAIClient) ExtractSync(ctx context.Context, pdfBytes []byte) (string, error) {
	req := &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("sync document processing failed: %w", err)
	}
	return resp.GetDocument().GetText(), nil
}

// SubmitBatch starts an asynchronous extraction job reading from inputURI
// and writing its result JSON under outputURI. The operation is not waited
// on; the batch result handler picks up the output when it lands.
func (d *DocAIClient) SubmitBatch(ctx context.Context, inputURI, outputURI string) error {
	req := &documentaipb.BatchProcessRequest{
		Name: d.processorName,
		InputDocuments: &documentaipb.BatchDocumentsInputConfig{
			Source: &documentaipb.BatchDocumentsInputConfig_GcsDocuments{
				GcsDocuments: &documentaipb.GcsDocuments{
					Documents: []*documentaipb.GcsDocument{
						{GcsUri: inputURI, MimeType: "application/pdf"},
					},
				},
			},
		},
		DocumentOutputConfig: &documentaipb.DocumentOutputConfig{
			Destination: &documentaipb.DocumentOutputConfig_GcsOutputConfig_{
				GcsOutputConfig: &documentaipb.DocumentOutputConfig_GcsOutputConfig{
					GcsUri: outputURI,
				},
			},
		},
	}

	if _, err := d.client.BatchProcessDocuments(ctx, req); err != nil {
		return fmt.Errorf("batch document processing submission failed: %w", err)
	}
	return nil
}
