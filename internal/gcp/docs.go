package gcp

import (
	"context"
	"fmt"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// DocsClient wraps the Google Docs API used by the export stage.
type DocsClient struct {
	service *docs.Service
}

// NewDocsClient builds a Docs service using application default credentials.
func NewDocsClient(ctx context.Context) (*DocsClient, error) {
	service, err := docs.NewService(ctx, option.WithScopes(docs.DocumentsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Docs service: %w", err)
	}
	return &DocsClient{service: service}, nil
}

// CreateDocument creates a new Google Doc with the given title and a single
// body paragraph, returning its edit URL. The Docs API ignores body content
// on create, so the text goes in through a follow-up batch update.
func (d *DocsClient) CreateDocument(ctx context.Context, title, body string) (string, error) {
	doc, err := d.service.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	if body != "" {
		update := &docs.BatchUpdateDocumentRequest{
			Requests: []*docs.Request{
				{
					InsertText: &docs.InsertTextRequest{
						Text:     body,
						Location: &docs.Location{Index: 1},
					},
				},
			},
		}
		if _, err := d.service.Documents.BatchUpdate(doc.DocumentId, update).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("failed to insert document body: %w", err)
		}
	}

	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.DocumentId), nil
}
