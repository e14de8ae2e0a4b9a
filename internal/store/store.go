// Package store wraps the Firestore collections the pipeline shares across
// its independently triggered stages. Every status write funnels through
// one place so the allowed-transition table can be enforced.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/Lllllllleong/sowforge/internal/models"
)

const (
	projectsCollection     = "sow_projects"
	sourceDocsCollection   = "source_documents"
	generatedSOWCollection = "generated_sow"
	templatesCollection    = "templates"
	promptsCollection      = "prompts"
	templateJobsCollection = "template_jobs"
	settingsCollection     = "settings"
	globalConfigDocument   = "global_config"
)

// ErrNotFound is returned when a referenced record does not exist. HTTP
// handlers map it to 404.
var ErrNotFound = errors.New("record not found")

// Store provides typed access to the pipeline's Firestore layout.
type Store struct {
	fs *firestore.Client
}

func New(fs *firestore.Client) *Store {
	return &Store{fs: fs}
}

// LoadGlobalConfig reads the singleton settings document. Every service
// calls this exactly once at construction.
func (s *Store) LoadGlobalConfig(ctx context.Context) (*models.GlobalConfig, error) {
	snap, err := s.fs.Collection(settingsCollection).Doc(globalConfigDocument).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, fmt.Errorf("global config %s/%s not found in Firestore", settingsCollection, globalConfigDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	var cfg models.GlobalConfig
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode global config: %w", err)
	}
	if cfg.SyncPageLimit <= 0 {
		cfg.SyncPageLimit = 15
	}
	return &cfg, nil
}

func (s *Store) projectRef(projectID string) *firestore.DocumentRef {
	return s.fs.Collection(projectsCollection).Doc(projectID)
}

func (s *Store) sourceDocRef(projectID, documentID string) *firestore.DocumentRef {
	return s.projectRef(projectID).Collection(sourceDocsCollection).Doc(documentID)
}

// EnsureProject materializes the parent project record. Writes to the
// source_documents sub-collection alone leave the parent as a virtual
// document that reads as missing, so the first upload creates it
// explicitly.
func (s *Store) EnsureProject(ctx context.Context, projectID string) error {
	ref := s.projectRef(projectID)
	if snap, err := ref.Get(ctx); err == nil && snap.Exists() {
		return nil
	}
	fields := map[string]any{"createdAt": firestore.ServerTimestamp}
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to create project %s: %w", projectID, err)
	}
	return nil
}

// GetProject reads a project record.
func (s *Store) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	snap, err := s.projectRef(projectID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", projectID, err)
	}
	var p models.Project
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", projectID, err)
	}
	return &p, nil
}

// UpdateProject merges fields onto a project record.
func (s *Store) UpdateProject(ctx context.Context, projectID string, fields map[string]any) error {
	if _, err := s.projectRef(projectID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update project %s: %w", projectID, err)
	}
	return nil
}

// GetSourceDocument reads a source document record.
func (s *Store) GetSourceDocument(ctx context.Context, projectID, documentID string) (*models.SourceDocument, error) {
	snap, err := s.sourceDocRef(projectID, documentID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, fmt.Errorf("source document %s/%s: %w", projectID, documentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read source document %s/%s: %w", projectID, documentID, err)
	}
	var d models.SourceDocument
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("failed to decode source document %s/%s: %w", projectID, documentID, err)
	}
	return &d, nil
}

// SetDocumentStatus advances a source document's status, merging any extra
// fields in the same write. Transitions outside the allowed table are
// logged and still written: stage boundaries are last-write-wins and an
// out-of-order event must not wedge the record.
func (s *Store) SetDocumentStatus(ctx context.Context, projectID, documentID string, status models.DocumentStatus, extra map[string]any) error {
	ref := s.sourceDocRef(projectID, documentID)

	current := models.DocumentStatus("")
	if snap, err := ref.Get(ctx); err == nil && snap.Exists() {
		if v, err := snap.DataAt("status"); err == nil {
			if str, ok := v.(string); ok {
				current = models.DocumentStatus(str)
			}
		}
	}
	if !models.ValidTransition(current, status) {
		slog.Warn("Status transition outside the allowed table.",
			"projectId", projectID, "documentId", documentID,
			"from", string(current), "to", string(status))
	}

	fields := map[string]any{
		"status":          string(status),
		"last_updated_at": firestore.ServerTimestamp,
	}
	for k, v := range extra {
		fields[k] = v
	}
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to set status %s on %s/%s: %w", status, projectID, documentID, err)
	}
	return nil
}

// MarkDocumentFailed records a failure status with its message, best-effort.
// A secondary failure here is logged and swallowed so a broken status write
// never masks the original error.
func (s *Store) MarkDocumentFailed(ctx context.Context, projectID, documentID string, status models.DocumentStatus, message string) {
	err := s.SetDocumentStatus(ctx, projectID, documentID, status, map[string]any{
		"status_message": message,
	})
	if err != nil {
		slog.Error("CRITICAL: Failed to record failure status.",
			"projectId", projectID, "documentId", documentID, "status", string(status), "error", err)
	}
}

// AnalyzedDocuments returns all source documents under a project whose
// analysis completed successfully, keyed by document ID.
func (s *Store) AnalyzedDocuments(ctx context.Context, projectID string) (map[string]models.SourceDocument, error) {
	snaps, err := s.projectRef(projectID).Collection(sourceDocsCollection).
		Where("status", "==", string(models.StatusAnalyzedSuccess)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query analyzed documents for project %s: %w", projectID, err)
	}

	docs := make(map[string]models.SourceDocument, len(snaps))
	for _, snap := range snaps {
		var d models.SourceDocument
		if err := snap.DataTo(&d); err != nil {
			return nil, fmt.Errorf("failed to decode source document %s: %w", snap.Ref.ID, err)
		}
		docs[snap.Ref.ID] = d
	}
	return docs, nil
}

// GetPromptText fetches the body of a stored prompt.
func (s *Store) GetPromptText(ctx context.Context, promptID string) (string, error) {
	snap, err := s.fs.Collection(promptsCollection).Doc(promptID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return "", fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", promptID, err)
	}
	v, err := snap.DataAt("prompt_text")
	if err != nil {
		return "", fmt.Errorf("prompt %s has no prompt_text field: %w", promptID, err)
	}
	text, ok := v.(string)
	if !ok || text == "" {
		return "", fmt.Errorf("prompt %s has an empty prompt_text field", promptID)
	}
	return text, nil
}

// GetTemplate reads a template record.
func (s *Store) GetTemplate(ctx context.Context, templateID string) (*models.Template, error) {
	snap, err := s.fs.Collection(templatesCollection).Doc(templateID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, fmt.Errorf("template %s: %w", templateID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", templateID, err)
	}
	var t models.Template
	if err := snap.DataTo(&t); err != nil {
		return nil, fmt.Errorf("failed to decode template %s: %w", templateID, err)
	}
	return &t, nil
}

// SaveTemplate creates a template record under the given ID.
func (s *Store) SaveTemplate(ctx context.Context, templateID string, t models.Template) error {
	t.CreatedAt = time.Now()
	if _, err := s.fs.Collection(templatesCollection).Doc(templateID).Set(ctx, t); err != nil {
		return fmt.Errorf("failed to save template %s: %w", templateID, err)
	}
	return nil
}

// AddGeneratedSOW stores a new SOW under the project and returns its ID.
func (s *Store) AddGeneratedSOW(ctx context.Context, projectID string, sow models.GeneratedSOW) (string, error) {
	sow.CreatedAt = time.Now()
	ref := s.projectRef(projectID).Collection(generatedSOWCollection).NewDoc()
	if _, err := ref.Set(ctx, sow); err != nil {
		return "", fmt.Errorf("failed to save generated SOW for project %s: %w", projectID, err)
	}
	return ref.ID, nil
}

// GetGeneratedSOW reads one generated SOW record.
func (s *Store) GetGeneratedSOW(ctx context.Context, projectID, sowID string) (*models.GeneratedSOW, error) {
	snap, err := s.projectRef(projectID).Collection(generatedSOWCollection).Doc(sowID).Get(ctx)
	if snap != nil && !snap.Exists() {
		return nil, fmt.Errorf("generated SOW %s/%s: %w", projectID, sowID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read generated SOW %s/%s: %w", projectID, sowID, err)
	}
	var g models.GeneratedSOW
	if err := snap.DataTo(&g); err != nil {
		return nil, fmt.Errorf("failed to decode generated SOW %s/%s: %w", projectID, sowID, err)
	}
	return &g, nil
}

// SetGeneratedSOWDocURL attaches the exported document URL to a SOW record.
func (s *Store) SetGeneratedSOWDocURL(ctx context.Context, projectID, sowID, url string) error {
	ref := s.projectRef(projectID).Collection(generatedSOWCollection).Doc(sowID)
	if _, err := ref.Set(ctx, map[string]any{"doc_url": url}, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to set doc URL on SOW %s/%s: %w", projectID, sowID, err)
	}
	return nil
}

// UpdateTemplateJobProgress marks one file of a template-aggregation batch
// job as extracted.
func (s *Store) UpdateTemplateJobProgress(ctx context.Context, jobID, documentID, note string) error {
	ref := s.fs.Collection(templateJobsCollection).Doc(jobID)
	update := []firestore.Update{
		{FieldPath: firestore.FieldPath{"processed_files", documentID}, Value: note},
	}
	if _, err := ref.Update(ctx, update); err != nil {
		return fmt.Errorf("failed to update template job %s progress: %w", jobID, err)
	}
	return nil
}
