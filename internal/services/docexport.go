package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/sowforge/internal/gcp"
	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/store"
)

// DocExportConfig holds bootstrap configuration for the export stage.
type DocExportConfig struct {
	ProjectID string
}

// DocExportFunction pushes a generated SOW into a Google Doc and records
// the resulting URL.
type DocExportFunction struct {
	store    *store.Store
	docs     *gcp.DocsClient
	settings *models.GlobalConfig
	config   DocExportConfig
}

// NewDocExport creates a new DocExportFunction instance.
func NewDocExport(ctx context.Context) (*DocExportFunction, error) {
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

	docsClient, err := gcp.NewDocsClient(ctx)
	if err != nil {
		return nil, err
	}

	return &DocExportFunction{
		store:    st,
		docs:     docsClient,
		settings: settings,
		config:   DocExportConfig{ProjectID: projectID},
	}, nil
}

// ExportTitle derives the document title from project metadata.
func ExportTitle(titlePrefix, projectName, projectID string) string {
	if titlePrefix == "" {
		titlePrefix = "SOW"
	}
	if projectName == "" {
		projectName = "Project " + projectID
	}
	return fmt.Sprintf("%s: %s", titlePrefix, projectName)
}

// Process exports one generated SOW.
func (f *DocExportFunction) Process(ctx context.Context, req *models.DocExportRequest) (*models.DocExportResponse, error) {
	logCtx := slog.With("projectId", req.ProjectID, "sowId", req.SOWID)
	logCtx.Info("Doc export started.")

	sow, err := f.store.GetGeneratedSOW(ctx, req.ProjectID, req.SOWID)
	if err != nil {
		logCtx.Error("Failed to read generated SOW.", "error", err)
		return nil, err
	}
	if sow.Text == "" {
		return nil, fmt.Errorf("generated SOW %s/%s has no text", req.ProjectID, req.SOWID)
	}

	project, err := f.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		logCtx.Error("Failed to read project.", "error", err)
		return nil, err
	}

	title := ExportTitle(f.settings.SOWTitlePrefix, project.ProjectName, req.ProjectID)
	docURL, err := f.docs.CreateDocument(ctx, title, sow.Text)
	if err != nil {
		logCtx.Error("Failed to create Google Doc.", "error", err)
		return nil, err
	}

	if err := f.store.SetGeneratedSOWDocURL(ctx, req.ProjectID, req.SOWID, docURL); err != nil {
		logCtx.Error("Failed to record doc URL on SOW.", "error", err)
		return nil, err
	}
	if err := f.store.UpdateProject(ctx, req.ProjectID, map[string]any{"google_doc_url": docURL}); err != nil {
		logCtx.Error("Failed to record doc URL on project.", "error", err)
		return nil, err
	}

	logCtx.Info("Doc export complete.", "docUrl", docURL)
	return &models.DocExportResponse{DocURL: docURL}, nil
}
