package paths_test

import (
	"errors"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/paths"
)

func TestSourcePathRoundTrip(t *testing.T) {
	tests := []struct {
		projectID  string
		documentID string
		filename   string
	}{
		{"proj1", "docA", "bill.pdf"},
		{"proj-2", "doc_b", "nested/original name.pdf"},
		{"template_job_XYZ", "sample1", "sample.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.projectID+"/"+tt.documentID, func(t *testing.T) {
			encoded := paths.EncodeSourcePath(tt.projectID, tt.documentID, tt.filename)
			ref, err := paths.DecodeSource(encoded)
			if err != nil {
				t.Fatalf("DecodeSource(%q) failed: %v", encoded, err)
			}
			if ref.ProjectID != tt.projectID {
				t.Errorf("ProjectID = %q, want %q", ref.ProjectID, tt.projectID)
			}
			if ref.DocumentID != tt.documentID {
				t.Errorf("DocumentID = %q, want %q", ref.DocumentID, tt.documentID)
			}
			if ref.Remainder != tt.filename {
				t.Errorf("Remainder = %q, want %q", ref.Remainder, tt.filename)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"single segment", "loose-file.pdf"},
		{"trailing slash only", "proj1/"},
		{"leading slash no segments", "///"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := paths.Decode(tt.path); !errors.Is(err, paths.ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tt.path, err)
			}
		})
	}
}

func TestDecodeSourceRequiresFilename(t *testing.T) {
	if _, err := paths.DecodeSource("proj1/docA"); !errors.Is(err, paths.ErrMalformed) {
		t.Errorf("DecodeSource without filename: error = %v, want ErrMalformed", err)
	}
}

func TestDecodeBatchResultPath(t *testing.T) {
	// Document AI nests its output under an operation-id sub-directory.
	ref, err := paths.Decode("proj2/docB/1234567890/result-output-0.json")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if ref.ProjectID != "proj2" || ref.DocumentID != "docB" {
		t.Errorf("got (%q, %q), want (proj2, docB)", ref.ProjectID, ref.DocumentID)
	}
	if ref.IsTemplateJob() {
		t.Error("IsTemplateJob() = true for a normal project path")
	}
}

func TestDecodeTemplateJobPrefix(t *testing.T) {
	ref, err := paths.Decode("template_job_XYZ/sample1/result.json")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !ref.IsTemplateJob() {
		t.Fatal("IsTemplateJob() = false, want true")
	}
	if ref.TemplateJobID != "XYZ" {
		t.Errorf("TemplateJobID = %q, want %q", ref.TemplateJobID, "XYZ")
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		projectID  string
		documentID string
		wantErr    bool
	}{
		{"txt artifact", "proj1/docA.txt", "proj1", "docA", false},
		{"no extension", "proj1/docA", "proj1", "docA", false},
		{"too deep", "proj1/docA/extra.txt", "", "", true},
		{"single segment", "docA.txt", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := paths.DecodeText(tt.path)
			if tt.wantErr {
				if !errors.Is(err, paths.ErrMalformed) {
					t.Errorf("error = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeText(%q) failed: %v", tt.path, err)
			}
			if ref.ProjectID != tt.projectID || ref.DocumentID != tt.documentID {
				t.Errorf("got (%q, %q), want (%q, %q)", ref.ProjectID, ref.DocumentID, tt.projectID, tt.documentID)
			}
		})
	}
}

func TestEncodeTextPath(t *testing.T) {
	if got := paths.EncodeTextPath("proj1", "docA"); got != "proj1/docA.txt" {
		t.Errorf("EncodeTextPath = %q, want %q", got, "proj1/docA.txt")
	}
}

func TestBatchOutputPrefix(t *testing.T) {
	got := paths.BatchOutputPrefix("batch-out", "proj2", "docB")
	want := "gs://batch-out/proj2/docB/"
	if got != want {
		t.Errorf("BatchOutputPrefix = %q, want %q", got, want)
	}
}
