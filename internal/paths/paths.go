// Package paths implements the GCS object naming convention that correlates
// independently triggered pipeline stages. The (projectID, documentID) pair
// embedded in every path is the only shared context between the stage that
// submits an asynchronous extraction job and the stage that receives its
// output.
package paths

import (
	"errors"
	"fmt"
	"strings"
)

// TemplateJobPrefix marks a projectID segment as belonging to a
// template-aggregation batch job rather than a real project.
const TemplateJobPrefix = "template_job_"

// ErrMalformed is returned when a path does not carry enough segments to
// identify a project and document. Event handlers watching a bucket must
// treat it as "not ours", not as a failure: unrelated objects can and do
// land in watched locations.
var ErrMalformed = errors.New("malformed object path")

// Ref identifies the logical document a GCS object belongs to.
type Ref struct {
	ProjectID  string
	DocumentID string
	// Remainder holds everything after the first two segments: the original
	// filename for uploads, the batch operation sub-path for job output.
	Remainder string
	// TemplateJobID is set when ProjectID carries the template-job prefix,
	// so callers never re-parse the string themselves.
	TemplateJobID string
}

// IsTemplateJob reports whether the ref belongs to a template-aggregation
// job rather than a project document.
func (r Ref) IsTemplateJob() bool {
	return r.TemplateJobID != ""
}

// EncodeSourcePath builds the upload path {projectID}/{documentID}/{filename}.
func EncodeSourcePath(projectID, documentID, filename string) string {
	return fmt.Sprintf("%s/%s/%s", projectID, documentID, filename)
}

// EncodeTextPath builds the extracted-text artifact path
// {projectID}/{documentID}.txt.
func EncodeTextPath(projectID, documentID string) string {
	return fmt.Sprintf("%s/%s.txt", projectID, documentID)
}

// BatchOutputPrefix builds the declared output directory for an async
// extraction job. A trailing slash makes Document AI treat it as a prefix.
func BatchOutputPrefix(bucket, projectID, documentID string) string {
	return fmt.Sprintf("gs://%s/%s/%s/", bucket, projectID, documentID)
}

// Decode splits an object path into its Ref. At least two segments are
// required; anything further becomes the Remainder. Empty leading segments
// (absolute-style paths) are rejected as malformed.
func Decode(objectPath string) (Ref, error) {
	parts := strings.Split(strings.Trim(objectPath, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrMalformed, objectPath)
	}
	ref := Ref{
		ProjectID:  parts[0],
		DocumentID: parts[1],
		Remainder:  strings.Join(parts[2:], "/"),
	}
	if id, ok := strings.CutPrefix(ref.ProjectID, TemplateJobPrefix); ok && id != "" {
		ref.TemplateJobID = id
	}
	return ref, nil
}

// DecodeSource decodes an upload path, which must carry an original
// filename after the project and document segments.
func DecodeSource(objectPath string) (Ref, error) {
	ref, err := Decode(objectPath)
	if err != nil {
		return Ref{}, err
	}
	if ref.Remainder == "" {
		return Ref{}, fmt.Errorf("%w: upload path %q has no filename segment", ErrMalformed, objectPath)
	}
	return ref, nil
}

// DecodeText decodes an extracted-text artifact path of the exact form
// {projectID}/{documentID}.{ext}, stripping the extension from the
// document segment.
func DecodeText(objectPath string) (Ref, error) {
	parts := strings.Split(strings.Trim(objectPath, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("%w: expected {projectId}/{documentId}.{ext}, got %q", ErrMalformed, objectPath)
	}
	docID := parts[1]
	if i := strings.LastIndex(docID, "."); i > 0 {
		docID = docID[:i]
	}
	ref := Ref{ProjectID: parts[0], DocumentID: docID}
	if id, ok := strings.CutPrefix(ref.ProjectID, TemplateJobPrefix); ok && id != "" {
		ref.TemplateJobID = id
	}
	return ref, nil
}
