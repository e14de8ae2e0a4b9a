package services_test

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/sowforge/internal/models"
	"github.com/Lllllllleong/sowforge/internal/services"
)

func analyzedDoc(filename, category, summary string, reqs ...string) models.SourceDocument {
	analysis := &models.Analysis{Summary: summary}
	for _, r := range reqs {
		analysis.Requirements = append(analysis.Requirements, models.Requirement{Description: r})
	}
	return models.SourceDocument{
		OriginalFilename: filename,
		Category:         category,
		Status:           string(models.StatusAnalyzedSuccess),
		Analysis:         analysis,
	}
}

func TestAggregateAnalyses(t *testing.T) {
	docs := map[string]models.SourceDocument{
		"docB": analyzedDoc("budget.pdf", "Financial / Budgetary", "Budget summary", "Track spend"),
		"docA": analyzedDoc("bill.pdf", "Legislative / Legal", "Bill summary", "Register vehicles", "Retain records"),
	}

	requirements, summaries := services.AggregateAnalyses(docs)

	if len(requirements) != 3 {
		t.Fatalf("len(requirements) = %d, want 3", len(requirements))
	}
	// Walk order is by document ID, so docA's requirements come first.
	if requirements[0].SourceFile != "bill.pdf" {
		t.Errorf("requirements[0].SourceFile = %q, want bill.pdf", requirements[0].SourceFile)
	}
	if requirements[2].SourceFile != "budget.pdf" {
		t.Errorf("requirements[2].SourceFile = %q, want budget.pdf", requirements[2].SourceFile)
	}

	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	if summaries[0].Filename != "bill.pdf" || summaries[0].Summary != "Bill summary" {
		t.Errorf("summaries[0] = %+v, want bill.pdf / Bill summary", summaries[0])
	}
}

func TestAggregateAnalysesSkipsMissingAnalysis(t *testing.T) {
	docs := map[string]models.SourceDocument{
		"docA": analyzedDoc("bill.pdf", "General", "Summary", "One requirement"),
		"docB": {OriginalFilename: "broken.pdf", Status: string(models.StatusAnalyzedSuccess)},
	}

	requirements, summaries := services.AggregateAnalyses(docs)
	if len(requirements) != 1 || len(summaries) != 1 {
		t.Errorf("got %d requirements, %d summaries; want 1 and 1", len(requirements), len(summaries))
	}
}

func TestAggregateAnalysesDefaults(t *testing.T) {
	docs := map[string]models.SourceDocument{
		"docA": analyzedDoc("", "", "Anonymous summary", "A requirement"),
	}

	requirements, summaries := services.AggregateAnalyses(docs)
	if requirements[0].SourceFile != "Unknown" {
		t.Errorf("SourceFile = %q, want Unknown", requirements[0].SourceFile)
	}
	if summaries[0].Category != "General" {
		t.Errorf("Category = %q, want General", summaries[0].Category)
	}
}

func TestBuildMetaSummaryPrompt(t *testing.T) {
	summaries := []models.DocumentSummary{
		{Filename: "bill.pdf", Category: "Legislative / Legal", Summary: "A bill about registration."},
	}

	got, err := services.BuildMetaSummaryPrompt(summaries)
	if err != nil {
		t.Fatalf("BuildMetaSummaryPrompt failed: %v", err)
	}
	if !strings.Contains(got, "bill.pdf") {
		t.Errorf("prompt does not embed summary JSON: %q", got)
	}
	if !strings.Contains(got, "project overview") {
		t.Errorf("prompt is missing its instruction text: %q", got)
	}
}
