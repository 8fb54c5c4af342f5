package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/parser"
)

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument("lyon.md", []byte(lyonGuide), parser.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "lyon.md" || len(doc.Fragments) != 6 {
		t.Errorf("unexpected document: %s with %d fragments", doc.Name, len(doc.Fragments))
	}

	if _, err := LoadDocument("sheet.xlsx", []byte("x"), parser.Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if _, err := LoadDocument("broken.pdf", []byte("nope"), parser.Options{}); err == nil {
		t.Error("expected error for unreadable pdf")
	}
}

func TestBuildOutline(t *testing.T) {
	doc, err := LoadDocument("lyon.md", []byte(lyonGuide), parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	o := BuildOutline(doc)
	if o.Title != "Lyon Travel Guide" {
		t.Errorf("expected title Lyon Travel Guide, got %q", o.Title)
	}
	want := []doctree.OutlineItem{
		{Level: doctree.H2, Text: "Food and Wine", Page: 1},
		{Level: doctree.H2, Text: "Roman History", Page: 1},
	}
	if len(o.Items) != len(want) {
		t.Fatalf("expected %d items, got %+v", len(want), o.Items)
	}
	for i := range want {
		if o.Items[i] != want[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, want[i], o.Items[i])
		}
	}
}

func TestWorker_OutlineJob(t *testing.T) {
	job := NewJob(KindOutline, []Upload{
		{Filename: "lyon.md", Data: []byte(lyonGuide)},
		{Filename: "broken.pdf", Data: []byte("not a pdf")},
		{Filename: "paris.md", Data: []byte(parisGuide)},
	})
	w := NewWorker(nil, discardLog, parser.Options{}, 2, 5)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusPartial {
		t.Fatalf("expected partial status, got %s (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.DocumentsProcessed != 3 || snap.Progress.DocumentsFailed != 1 {
		t.Errorf("unexpected progress: %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 || !strings.HasPrefix(snap.Progress.Errors[0], "broken.pdf:") {
		t.Errorf("expected broken.pdf error, got %v", snap.Progress.Errors)
	}

	res := job.Outlines()
	if len(res) != 2 {
		t.Fatalf("expected 2 outlines, got %d", len(res))
	}
	if res[0].Document != "lyon.md" || res[1].Document != "paris.md" {
		t.Errorf("expected submission order, got %s, %s", res[0].Document, res[1].Document)
	}
	if res[1].Outline.Title != "Paris Notes" {
		t.Errorf("unexpected paris title %q", res[1].Outline.Title)
	}
	if job.Files() != nil {
		t.Error("expected uploads to be released after parsing")
	}
}

func TestWorker_AllDocumentsFail(t *testing.T) {
	job := NewJob(KindOutline, []Upload{{Filename: "a.pdf", Data: []byte("bad")}})
	NewWorker(nil, discardLog, parser.Options{}, 1, 5).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "parsing" {
		t.Errorf("expected failed in parsing, got %s/%s", snap.Status, snap.Phase)
	}
}

func TestWorker_AnalysisJob(t *testing.T) {
	job := NewJob(KindAnalysis, []Upload{
		{Filename: "lyon.md", Data: []byte(lyonGuide)},
		{Filename: "paris.md", Data: []byte(parisGuide)},
	})
	job.Persona = "food critic"
	job.Task = "plan a wine tasting"
	job.TopN = 3

	NewWorker(keywordEmbedder{}, discardLog, parser.Options{}, 2, 5).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.SectionsRanked != 3 {
		t.Errorf("expected 3 sections ranked, got %d", snap.Progress.SectionsRanked)
	}

	res := job.Analysis()
	if res == nil {
		t.Fatal("expected analysis result")
	}
	if res.Metadata.Persona != "food critic" || res.Metadata.JobToBeDone != "plan a wine tasting" {
		t.Errorf("unexpected metadata: %+v", res.Metadata)
	}
	if len(res.Metadata.InputDocuments) != 2 {
		t.Errorf("expected 2 input documents, got %v", res.Metadata.InputDocuments)
	}

	want := []struct{ doc, title string }{
		{"lyon.md", "Food and Wine"},
		{"paris.md", "Cuisine Basics"},
		{"lyon.md", "Roman History"},
	}
	if len(res.ExtractedSections) != len(want) {
		t.Fatalf("expected %d sections, got %+v", len(want), res.ExtractedSections)
	}
	for i, w := range want {
		s := res.ExtractedSections[i]
		if s.Document != w.doc || s.SectionTitle != w.title || s.ImportanceRank != i+1 {
			t.Errorf("section %d: expected %s/%s rank %d, got %+v", i, w.doc, w.title, i+1, s)
		}
	}
	if len(res.SubsectionAnalysis) == 0 || !strings.HasPrefix(res.SubsectionAnalysis[0].RefinedText, "Eat at bouchons") {
		t.Errorf("unexpected first excerpt: %+v", res.SubsectionAnalysis)
	}
}

func TestWorker_AnalysisDefaultTopN(t *testing.T) {
	job := NewJob(KindAnalysis, []Upload{
		{Filename: "lyon.md", Data: []byte(lyonGuide)},
		{Filename: "paris.md", Data: []byte(parisGuide)},
	})
	job.Persona, job.Task = "historian", "study roman sites"
	NewWorker(keywordEmbedder{}, discardLog, parser.Options{}, 1, 1).Process(context.Background(), job)

	res := job.Analysis()
	if res == nil || len(res.ExtractedSections) != 1 {
		t.Fatalf("expected one section from worker default top n, got %+v", res)
	}
}

func TestWorker_AnalysisEmbeddingFailure(t *testing.T) {
	job := NewJob(KindAnalysis, []Upload{{Filename: "lyon.md", Data: []byte(lyonGuide)}})
	job.Persona, job.Task = "critic", "eat"
	NewWorker(keywordEmbedder{err: errEmbedDown}, discardLog, parser.Options{}, 1, 5).Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "ranking" {
		t.Fatalf("expected failed in ranking, got %s/%s", snap.Status, snap.Phase)
	}
	if job.Analysis() != nil {
		t.Error("expected no partial analysis after embedding failure")
	}
}

func TestWorker_AnalysisWithoutEmbedder(t *testing.T) {
	job := NewJob(KindAnalysis, []Upload{{Filename: "lyon.md", Data: []byte(lyonGuide)}})
	NewWorker(nil, discardLog, parser.Options{}, 1, 5).Process(context.Background(), job)
	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected failed, got %s", got)
	}
}

func TestWorker_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := NewJob(KindOutline, []Upload{{Filename: "lyon.md", Data: []byte(lyonGuide)}})
	NewWorker(nil, discardLog, parser.Options{}, 1, 5).Process(ctx, job)
	if got := job.Snapshot().Status; got != StatusFailed {
		t.Errorf("expected failed for canceled context, got %s", got)
	}
}
