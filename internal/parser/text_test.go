package parser

import (
	"strings"
	"testing"
)

func TestTextParser_LinesBecomeFragments(t *testing.T) {
	input := "First line.\n\n  Second   line  \nThird line."
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"First line.", "Second line", "Third line."}
	got := fragmentTexts(doc)
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i, f := range doc.Fragments {
		if f.Size != bodySize || f.Bold || f.Font != regularFont {
			t.Errorf("fragment %d: expected regular body style, got %+v", i, f)
		}
	}
	if doc.Fragments[0].BBox.Y1 > doc.Fragments[1].BBox.Y0 {
		t.Errorf("expected fragments stacked top to bottom, got %+v then %+v", doc.Fragments[0].BBox, doc.Fragments[1].BBox)
	}
}

func TestTextParser_FormFeedStartsPage(t *testing.T) {
	input := "page one\fpage two\nstill two\n\fpage three"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "paged.txt")
	if err != nil {
		t.Fatal(err)
	}
	wantPages := []int{1, 2, 2, 3}
	if len(doc.Fragments) != len(wantPages) {
		t.Fatalf("expected %d fragments, got %v", len(wantPages), fragmentTexts(doc))
	}
	for i, p := range wantPages {
		if doc.Fragments[i].Page != p {
			t.Errorf("fragment %d (%q): expected page %d, got %d", i, doc.Fragments[i].Text, p, doc.Fragments[i].Page)
		}
	}
	if len(doc.Pages) != 3 {
		t.Errorf("expected 3 pages, got %d", len(doc.Pages))
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "empty.txt" {
		t.Errorf("expected name %q, got %q", "empty.txt", doc.Name)
	}
	if len(doc.Fragments) != 0 {
		t.Errorf("expected 0 fragments for empty input, got %d", len(doc.Fragments))
	}
}
