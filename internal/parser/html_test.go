package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_HeadingsAndBlocks(t *testing.T) {
	input := `<html><head><title>Ignored</title><style>h1{color:red}</style></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Guide   to <em>Lyon</em></h1>
<p>Lyon is known for its cuisine.</p>
<h2>Restaurants</h2>
<ul><li>Bouchon A</li><li>Bouchon B</li></ul>
<script>var x = 1;</script>
<div>Loose text</div>
<footer>Copyright</footer>
</body></html>`

	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "lyon.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		text string
		size int
		bold bool
	}{
		{"Guide to Lyon", 24, true},
		{"Lyon is known for its cuisine.", 12, false},
		{"Restaurants", 20, true},
		{"Bouchon A", 12, false},
		{"Bouchon B", 12, false},
		{"Loose text", 12, false},
	}
	if len(doc.Fragments) != len(want) {
		t.Fatalf("expected %d fragments, got %v", len(want), fragmentTexts(doc))
	}
	for i, w := range want {
		f := doc.Fragments[i]
		if f.Text != w.text || f.Size != w.size || f.Bold != w.bold {
			t.Errorf("fragment %d: expected %+v, got %+v", i, w, f)
		}
	}
}

func TestHTMLParser_PageBreakRule(t *testing.T) {
	input := `<body><h1>One</h1><hr style="page-break-after: always"><h1>Two</h1><hr><p>Same page</p></body>`
	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "pages.html")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if got := doc.Fragments[len(doc.Fragments)-1]; got.Page != 2 {
		t.Errorf("expected last fragment on page 2, got %+v", got)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := map[string]int{"h1": 1, "h3": 3, "h6": 6, "h7": 0, "hr": 0, "p": 0, "header": 0}
	for tag, want := range tests {
		if got := headingLevel(tag); got != want {
			t.Errorf("headingLevel(%q) = %d, want %d", tag, got, want)
		}
	}
}
