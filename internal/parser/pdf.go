package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dgallion1/docoutline/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads glyph runs with the Go library
// first, then falls back to pdftotext -bbox-layout if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

// ErrNoText is returned when a PDF yields no text by any extraction path.
var ErrNoText = errors.New("pdf contains no extractable text")

// Span merging thresholds, in multiples of the font size.
const (
	baselineTolerance = 0.2
	maxOverlap        = 0.5
	columnGap         = 3.0
	wordGap           = 0.25
	ascent            = 0.8
	descent           = 0.2
)

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demi"}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// ledongthuc/pdf requires a ReaderAt+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docoutline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc := &doctree.Document{Name: filename}
	frags, pages, err := extractPDFFragments(tmpPath)
	if err == nil && len(frags) > 0 {
		doc.Fragments, doc.Pages = frags, pages
		return doc, nil
	}

	if p.FallbackPdftotext {
		fbFrags, fbPages, fbErr := extractPdftotextBBox(tmpPath)
		if fbErr == nil && len(fbFrags) > 0 {
			doc.Fragments, doc.Pages = fbFrags, fbPages
			return doc, nil
		}
		if err != nil && fbErr != nil {
			err = errors.Join(err, fbErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	// Readable but textless: keep the page geometry, no fragments.
	doc.Pages = pages
	return doc, nil
}

func extractPDFFragments(path string) (frags []doctree.Fragment, pages []doctree.PageSize, err error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, nil, err
	}
	defer f.Close()
	defer func() {
		if r := recover(); r != nil {
			frags, pages, err = nil, nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		size := doctree.PageSize{Width: letterWidth, Height: letterHeight}
		if page.V.IsNull() {
			pages = append(pages, size)
			continue
		}
		box := mediaBox(page)
		size = doctree.PageSize{Width: box[2] - box[0], Height: box[3] - box[1]}
		pages = append(pages, size)
		frags = append(frags, pageFragments(page, i, box)...)
	}
	return frags, pages, nil
}

// mediaBox returns the page's [x0 y0 x1 y1], inherited from ancestors when
// the page itself has none.
func mediaBox(page pdflib.Page) [4]float64 {
	box := [4]float64{0, 0, letterWidth, letterHeight}
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		mb := v.Key("MediaBox")
		if mb.Len() != 4 {
			continue
		}
		for i := range box {
			box[i] = mb.Index(i).Float64()
		}
		if box[2] <= box[0] || box[3] <= box[1] {
			return [4]float64{0, 0, letterWidth, letterHeight}
		}
		return box
	}
	return box
}

// pageFragments merges a page's glyphs into spans. A page whose content
// stream the library cannot interpret yields no fragments.
func pageFragments(page pdflib.Page, num int, box [4]float64) (frags []doctree.Fragment) {
	defer func() {
		if recover() != nil {
			frags = nil
		}
	}()

	var cur *span
	flush := func() {
		if cur == nil {
			return
		}
		if f, ok := cur.fragment(num, box); ok {
			frags = append(frags, f)
		}
		cur = nil
	}
	for _, t := range page.Content().Text {
		size := math.Abs(t.FontSize)
		if size == 0 {
			continue
		}
		if cur != nil && cur.accepts(t, size) {
			cur.add(t)
			continue
		}
		flush()
		cur = newSpan(t, size)
	}
	flush()
	return frags
}

type span struct {
	font     string
	size     float64
	baseline float64
	x0, x1   float64
	text     strings.Builder
}

func newSpan(t pdflib.Text, size float64) *span {
	s := &span{font: t.Font, size: size, baseline: t.Y, x0: t.X, x1: t.X}
	s.add(t)
	return s
}

func (s *span) accepts(t pdflib.Text, size float64) bool {
	if t.Font != s.font || math.RoundToEven(size) != math.RoundToEven(s.size) {
		return false
	}
	if math.Abs(t.Y-s.baseline) > baselineTolerance*s.size {
		return false
	}
	gap := t.X - s.x1
	return gap >= -maxOverlap*s.size && gap <= columnGap*s.size
}

func (s *span) add(t pdflib.Text) {
	if s.text.Len() > 0 && t.X-s.x1 > wordGap*s.size {
		s.text.WriteByte(' ')
	}
	s.text.WriteString(t.S)
	s.x1 = max(s.x1, t.X+math.Abs(t.W))
}

func (s *span) fragment(page int, box [4]float64) (doctree.Fragment, bool) {
	text := strings.Join(strings.Fields(s.text.String()), " ")
	if text == "" {
		return doctree.Fragment{}, false
	}
	top := box[3] - (s.baseline + ascent*s.size)
	bottom := box[3] - (s.baseline - descent*s.size)
	return doctree.Fragment{
		Text: text,
		Size: int(math.RoundToEven(s.size)),
		Font: s.font,
		Bold: isBoldFont(s.font),
		BBox: doctree.BBox{X0: s.x0 - box[0], Y0: top, X1: s.x1 - box[0], Y1: bottom},
		Page: page,
	}, true
}

func isBoldFont(name string) bool {
	name = strings.ToLower(name)
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
