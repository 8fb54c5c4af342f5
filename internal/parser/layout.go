package parser

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Synthetic page geometry, in points.
const (
	letterWidth  = 612.0
	letterHeight = 792.0
	pageMargin   = 72.0
	lineHeight   = 1.2 // Multiple of font size
	blockGap     = 6.0
	avgCharWidth = 0.5 // Multiple of font size

	bodySize = 12
)

const (
	regularFont = "Helvetica"
	boldFont    = "Helvetica-Bold"
)

// headingSizes maps heading levels 1-6 to point sizes.
var headingSizes = [6]int{24, 20, 16, 14, 13, 13}

// HeadingSize returns the synthetic font size for a heading level.
func HeadingSize(level int) int {
	level = min(max(level, 1), len(headingSizes))
	return headingSizes[level-1]
}

// layouter places blocks top to bottom on letter pages.
type layouter struct {
	doc  *doctree.Document
	page int
	y    float64
}

func newLayouter(name string) *layouter {
	return &layouter{doc: &doctree.Document{Name: name}}
}

// heading places a bold heading block.
func (l *layouter) heading(level int, text string) {
	l.place(text, HeadingSize(level), true)
}

// paragraph places a regular body block.
func (l *layouter) paragraph(text string) {
	l.place(text, bodySize, false)
}

// pageBreak starts a new page before the next block.
func (l *layouter) pageBreak() {
	if l.page > 0 {
		l.y = math.Inf(1)
	}
}

func (l *layouter) place(text string, size int, bold bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return
	}

	usable := letterWidth - 2*pageMargin
	perLine := max(1, int(usable/(float64(size)*avgCharWidth)))
	lines := (utf8.RuneCountInString(text) + perLine - 1) / perLine
	height := float64(lines) * float64(size) * lineHeight

	if l.page == 0 || (l.y+height > letterHeight-pageMargin && l.y > pageMargin) {
		l.newPage()
	}

	width := usable
	if lines == 1 {
		width = float64(utf8.RuneCountInString(text)) * float64(size) * avgCharWidth
	}
	font := regularFont
	if bold {
		font = boldFont
	}

	l.doc.Fragments = append(l.doc.Fragments, doctree.Fragment{
		Text: text,
		Size: size,
		Font: font,
		Bold: bold,
		BBox: doctree.BBox{X0: pageMargin, Y0: l.y, X1: pageMargin + width, Y1: l.y + height},
		Page: l.page,
	})
	l.y += height + blockGap
}

func (l *layouter) newPage() {
	l.page++
	l.y = pageMargin
	l.doc.Pages = append(l.doc.Pages, doctree.PageSize{Width: letterWidth, Height: letterHeight})
}

func (l *layouter) finish() *doctree.Document {
	return l.doc
}
