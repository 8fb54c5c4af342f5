package doctree

import (
	"bytes"
	"encoding/json"
)

// BBox is a rectangle in page coordinates with y increasing downward.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"` // Top edge
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"` // Bottom edge
}

// Fragment is one styled run of text as produced by a parser.
// Fragments are never mutated after parsing.
type Fragment struct {
	Text string `json:"text"`
	Size int    `json:"size"` // Rounded point size
	Font string `json:"font"`
	Bold bool   `json:"bold"`
	BBox BBox   `json:"bbox"`
	Page int    `json:"page"` // 1-based
}

// PageSize is the width and height of a page in points.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the parsed form of one input file.
type Document struct {
	Name      string     // Source filename
	Fragments []Fragment // In reading order
	Pages     []PageSize
}

// Level is an outline heading level.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// LevelFor maps a 1-based depth to a Level, clamped to H1..H3.
func LevelFor(depth int) Level {
	switch {
	case depth <= 1:
		return H1
	case depth == 2:
		return H2
	default:
		return H3
	}
}

// OutlineItem is a single heading in a document outline.
type OutlineItem struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the title and ordered headings of one document.
type Outline struct {
	Title string        `json:"title"`
	Items []OutlineItem `json:"outline"`
}

// MarshalJSON always emits "outline" as an array.
func (o Outline) MarshalJSON() ([]byte, error) {
	items := o.Items
	if items == nil {
		items = []OutlineItem{}
	}
	return MarshalPlain(struct {
		Title string        `json:"title"`
		Items []OutlineItem `json:"outline"`
	}{o.Title, items})
}

// MarshalPlain is json.Marshal without HTML escaping, so headings such as
// "R&D" survive verbatim.
func MarshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
