package pipeline

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/metrics"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
)

// LoadDocument parses one file into fragments.
func LoadDocument(filename string, data []byte, opts parser.Options) (*doctree.Document, error) {
	p, err := parser.ForFile(filename, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

// BuildOutline produces the published outline of a parsed document.
func BuildOutline(doc *doctree.Document) doctree.Outline {
	o := outline.Build(doc.Fragments)
	metrics.OutlineHeadings.Observe(float64(len(o.Items)))
	return o
}
