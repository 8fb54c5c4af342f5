// Package report defines the JSON documents produced and consumed by docoutline.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// OutlineResult is the outline of one named input document.
type OutlineResult struct {
	Document string          `json:"document"`
	Outline  doctree.Outline `json:"outline"`
}

// Metadata describes the analysis request.
type Metadata struct {
	InputDocuments      []string `json:"input_documents"`
	Persona             string   `json:"persona"`
	JobToBeDone         string   `json:"job_to_be_done"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
}

// ExtractedSection is one ranked heading.
type ExtractedSection struct {
	Document       string `json:"document"`
	SectionTitle   string `json:"section_title"`
	ImportanceRank int    `json:"importance_rank"` // 1-based
	PageNumber     int    `json:"page_number"`
}

// Subsection is the text that follows a ranked heading.
type Subsection struct {
	Document    string `json:"document"`
	RefinedText string `json:"refined_text"`
	PageNumber  int    `json:"page_number"`
}

// Analysis is the relevance-ranking output for one document collection.
type Analysis struct {
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

// NewAnalysis returns an Analysis with its metadata filled in and empty result lists.
func NewAnalysis(inputDocs []string, persona, job string, now time.Time) *Analysis {
	if inputDocs == nil {
		inputDocs = []string{}
	}
	return &Analysis{
		Metadata: Metadata{
			InputDocuments:      inputDocs,
			Persona:             persona,
			JobToBeDone:         job,
			ProcessingTimestamp: FormatTimestamp(now),
		},
		ExtractedSections:  []ExtractedSection{},
		SubsectionAnalysis: []Subsection{},
	}
}

// FormatTimestamp renders t as ISO-8601 in UTC with microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}

// MarshalJSON emits empty lists as [] rather than null.
func (a Analysis) MarshalJSON() ([]byte, error) {
	type plain Analysis
	p := plain(a)
	if p.Metadata.InputDocuments == nil {
		p.Metadata.InputDocuments = []string{}
	}
	if p.ExtractedSections == nil {
		p.ExtractedSections = []ExtractedSection{}
	}
	if p.SubsectionAnalysis == nil {
		p.SubsectionAnalysis = []Subsection{}
	}
	return doctree.MarshalPlain(p)
}

// WriteJSON writes v as JSON indented by four spaces, followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
