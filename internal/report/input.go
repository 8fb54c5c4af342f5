package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// CollectionInputFile and CollectionOutputFile are the fixed file names inside a collection directory.
const (
	CollectionInputFile  = "challenge1b_input.json"
	CollectionOutputFile = "challenge1b_output.json"
	CollectionPDFDir     = "PDFs"
)

type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name"`
	Description  string `json:"description"`
}

type DocumentRef struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

type Persona struct {
	Role string `json:"role"`
}

type JobToBeDone struct {
	Task string `json:"task"`
}

// CollectionInput is the request file describing a document collection.
type CollectionInput struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info"`
	Documents     []DocumentRef `json:"documents"`
	Persona       Persona       `json:"persona"`
	JobToBeDone   JobToBeDone   `json:"job_to_be_done"`
}

// ReadCollectionInput decodes and validates a collection request.
func ReadCollectionInput(r io.Reader) (*CollectionInput, error) {
	var in CollectionInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode collection input: %w", err)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks that the fields the analysis depends on are present.
func (in *CollectionInput) Validate() error {
	var errs []error
	if strings.TrimSpace(in.Persona.Role) == "" {
		errs = append(errs, errors.New("persona.role is required"))
	}
	if strings.TrimSpace(in.JobToBeDone.Task) == "" {
		errs = append(errs, errors.New("job_to_be_done.task is required"))
	}
	if len(in.Documents) == 0 {
		errs = append(errs, errors.New("documents must not be empty"))
	}
	for i, d := range in.Documents {
		switch name := d.Filename; {
		case strings.TrimSpace(name) == "":
			errs = append(errs, fmt.Errorf("documents[%d].filename is required", i))
		case name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`):
			errs = append(errs, fmt.Errorf("documents[%d].filename %q must be a bare file name", i, name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid collection input: %w", errors.Join(errs...))
	}
	return nil
}

// Filenames returns the document filenames in request order.
func (in *CollectionInput) Filenames() []string {
	names := make([]string, len(in.Documents))
	for i, d := range in.Documents {
		names[i] = d.Filename
	}
	return names
}
