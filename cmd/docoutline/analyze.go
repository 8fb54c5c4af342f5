package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/embedding"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/relevance"
	"github.com/dgallion1/docoutline/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagOutput string
	flagTopN   int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <collection_dir>",
	Short: "Rank a collection's sections for its persona and job to be done",
	Long: `Analyze reads collection_dir/challenge1b_input.json and the PDFs it lists
from collection_dir/PDFs/, ranks every heading against the persona and task,
and writes the ranked sections with their excerpts as JSON.

Requires EMBEDDING_BASE_URL to point at an OpenAI-compatible embedding endpoint.

Examples:
  docoutline analyze ./collection1
  docoutline analyze ./collection1 --top-n 10 --output result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file (default: <collection_dir>/challenge1b_output.json)")
	analyzeCmd.Flags().IntVar(&flagTopN, "top-n", 0, "Number of sections to return (default: TOP_N_SECTIONS)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateEmbedding(); err != nil {
		return err
	}
	ctx := cmd.Context()

	svc, err := embedding.New(ctx, cfg.Embedding(), log)
	if errors.Is(err, embedding.ErrNotConfigured) {
		return fmt.Errorf("analyze needs an embedding endpoint: %w", relevance.ErrNoEmbedder)
	}
	if err != nil {
		return err
	}
	defer svc.Close()

	topN := flagTopN
	if topN <= 0 {
		topN = cfg.TopNSections
	}
	output := flagOutput
	if output == "" {
		output = filepath.Join(args[0], report.CollectionOutputFile)
	}

	analysis, err := analyzeCollection(ctx, args[0], svc.Embedder, topN, parseOptions(), log)
	if err != nil {
		return err
	}
	if err := writeAnalysis(output, analysis); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d section(s) to %s\n", len(analysis.ExtractedSections), output)
	return nil
}

// analyzeCollection ranks the documents a collection input names. Listed
// documents that are missing or unreadable are skipped with a warning.
func analyzeCollection(ctx context.Context, dir string, emb embedding.Embedder, topN int, opts parser.Options, log *slog.Logger) (*report.Analysis, error) {
	f, err := os.Open(filepath.Join(dir, report.CollectionInputFile))
	if err != nil {
		return nil, fmt.Errorf("open collection input: %w", err)
	}
	in, err := report.ReadCollectionInput(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	analyzer, err := relevance.NewAnalyzer(emb, topN, log)
	if err != nil {
		return nil, err
	}

	var docs []*doctree.Document
	for _, name := range in.Filenames() {
		data, err := os.ReadFile(filepath.Join(dir, report.CollectionPDFDir, name))
		if err != nil {
			log.Warn("skipping missing document", "filename", name, "error", err)
			continue
		}
		doc, err := pipeline.LoadDocument(name, data, opts)
		if err != nil {
			log.Warn("skipping unreadable document", "filename", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	log.Info("collection loaded",
		"challenge_id", in.ChallengeInfo.ChallengeID,
		"requested", len(in.Documents),
		"parsed", len(docs),
	)

	return analyzer.Analyze(ctx, relevance.Request{
		Persona:        in.Persona.Role,
		Job:            in.JobToBeDone.Task,
		InputDocuments: in.Filenames(),
		Documents:      docs,
	})
}

func writeAnalysis(path string, a *report.Analysis) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := report.WriteJSON(out, a); err != nil {
		out.Close()
		return fmt.Errorf("write analysis: %w", err)
	}
	return out.Close()
}
