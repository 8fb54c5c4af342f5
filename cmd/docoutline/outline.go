package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/report"
	"github.com/spf13/cobra"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <input_dir> <output_dir>",
	Short: "Write a <name>.json outline for every document in a directory",
	Long: `Outline parses every supported file in input_dir and writes its title and
heading outline to output_dir/<name>.json. Files that fail to parse are
logged and skipped.

Examples:
  docoutline outline ./input ./output`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := outlineDir(args[0], args[1], parseOptions(), log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d outline(s) to %s\n", written, args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}

// outlineDir returns how many outlines were written.
func outlineDir(inputDir, outputDir string, opts parser.Options, log *slog.Logger) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && parser.IsSupportedExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		if err := outlineFile(filepath.Join(inputDir, name), outputDir, opts); err != nil {
			log.Warn("skipping document", "filename", name, "error", err)
			continue
		}
		log.Debug("outline written", "filename", name)
		written++
	}
	return written, nil
}

func outlineFile(path, outputDir string, opts parser.Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	doc, err := pipeline.LoadDocument(name, data, opts)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	out, err := os.Create(filepath.Join(outputDir, stem+".json"))
	if err != nil {
		return err
	}
	if err := report.WriteJSON(out, pipeline.BuildOutline(doc)); err != nil {
		out.Close()
		return fmt.Errorf("write outline: %w", err)
	}
	return out.Close()
}
