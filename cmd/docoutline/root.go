package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docoutline",
	Short: "Extract heading outlines and persona-relevant sections from documents",
	Long: `docoutline reads PDF, DOCX, Markdown and HTML documents, recovers their
title and H1-H3 heading outline, and ranks sections against a persona and a
job to be done using an OpenAI-compatible embedding endpoint.

Configuration comes from DOCOUTLINE_CONFIG and the environment, as for the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		level := cfg.SlogLevel()
		if flagVerbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func parseOptions() parser.Options {
	return parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext}
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
