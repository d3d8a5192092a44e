// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docrank/internal/embed"
	"github.com/pdiddy/docrank/internal/layout"
	"github.com/pdiddy/docrank/internal/output"
	"github.com/pdiddy/docrank/internal/pipeline"
	"github.com/pdiddy/docrank/internal/rank"
	"github.com/pdiddy/docrank/internal/secrets"
	"github.com/pdiddy/docrank/internal/structure"
	"github.com/pdiddy/docrank/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the sections of a PDF collection for a persona and task",
	Long: `Analyze reads an input JSON naming the documents, the persona, and the job
to be done. It extracts sections from every PDF, ranks them against the task,
and writes the ranked sections and their key sentences to the output file.

PDFs named by filename are looked up in pdf_dir (default PDFs/) next to the
input file. Documents that are missing or fail to parse are reported and
skipped. A well-formed output file is always written; if the full result
cannot be serialized, a metadata-only result is written and the command
exits non-zero.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	showTable, _ := cmd.Flags().GetBool("table")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, &cfg)
	secrets.ApplyEmbedding(&cfg.Embedding, loadedSecrets)

	in, err := pipeline.LoadInput(inputPath)
	if err != nil {
		return err
	}

	embedder, err := embed.Shared(cfg.Embedding)
	if err != nil {
		return err
	}
	if c, ok := embedder.(io.Closer); ok {
		defer c.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps := pipeline.Deps{
		Reader:    layout.PDFReader{},
		Extractor: structure.New(cfg.Structure),
		Embedder:  embedder,
	}
	log.Info().Str("input", inputPath).Str("embedder", embedder.Model()).Int("documents", len(in.Documents)).Msg("starting run")

	out := cmd.OutOrStdout()
	report, runErr := pipeline.Run(ctx, cfg, deps, in, filepath.Dir(inputPath), out)
	now := time.Now()
	if runErr != nil {
		if err := output.Write(outputPath, format, output.Minimal(output.NewMetadata(in, now))); err != nil {
			log.Error().Err(err).Msg("writing minimal result")
		}
		return runErr
	}

	if showTable {
		rank.FormatTable(report.Ranked, out)
	}

	s := report.Summary
	fmt.Fprintf(out, "\n%d documents: %d processed, %d skipped, %d failed\n", s.Total(), s.Processed, s.Skipped, s.Failed)

	if err := output.Write(outputPath, format, output.Build(in, report, now)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", outputPath)
	return nil
}

// applyAnalyzeFlags overrides config values with explicitly set flags.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *types.PipelineConfig) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("pdf-dir") {
		cfg.PDFDir, _ = flags.GetString("pdf-dir")
	}
	if flags.Changed("backend") {
		b, _ := flags.GetString("backend")
		cfg.Embedding.Backend = types.EmbeddingBackend(b)
	}
	if flags.Changed("model") {
		cfg.Embedding.Model, _ = flags.GetString("model")
	}
	if flags.Changed("cache") {
		cfg.Embedding.CachePath, _ = flags.GetString("cache")
	}
}

func init() {
	analyzeCmd.Flags().String("input", "challenge1b_input.json", "input JSON describing documents, persona and task")
	analyzeCmd.Flags().String("output", "challenge1b_output.json", "output file")
	analyzeCmd.Flags().String("format", "", "output format: json or yaml (default: from output extension)")
	analyzeCmd.Flags().Bool("table", false, "print the ranked sections as a table")
	analyzeCmd.Flags().Int("workers", 4, "documents extracted concurrently")
	analyzeCmd.Flags().String("pdf-dir", "PDFs", "directory of PDFs named by filename, relative to the input")
	analyzeCmd.Flags().String("backend", "hash", "embedding backend: hash, ollama or openai")
	analyzeCmd.Flags().String("model", "", "embedding model for remote backends")
	analyzeCmd.Flags().String("cache", "", "embedding cache database (disabled when empty)")

	rootCmd.AddCommand(analyzeCmd)
}
