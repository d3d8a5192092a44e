// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docrank/internal/layout"
	"github.com/pdiddy/docrank/internal/pipeline"
	"github.com/pdiddy/docrank/internal/structure"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections <pdf>",
	Short: "Print the sections extracted from one PDF",
	Long: `Sections runs the structure extractor on a single PDF and prints the
sections it keeps, with title, page, confidence and content. Use it to see
which fallback tier a document lands in.`,
	Args: cobra.ExactArgs(1),
	RunE: runSections,
}

func runSections(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	deps := pipeline.Deps{Reader: layout.PDFReader{}, Extractor: structure.New(cfg.Structure)}
	sections, err := pipeline.ExtractDocument(deps, pipeline.Document{Name: filepath.Base(args[0]), Path: args[0]})
	if err != nil {
		return fmt.Errorf("extracting %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sections)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(sections); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	sectionsCmd.Flags().Bool("json", false, "output sections as JSON")

	rootCmd.AddCommand(sectionsCmd)
}
