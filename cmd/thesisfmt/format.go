package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/docx"
	"github.com/thesistools/thesisfmt/internal/pipeline"
)

var (
	formatMetaPath string
	formatOutPath  string
	formatVerbose  bool
)

var formatCmd = &cobra.Command{
	Use:   "format <file.docx>",
	Short: "Format a thesis document locally",
	Long: `Format a thesis docx without a running server.

The document is loaded, run through the formatting pipeline, and
written back out. The formatting report is printed in the configured
output format.

Examples:
  thesisfmt format thesis.docx
  thesisfmt format thesis.docx --metadata meta.json -w formatted.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		level := slog.LevelWarn
		if formatVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		meta := config.Metadata{}
		if formatMetaPath != "" {
			raw, err := os.ReadFile(formatMetaPath)
			if err != nil {
				return fmt.Errorf("failed to read metadata file: %w", err)
			}
			meta, err = config.ParseMetadata(raw)
			if err != nil {
				return fmt.Errorf("invalid metadata: %w", err)
			}
		}

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		doc, err := docx.Load(data)
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}

		runner := pipeline.NewRunner(nil)
		rep, err := runner.Run(cmd.Context(), doc, pipeline.Options{
			Config: cfgMgr.Get(),
			Meta:   meta,
			Logger: logger,
		})
		if err != nil {
			return err
		}

		out, err := docx.Save(doc)
		if err != nil {
			return fmt.Errorf("failed to serialize document: %w", err)
		}

		outPath := formatOutPath
		if outPath == "" {
			outPath = strings.TrimSuffix(inputPath, ".docx") + "_formatted.docx"
		}
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		if err := api.Output(rep); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Formatted document written to %s\n", outPath)
		return nil
	},
}

func init() {
	formatCmd.Flags().StringVar(&formatMetaPath, "metadata", "", "Path to a JSON file with document metadata")
	formatCmd.Flags().StringVarP(&formatOutPath, "write-to", "w", "", "Output file path (default: <input>_formatted.docx)")
	formatCmd.Flags().BoolVarP(&formatVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(formatCmd)
}
