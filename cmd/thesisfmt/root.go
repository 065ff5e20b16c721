package main

import (
	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "thesisfmt",
	Short: "Thesis document formatter for institutional submission standards",
	Long: `Thesisfmt rewrites a thesis docx in place so it conforms to the
institutional formatting standard.

The formatting pipeline includes:
  - Cover page and integrity statement generation
  - Region-scoped fonts, spacing, and page-number zones
  - Chapter-scoped figure, table, and equation numbering
  - Table of contents generation with estimated page numbers
  - Keyword, footnote, acknowledgments, and appendix normalization`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.thesisfmt/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "thesisfmt home directory (default: ~/.thesisfmt)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
