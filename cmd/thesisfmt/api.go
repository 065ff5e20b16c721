package main

import (
	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running thesisfmt server via HTTP.

These commands require a running server (thesisfmt serve).
Use --server to specify a custom server URL.

Examples:
  thesisfmt api health                # Check server health
  thesisfmt api upload thesis.docx    # Upload a document for formatting
  thesisfmt api tasks get <id>        # Poll a formatting task`,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Formatting task commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Upload at top level of api
	apiCmd.AddCommand((&endpoints.FormatUploadEndpoint{}).Command(getServerURL))

	// Tasks as subcommand group
	for _, ep := range endpoints.TaskCommands() {
		tasksCmd.AddCommand(ep.Command(getServerURL))
	}

	apiCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(apiCmd)
}
