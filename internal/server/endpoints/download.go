package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/internal/svcctx"
	"github.com/thesistools/thesisfmt/internal/tasks"
)

// DownloadEndpoint handles GET /api/tasks/{task_id}/download, serving
// the formatted document of a completed task.
type DownloadEndpoint struct{}

var _ api.Endpoint = (*DownloadEndpoint)(nil)

func (e *DownloadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/tasks/{task_id}/download", e.handler
}

func (e *DownloadEndpoint) RequiresInit() bool { return true }

func (e *DownloadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.TasksFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "task manager not initialized")
		return
	}

	task, err := mgr.Get(r.PathValue("task_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if task.Status != tasks.StatusCompleted || task.OutputPath == "" {
		writeError(w, http.StatusConflict, fmt.Sprintf("task is %s, no output available", task.Status))
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "formatted_"+task.Filename))
	http.ServeFile(w, r, task.OutputPath)
}

func (e *DownloadEndpoint) Command(getServerURL func() string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <task_id>",
		Short: "Download the formatted document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := out
			if dest == "" {
				dest = args[0] + ".docx"
			}
			client := api.NewClient(getServerURL())
			if err := client.Download(cmd.Context(), "/api/tasks/"+args[0]+"/download", dest); err != nil {
				return err
			}
			fmt.Printf("Saved to %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file path")
	return cmd
}
