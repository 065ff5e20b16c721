package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/internal/svcctx"
	"github.com/thesistools/thesisfmt/internal/tasks"
)

// ListTasksEndpoint handles GET /api/tasks.
type ListTasksEndpoint struct{}

var _ api.Endpoint = (*ListTasksEndpoint)(nil)

func (e *ListTasksEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/tasks", e.handler
}

func (e *ListTasksEndpoint) RequiresInit() bool { return true }

func (e *ListTasksEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.TasksFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "task manager not initialized")
		return
	}
	writeJSON(w, http.StatusOK, mgr.List())
}

func (e *ListTasksEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all formatting tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp []tasks.Task
			if err := client.Get(cmd.Context(), "/api/tasks", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetTaskEndpoint handles GET /api/tasks/{task_id}.
type GetTaskEndpoint struct{}

var _ api.Endpoint = (*GetTaskEndpoint)(nil)

func (e *GetTaskEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/tasks/{task_id}", e.handler
}

func (e *GetTaskEndpoint) RequiresInit() bool { return true }

func (e *GetTaskEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, task)
}

func (e *GetTaskEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <task_id>",
		Short: "Get a formatting task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp tasks.Task
			if err := client.Get(cmd.Context(), "/api/tasks/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CancelTaskEndpoint handles POST /api/tasks/{task_id}/cancel.
type CancelTaskEndpoint struct{}

var _ api.Endpoint = (*CancelTaskEndpoint)(nil)

func (e *CancelTaskEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/tasks/{task_id}/cancel", e.handler
}

func (e *CancelTaskEndpoint) RequiresInit() bool { return true }

func (e *CancelTaskEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.TasksFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "task manager not initialized")
		return
	}
	id := r.PathValue("task_id")
	switch err := mgr.Cancel(id); {
	case errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tasks.ErrTaskFinished):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		task, _ := mgr.Get(id)
		writeJSON(w, http.StatusOK, task)
	}
}

func (e *CancelTaskEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task_id>",
		Short: "Cancel a queued or running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp tasks.Task
			if err := client.Post(cmd.Context(), "/api/tasks/"+args[0]+"/cancel", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteTaskEndpoint handles DELETE /api/tasks/{task_id}.
type DeleteTaskEndpoint struct{}

var _ api.Endpoint = (*DeleteTaskEndpoint)(nil)

func (e *DeleteTaskEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/tasks/{task_id}", e.handler
}

func (e *DeleteTaskEndpoint) RequiresInit() bool { return true }

func (e *DeleteTaskEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	mgr := svcctx.TasksFrom(r.Context())
	if mgr == nil {
		writeError(w, http.StatusServiceUnavailable, "task manager not initialized")
		return
	}
	task, err := mgr.Delete(r.PathValue("task_id"))
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, tasks.ErrTaskNotTerminal):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Best effort file cleanup.
	for _, p := range []string{task.InputPath, task.OutputPath} {
		if p != "" {
			os.Remove(p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"task_id": task.ID, "status": "deleted"})
}

func (e *DeleteTaskEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task_id>",
		Short: "Delete a finished task and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/tasks/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Task %s deleted\n", args[0])
			return nil
		},
	}
}
