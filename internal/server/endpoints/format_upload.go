package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thesistools/thesisfmt/internal/api"
	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/pipeline"
	"github.com/thesistools/thesisfmt/internal/svcctx"
	"github.com/thesistools/thesisfmt/internal/tasks"
)

// parseDisabledPasses splits a comma-separated list of pass names and
// rejects names the pipeline does not know.
func parseDisabledPasses(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	known := make(map[string]bool)
	for _, name := range pipeline.Default().Names() {
		known[name] = true
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !known[name] {
			return nil, fmt.Errorf("unknown pass %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

// UploadResponse is returned when a document is accepted for
// formatting.
type UploadResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// FormatUploadEndpoint handles POST /api/format/upload with a
// multipart docx upload plus optional JSON metadata and pass toggle
// fields.
type FormatUploadEndpoint struct{}

var _ api.Endpoint = (*FormatUploadEndpoint)(nil)

func (e *FormatUploadEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/format/upload", e.handler
}

func (e *FormatUploadEndpoint) RequiresInit() bool { return true }

func (e *FormatUploadEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 64 << 20 // 64MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".docx") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file %s is not a docx document", header.Filename))
		return
	}

	// Metadata is optional; without it the cover fields stay blank.
	var meta config.Metadata
	if raw := r.FormValue("metadata"); raw != "" {
		meta, err = config.ParseMetadata([]byte(raw))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid metadata: %v", err))
			return
		}
	}

	disabled, err := parseDisabledPasses(r.FormValue("disabled_passes"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	homeDir := svcctx.HomeFrom(r.Context())
	mgr := svcctx.TasksFrom(r.Context())
	pool := svcctx.PoolFrom(r.Context())
	if homeDir == nil || mgr == nil || pool == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	task := mgr.Create(header.Filename, "", meta)
	destPath := homeDir.UploadPath(task.ID, header.Filename)

	dst, err := os.Create(destPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create file: %v", err))
		return
	}
	_, err = io.Copy(dst, file)
	dst.Close()
	if err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	if err := mgr.SetInputPath(task.ID, destPath); err != nil {
		os.Remove(destPath)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record upload: %v", err))
		return
	}
	if len(disabled) > 0 {
		if err := mgr.SetDisabledPasses(task.ID, disabled); err != nil {
			os.Remove(destPath)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record pass toggles: %v", err))
			return
		}
	}

	if err := pool.Submit(task.ID); err != nil {
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, UploadResponse{
		TaskID: task.ID,
		Status: string(tasks.StatusQueued),
	})
}

func (e *FormatUploadEndpoint) Command(getServerURL func() string) *cobra.Command {
	var metaPath string
	var disable []string
	cmd := &cobra.Command{
		Use:   "upload <file.docx>",
		Short: "Upload a thesis document for formatting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{}
			if metaPath != "" {
				raw, err := os.ReadFile(metaPath)
				if err != nil {
					return fmt.Errorf("failed to read metadata file: %w", err)
				}
				var buf json.RawMessage
				if err := json.Unmarshal(raw, &buf); err != nil {
					return fmt.Errorf("metadata file is not valid JSON: %w", err)
				}
				fields["metadata"] = string(raw)
			}
			if len(disable) > 0 {
				fields["disabled_passes"] = strings.Join(disable, ",")
			}

			client := api.NewClient(getServerURL())
			var resp UploadResponse
			err := client.UploadFile(cmd.Context(), "/api/format/upload", "file", args[0], fields, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&metaPath, "metadata", "", "Path to a JSON file with document metadata")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Pass names to skip for this document")
	return cmd
}
