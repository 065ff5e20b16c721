package endpoints

import (
	"github.com/thesistools/thesisfmt/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Formatting endpoints
		&FormatUploadEndpoint{},

		// Task endpoints
		&ListTasksEndpoint{},
		&GetTaskEndpoint{},
		&CancelTaskEndpoint{},
		&DeleteTaskEndpoint{},
		&DownloadEndpoint{},
	}
}

// TaskCommands returns the endpoints grouped under the "tasks" CLI
// subcommand.
func TaskCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListTasksEndpoint{},
		&GetTaskEndpoint{},
		&CancelTaskEndpoint{},
		&DeleteTaskEndpoint{},
		&DownloadEndpoint{},
	}
}
