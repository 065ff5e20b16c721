package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/report"
)

// Sentinel errors for the tasks package.
var (
	// ErrTaskNotFound is returned when a task ID is unknown.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotTerminal is returned when deleting a task that is still
	// queued or running.
	ErrTaskNotTerminal = errors.New("task has not finished")

	// ErrTaskFinished is returned when cancelling a task that already
	// reached a terminal status.
	ErrTaskFinished = errors.New("task already finished")
)

// Manager is the in-memory task store. It owns every status
// transition; the pool and endpoints go through it.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	tasks   map[string]*Task
	cancels map[string]context.CancelFunc
}

// NewManager creates an empty task manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:  logger.With("component", "tasks"),
		tasks:   make(map[string]*Task),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create registers a queued task for an uploaded document.
func (m *Manager) Create(filename, inputPath string, meta config.Metadata) *Task {
	t := newTask(filename, inputPath, meta)

	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()

	m.logger.Info("task created", "task_id", t.ID, "filename", filename)
	return t.clone()
}

// SetInputPath records where the uploaded document was saved. The path
// depends on the task ID, so it is filled in after Create.
func (m *Manager) SetInputPath(id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.InputPath = path
	return nil
}

// SetDisabledPasses records per-task pass toggles before submission.
func (m *Manager) SetDisabledPasses(id string, names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	t.DisabledPasses = names
	return nil
}

// Get returns a snapshot of the task.
func (m *Manager) Get(id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.clone(), nil
}

// List returns snapshots of every task, newest first.
func (m *Manager) List() []*Task {
	m.mu.RLock()
	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Counts returns how many tasks sit in each status.
func (m *Manager) Counts() map[Status]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int)
	for _, t := range m.tasks {
		counts[t.Status]++
	}
	return counts
}

// markRunning transitions a queued task to running and stores its
// cancel func. Returns false when the task was cancelled while queued.
func (m *Manager) markRunning(id string, cancel context.CancelFunc) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok || t.Status != StatusQueued {
		return false
	}
	now := time.Now().UTC()
	t.Status = StatusRunning
	t.StartedAt = &now
	m.cancels[id] = cancel
	return true
}

// setProgress records the pass the pipeline is about to run.
func (m *Manager) setProgress(id, pass string, done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tasks[id]; ok {
		t.CurrentPass = pass
		t.PassesDone = done
		t.PassesTotal = total
	}
}

// finish moves a running task to its terminal status.
func (m *Manager) finish(id string, status Status, rep *report.Report, errMsg, outputPath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	t.Status = status
	t.CompletedAt = &now
	t.CurrentPass = ""
	t.Report = rep
	t.Error = errMsg
	t.OutputPath = outputPath
	delete(m.cancels, id)
}

// Cancel stops a task. A queued task is cancelled immediately; a
// running one has its context cancelled and the pool finishes the
// transition at the next pass boundary.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return ErrTaskNotFound
	}
	if t.Status.Terminal() {
		m.mu.Unlock()
		return ErrTaskFinished
	}
	if t.Status == StatusQueued {
		now := time.Now().UTC()
		t.Status = StatusCancelled
		t.CompletedAt = &now
		m.mu.Unlock()
		m.logger.Info("task cancelled while queued", "task_id", id)
		return nil
	}
	cancel := m.cancels[id]
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.logger.Info("task cancellation requested", "task_id", id)
	return nil
}

// Delete removes a finished task and returns its snapshot so the
// caller can clean up files.
func (m *Manager) Delete(id string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	if !t.Status.Terminal() {
		return nil, ErrTaskNotTerminal
	}
	delete(m.tasks, id)
	return t.clone(), nil
}

// Expire removes terminal tasks that completed before the cutoff and
// returns their snapshots for file cleanup.
func (m *Manager) Expire(cutoff time.Time) []*Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*Task
	for id, t := range m.tasks {
		if t.Status.Terminal() && t.CompletedAt != nil && t.CompletedAt.Before(cutoff) {
			expired = append(expired, t.clone())
			delete(m.tasks, id)
		}
	}
	if len(expired) > 0 {
		m.logger.Info("expired tasks removed", "count", len(expired))
	}
	return expired
}
