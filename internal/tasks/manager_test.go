package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thesistools/thesisfmt/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(testLogger())

	created := m.Create("thesis.docx", "", config.Metadata{Title: "标题"})
	if created.ID == "" {
		t.Fatal("task has no ID")
	}
	if created.Status != StatusQueued {
		t.Fatalf("status = %s, want %s", created.Status, StatusQueued)
	}

	if err := m.SetInputPath(created.ID, "/tmp/in.docx"); err != nil {
		t.Fatalf("SetInputPath() error: %v", err)
	}
	got, err := m.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.InputPath != "/tmp/in.docx" {
		t.Errorf("InputPath = %q", got.InputPath)
	}

	if !m.markRunning(created.ID, func() {}) {
		t.Fatal("markRunning() = false for a queued task")
	}
	m.setProgress(created.ID, "fonts", 2, 13)
	got, _ = m.Get(created.ID)
	if got.Status != StatusRunning || got.CurrentPass != "fonts" || got.PassesDone != 2 || got.PassesTotal != 13 {
		t.Errorf("progress snapshot = %+v", got)
	}

	m.finish(created.ID, StatusCompleted, nil, "", "/tmp/out.docx")
	got, _ = m.Get(created.ID)
	if got.Status != StatusCompleted || got.OutputPath != "/tmp/out.docx" || got.CompletedAt == nil {
		t.Errorf("finished snapshot = %+v", got)
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(testLogger())
	if _, err := m.Get("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("error = %v, want ErrTaskNotFound", err)
	}
}

func TestManagerListNewestFirst(t *testing.T) {
	m := NewManager(testLogger())
	first := m.Create("a.docx", "", config.Metadata{})
	time.Sleep(2 * time.Millisecond)
	second := m.Create("b.docx", "", config.Metadata{})

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order = %s, %s", list[0].Filename, list[1].Filename)
	}
}

func TestManagerCancel(t *testing.T) {
	t.Run("queued task cancels immediately", func(t *testing.T) {
		m := NewManager(testLogger())
		task := m.Create("a.docx", "", config.Metadata{})

		if err := m.Cancel(task.ID); err != nil {
			t.Fatalf("Cancel() error: %v", err)
		}
		got, _ := m.Get(task.ID)
		if got.Status != StatusCancelled {
			t.Errorf("status = %s, want %s", got.Status, StatusCancelled)
		}
	})

	t.Run("running task gets its context cancelled", func(t *testing.T) {
		m := NewManager(testLogger())
		task := m.Create("a.docx", "", config.Metadata{})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		m.markRunning(task.ID, cancel)

		if err := m.Cancel(task.ID); err != nil {
			t.Fatalf("Cancel() error: %v", err)
		}
		select {
		case <-ctx.Done():
		default:
			t.Error("task context not cancelled")
		}
		// The pool moves the task to cancelled once the handler returns.
		got, _ := m.Get(task.ID)
		if got.Status != StatusRunning {
			t.Errorf("status = %s, want %s until the handler unwinds", got.Status, StatusRunning)
		}
	})

	t.Run("finished task refuses cancellation", func(t *testing.T) {
		m := NewManager(testLogger())
		task := m.Create("a.docx", "", config.Metadata{})
		m.markRunning(task.ID, func() {})
		m.finish(task.ID, StatusCompleted, nil, "", "/tmp/out.docx")

		if err := m.Cancel(task.ID); !errors.Is(err, ErrTaskFinished) {
			t.Errorf("error = %v, want ErrTaskFinished", err)
		}
	})
}

func TestManagerDelete(t *testing.T) {
	m := NewManager(testLogger())
	task := m.Create("a.docx", "", config.Metadata{})

	if _, err := m.Delete(task.ID); !errors.Is(err, ErrTaskNotTerminal) {
		t.Fatalf("error = %v, want ErrTaskNotTerminal", err)
	}

	m.markRunning(task.ID, func() {})
	m.finish(task.ID, StatusFailed, nil, "boom", "")

	snap, err := m.Delete(task.ID)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if snap.ID != task.ID {
		t.Errorf("snapshot ID = %s, want %s", snap.ID, task.ID)
	}
	if _, err := m.Get(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("task still present after delete: %v", err)
	}
}

func TestManagerExpire(t *testing.T) {
	m := NewManager(testLogger())

	old := m.Create("old.docx", "", config.Metadata{})
	m.markRunning(old.ID, func() {})
	m.finish(old.ID, StatusCompleted, nil, "", "/tmp/old.docx")
	past := time.Now().UTC().Add(-48 * time.Hour)
	m.mu.Lock()
	m.tasks[old.ID].CompletedAt = &past
	m.mu.Unlock()

	fresh := m.Create("fresh.docx", "", config.Metadata{})
	m.markRunning(fresh.ID, func() {})
	m.finish(fresh.ID, StatusCompleted, nil, "", "/tmp/fresh.docx")

	running := m.Create("running.docx", "", config.Metadata{})
	m.markRunning(running.ID, func() {})

	expired := m.Expire(time.Now().UTC().Add(-24 * time.Hour))
	if len(expired) != 1 || expired[0].ID != old.ID {
		t.Fatalf("expired = %+v, want just the old task", expired)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("fresh task removed: %v", err)
	}
	if _, err := m.Get(running.ID); err != nil {
		t.Errorf("running task removed: %v", err)
	}
}
