package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/docx"
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/passes"
	"github.com/thesistools/thesisfmt/internal/report"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{
		Config: config.DefaultConfig(),
		Meta:   config.Metadata{Title: "测试论文标题", StudentName: "李四", Date: "2026年6月"},
		Logger: testLogger(),
	}
}

func thesisDoc() *model.Document {
	doc := model.New()
	for _, t := range []string{
		"摘要",
		"本文研究了目标检测。",
		"关键词：目标检测，深度学习",
		"第一章 绪论",
		"图1 系统架构",
		"如图1所示。",
		"第二章 方法",
		"正文。",
		"参考文献",
		"[1] 某文献",
		"致谢",
		"感谢各位老师。",
	} {
		doc.Sections[0].Blocks = append(doc.Sections[0].Blocks, model.NewParagraph(t))
	}
	return doc
}

func TestRunProducesSuccessfulReport(t *testing.T) {
	doc := thesisDoc()
	runner := NewRunner(nil)

	rep, err := runner.Run(context.Background(), doc, testOptions())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !rep.Success {
		t.Fatalf("report not successful: %+v", rep.Errors)
	}
	if len(rep.Changes) == 0 {
		t.Error("expected change records")
	}
	if len(doc.Sections) < 2 {
		t.Errorf("expected a page-zone section split, got %d sections", len(doc.Sections))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	doc := thesisDoc()
	runner := NewRunner(nil)

	if _, err := runner.Run(context.Background(), doc, testOptions()); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	count := doc.BlockCount()

	rep, err := runner.Run(context.Background(), doc, testOptions())
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if !rep.Success {
		t.Fatalf("second run not successful: %+v", rep.Errors)
	}
	if doc.BlockCount() != count {
		t.Errorf("block count changed on second run: %d -> %d", count, doc.BlockCount())
	}
	if len(rep.Changes) != 0 {
		t.Errorf("second run logged %d changes: %+v", len(rep.Changes), rep.Changes)
	}
}

func TestRunOnSavedOutputLogsNoChanges(t *testing.T) {
	doc := thesisDoc()
	runner := NewRunner(nil)

	if _, err := runner.Run(context.Background(), doc, testOptions()); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	count := doc.BlockCount()

	data, err := docx.Save(doc)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	reloaded, err := docx.Load(data)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reloaded.BlockCount() != count {
		t.Fatalf("block count changed across save/load: %d -> %d", count, reloaded.BlockCount())
	}

	rep, err := runner.Run(context.Background(), reloaded, testOptions())
	if err != nil {
		t.Fatalf("run on reloaded document error: %v", err)
	}
	if !rep.Success {
		t.Fatalf("run on reloaded document not successful: %+v", rep.Errors)
	}
	if len(rep.Changes) != 0 {
		t.Errorf("run on reloaded document logged %d changes: %+v", len(rep.Changes), rep.Changes)
	}
}

func TestRunWithoutHeadingsSucceedsWithWarning(t *testing.T) {
	doc := model.New()
	doc.Sections[0].Blocks = append(doc.Sections[0].Blocks,
		model.NewParagraph("只有正文，没有任何标题。"),
		model.NewParagraph("第二段。"),
	)

	rep, err := NewRunner(nil).Run(context.Background(), doc, testOptions())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !rep.Success {
		t.Fatalf("report not successful: %+v", rep.Errors)
	}
	structural := 0
	for _, w := range rep.Warnings {
		if w.Kind == report.WarningStructural {
			structural++
		}
	}
	if structural == 0 {
		t.Error("expected at least one structural warning")
	}
}

func TestRunObservesCancellationAtPassBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := thesisDoc()
	rep, err := NewRunner(nil).Run(ctx, doc, testOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if rep.Success {
		t.Error("cancelled run must not report success")
	}
	// Nothing ran, so nothing mutated.
	if len(rep.Changes) != 0 {
		t.Errorf("cancelled run logged changes: %+v", rep.Changes)
	}
}

// depPass is an inert pass with configurable dependencies.
type depPass struct {
	name string
	deps []string
}

func (p depPass) Name() string                 { return p.name }
func (p depPass) Dependencies() []string       { return p.deps }
func (p depPass) Run(pc *passes.Context) error { return nil }

// failingPass always errors to exercise failure isolation.
type failingPass struct{}

func (failingPass) Name() string           { return "failing" }
func (failingPass) Dependencies() []string { return []string{passes.PassStructure} }
func (failingPass) Run(pc *passes.Context) error {
	return errors.New("boom")
}

// panickingPass always panics.
type panickingPass struct{}

func (panickingPass) Name() string           { return "panicking" }
func (panickingPass) Dependencies() []string { return []string{passes.PassStructure} }
func (panickingPass) Run(pc *passes.Context) error {
	panic("kaboom")
}

func TestRunIsolatesPassFailures(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&passes.StructurePass{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(failingPass{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(panickingPass{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&passes.KeywordsPass{}); err != nil {
		t.Fatal(err)
	}

	doc := thesisDoc()
	rep, err := NewRunner(reg).Run(context.Background(), doc, testOptions())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rep.Success {
		t.Error("run with failing passes must not report success")
	}
	if len(rep.Errors) != 2 {
		t.Fatalf("pass errors = %d, want 2: %+v", len(rep.Errors), rep.Errors)
	}
	// The keywords pass after the failures still ran.
	if got := doc.ParagraphAt(2).Text(); got != "[关键词] 目标检测；深度学习" {
		t.Errorf("keywords pass did not run after failures: %q", got)
	}
}

func TestRunHonorsPassToggles(t *testing.T) {
	opts := testOptions()
	opts.Config.Format.Passes = map[string]bool{"cover": false, "toc": false}

	doc := thesisDoc()
	rep, err := NewRunner(nil).Run(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !rep.Success {
		t.Fatalf("report not successful: %+v", rep.Errors)
	}
	for _, c := range rep.Changes {
		if c.Type == "cover" || c.Type == "toc" {
			t.Errorf("disabled pass produced change: %+v", c)
		}
	}
	if got := doc.ParagraphAt(0).TrimmedText(); got != "摘要" {
		t.Errorf("cover inserted despite toggle: first block %q", got)
	}
}

func TestRegistryOrderingAndCycles(t *testing.T) {
	t.Run("default order respects dependencies", func(t *testing.T) {
		ordered, err := Default().GetOrdered()
		if err != nil {
			t.Fatalf("GetOrdered() error: %v", err)
		}
		pos := map[string]int{}
		for i, p := range ordered {
			pos[p.Name()] = i
		}
		for _, p := range ordered {
			for _, dep := range p.Dependencies() {
				if pos[dep] > pos[p.Name()] {
					t.Errorf("pass %s runs before its dependency %s", p.Name(), dep)
				}
			}
		}
		if pos[passes.PassStructure] != 0 {
			t.Errorf("structure pass position = %d, want 0", pos[passes.PassStructure])
		}
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Register(&passes.StructurePass{}); err != nil {
			t.Fatal(err)
		}
		if err := reg.Register(&passes.StructurePass{}); !errors.Is(err, ErrPassAlreadyRegistered) {
			t.Errorf("error = %v, want ErrPassAlreadyRegistered", err)
		}
	})

	t.Run("missing dependency fails validation", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Register(failingPass{}); err != nil {
			t.Fatal(err)
		}
		if err := reg.Validate(); !errors.Is(err, ErrPassNotFound) {
			t.Errorf("error = %v, want ErrPassNotFound", err)
		}
	})

	t.Run("cycle fails validation", func(t *testing.T) {
		reg := NewRegistry()
		if err := reg.Register(depPass{name: "a", deps: []string{"b"}}); err != nil {
			t.Fatal(err)
		}
		if err := reg.Register(depPass{name: "b", deps: []string{"a"}}); err != nil {
			t.Fatal(err)
		}
		if err := reg.Validate(); !errors.Is(err, ErrDependencyCycle) {
			t.Errorf("error = %v, want ErrDependencyCycle", err)
		}
		if _, err := reg.GetOrdered(); !errors.Is(err, ErrDependencyCycle) {
			t.Errorf("GetOrdered error = %v, want ErrDependencyCycle", err)
		}
	})
}
