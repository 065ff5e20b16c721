package passes

import (
	"testing"

	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

func TestReorderPassRestoresBindingOrder(t *testing.T) {
	doc := buildDoc(
		"第一章 绪论",
		"正文内容。",
		"摘要",
		"这是中文摘要。",
		"关键词：测试，重组",
		"参考文献",
		"[1] 某文献",
		"目录",
	)
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&ReorderPass{}).Run(pc); err != nil {
		t.Fatalf("reorder pass failed: %v", err)
	}

	want := []string{
		"摘要",
		"这是中文摘要。",
		"关键词：测试，重组",
		"目录",
		"第一章 绪论",
		"正文内容。",
		"参考文献",
		"[1] 某文献",
	}
	for i, w := range want {
		if got := doc.ParagraphAt(i).Text(); got != w {
			t.Errorf("block %d = %q, want %q", i, got, w)
		}
	}
	if len(pc.Report.Changes) == 0 {
		t.Error("expected reorder change records")
	}

	// The region map follows the moved blocks.
	if r := pc.Regions.At(0); r.Kind != model.RegionAbstractCN {
		t.Errorf("region at 0 = %s, want abstract_cn", r.Kind)
	}
	if r := pc.Regions.At(4); r.Kind != model.RegionChapter || r.Chapter != 1 {
		t.Errorf("region at 4 = %+v, want chapter 1", r)
	}
}

func TestReorderPassKeepsOrderedDocument(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"这是中文摘要。",
		"第一章 绪论",
		"正文内容。",
		"参考文献",
		"[1] 某文献",
		"致谢",
		"感谢各位老师。",
	)
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&ReorderPass{}).Run(pc); err != nil {
		t.Fatalf("reorder pass failed: %v", err)
	}
	if len(pc.Report.Changes) != 0 {
		t.Errorf("ordered document logged changes: %+v", pc.Report.Changes)
	}
	if got := doc.ParagraphAt(0).Text(); got != "摘要" {
		t.Errorf("first block = %q", got)
	}
}

func TestReorderPassIsIdempotent(t *testing.T) {
	doc := buildDoc(
		"参考文献",
		"[1] 某文献",
		"摘要",
		"这是中文摘要。",
		"第一章 绪论",
		"正文内容。",
	)
	pc := newContext(t, doc)
	detect(t, pc)
	if err := (&ReorderPass{}).Run(pc); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	pc2 := newContext(t, doc)
	detect(t, pc2)
	if err := (&ReorderPass{}).Run(pc2); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(pc2.Report.Changes) != 0 {
		t.Errorf("second run logged changes: %+v", pc2.Report.Changes)
	}
}

func TestReorderPassSkipsMultiSectionDocument(t *testing.T) {
	doc := buildDoc(
		"第一章 绪论",
		"正文内容。",
	)
	doc.Sections = append(doc.Sections, &model.Section{
		Blocks: []model.Block{
			model.NewParagraph("摘要"),
			model.NewParagraph("这是中文摘要。"),
		},
	})
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&ReorderPass{}).Run(pc); err != nil {
		t.Fatalf("reorder pass failed: %v", err)
	}
	if got := doc.ParagraphAt(0).Text(); got != "第一章 绪论" {
		t.Errorf("multi-section document was reordered: first block %q", got)
	}
	if warns := warningsOfKind(pc.Report, report.WarningStructural); len(warns) == 0 {
		t.Error("expected a structural warning for the skipped reorder")
	}
}
