package structure

import (
	"testing"

	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

func buildDoc(texts ...string) *model.Document {
	doc := model.New()
	for _, t := range texts {
		doc.Sections[0].Blocks = append(doc.Sections[0].Blocks, model.NewParagraph(t))
	}
	return doc
}

func TestDetectFullThesis(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"本文研究了……",
		"关键词：A；B",
		"Abstract",
		"This thesis studies...",
		"Key words: A; B",
		"目录",
		"第一章 绪论\t1",
		"第一章 绪论",
		"1.1 研究背景",
		"正文。",
		"第二章 相关工作",
		"正文。",
		"参考文献",
		"[1] 某文献",
		"致谢",
		"感谢。",
		"附录A 原始数据",
		"数据。",
	)

	rm, warnings := NewDetector(Options{}).Detect(doc)

	wantKinds := []model.RegionKind{
		model.RegionAbstractCN,
		model.RegionKeywordsCN,
		model.RegionAbstractEN,
		model.RegionKeywordsEN,
		model.RegionTOC,
		model.RegionChapter,
		model.RegionChapter,
		model.RegionReferences,
		model.RegionAcknowledgments,
		model.RegionAppendix,
	}
	if len(rm.Regions) != len(wantKinds) {
		t.Fatalf("region count = %d, want %d: %+v", len(rm.Regions), len(wantKinds), rm.Regions)
	}
	for i, want := range wantKinds {
		if rm.Regions[i].Kind != want {
			t.Errorf("region %d = %s, want %s", i, rm.Regions[i].Kind, want)
		}
	}

	if got := rm.MaxChapter(); got != 2 {
		t.Errorf("MaxChapter() = %d, want 2", got)
	}
	if got := rm.BodyStart(); got != 8 {
		t.Errorf("BodyStart() = %d, want 8", got)
	}
	// The TOC entry repeating the chapter title must stay inside the
	// TOC region.
	if r := rm.At(7); r.Kind != model.RegionTOC {
		t.Errorf("contents line classified as %s", r.Kind)
	}
	if got := doc.ParagraphAt(9).HeadingLevel; got != 2 {
		t.Errorf("sub-heading level = %d, want 2", got)
	}
	for _, w := range warnings {
		t.Errorf("unexpected warning: %+v", w)
	}
}

func TestDetectNoMarkers(t *testing.T) {
	doc := buildDoc("只是普通文字。", "再来一段。")

	rm, warnings := NewDetector(Options{}).Detect(doc)

	if len(rm.Regions) != 1 {
		t.Fatalf("region count = %d, want 1", len(rm.Regions))
	}
	r := rm.Regions[0]
	if r.Kind != model.RegionChapter || r.Start != 0 || r.End != 2 || r.Chapter != 1 {
		t.Errorf("fallback region = %+v", r)
	}
	found := false
	for _, w := range warnings {
		if w.Kind == report.WarningStructural {
			found = true
		}
	}
	if !found {
		t.Error("expected a structural warning for a document with no markers")
	}
}

func TestDetectChapterWithoutOrdinal(t *testing.T) {
	doc := buildDoc(
		"第一章 绪论",
		"正文。",
		"第X章 异常",
		"正文。",
	)
	// Style-based chapter heading with no parseable number.
	doc.Sections[0].Blocks[2].(*model.Paragraph).SetText("无编号章节标题")
	doc.Sections[0].Blocks[2].(*model.Paragraph).Style = "Heading1"

	rm, warnings := NewDetector(Options{}).Detect(doc)

	chapters := rm.All(model.RegionChapter)
	if len(chapters) != 2 {
		t.Fatalf("chapter count = %d, want 2", len(chapters))
	}
	if chapters[0].Chapter != 1 || chapters[1].Chapter != 2 {
		t.Errorf("chapter ordinals = %d, %d, want 1, 2", chapters[0].Chapter, chapters[1].Chapter)
	}
	if len(warnings) == 0 {
		t.Error("expected a warning for the unnumbered chapter heading")
	}
}

func TestTieBreakStrategies(t *testing.T) {
	// A marker matching both a default literal and a custom rule.
	extra := Rule{
		Name:     "custom-acknowledgments",
		Region:   model.RegionReferences,
		Literals: []string{"致谢"},
		Weight:   10,
	}
	doc := buildDoc("第一章 绪论", "正文。", "致谢", "感谢。")

	t.Run("most_specific prefers latest registered", func(t *testing.T) {
		rm, _ := NewDetector(Options{TieBreak: TieMostSpecific, ExtraRules: []Rule{extra}}).Detect(doc)
		if r := rm.At(2); r.Kind != model.RegionReferences {
			t.Errorf("region = %s, want references (custom rule)", r.Kind)
		}
	})

	t.Run("first_match keeps registration order", func(t *testing.T) {
		rm, _ := NewDetector(Options{TieBreak: TieFirstMatch, ExtraRules: []Rule{extra}}).Detect(doc)
		if r := rm.At(2); r.Kind != model.RegionAcknowledgments {
			t.Errorf("region = %s, want acknowledgments (default rule)", r.Kind)
		}
	})
}

func TestParseChineseNumberOrdinals(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"一", 1},
		{"十", 10},
		{"十二", 12},
		{"二十", 20},
		{"二十三", 23},
		{"3", 3},
	}
	for _, tt := range tests {
		if got := model.ParseChineseNumber(tt.in); got != tt.want {
			t.Errorf("ParseChineseNumber(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
