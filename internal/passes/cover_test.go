package passes

import (
	"strings"
	"testing"

	"github.com/thesistools/thesisfmt/internal/model"
)

func TestCoverPassInsertsTitleAndCommitment(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"正文。",
		"第一章 绪论",
		"正文。",
	)
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&CoverPass{}).Run(pc); err != nil {
		t.Fatalf("cover pass failed: %v", err)
	}

	first := doc.ParagraphAt(0)
	if got := first.TrimmedText(); got != pc.Config.Format.SchoolName {
		t.Errorf("first paragraph = %q, want school name", got)
	}

	var sawTitle, sawCommitment, sawSigner bool
	for _, blk := range doc.Blocks() {
		p, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		text := p.TrimmedText()
		if text == "基于深度学习的图像识别研究" {
			sawTitle = true
		}
		if text == commitmentTitle {
			sawCommitment = true
		}
		if strings.HasPrefix(text, "承诺人：") {
			sawSigner = true
		}
	}
	if !sawTitle {
		t.Error("title not found on cover")
	}
	if !sawCommitment {
		t.Error("commitment title not found")
	}
	if !sawSigner {
		t.Error("commitment signer line not found")
	}

	// The abstract region must have been shifted past the cover.
	if r, ok := pc.Regions.First(model.RegionAbstractCN); !ok || r.Start == 0 {
		t.Errorf("abstract region not shifted: %+v", r)
	}
}

func TestCoverPassIdempotent(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"正文。",
		"第一章 绪论",
		"正文。",
	)
	pc := newContext(t, doc)
	detect(t, pc)
	if err := (&CoverPass{}).Run(pc); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	count := doc.BlockCount()

	// Fresh detection over the mutated document, as a real second run
	// would do.
	pc2 := newContext(t, doc)
	detect(t, pc2)
	if err := (&CoverPass{}).Run(pc2); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if doc.BlockCount() != count {
		t.Errorf("block count changed: %d -> %d", count, doc.BlockCount())
	}
	for _, c := range pc2.Report.Changes {
		if c.Type == "cover" {
			t.Errorf("second run logged cover change: %+v", c)
		}
	}
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		lines int
	}{
		{"short stays single", "短标题", 1},
		{"long splits at connective", "基于卷积神经网络的大规模遥感图像分类与目标检测方法研究", 2},
		{"long without connective splits at midpoint", "一二三四五六七八九十一二三四五六七八九十一二三", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitTitle(tt.title)
			if len(got) != tt.lines {
				t.Fatalf("splitTitle(%q) = %d lines, want %d", tt.title, len(got), tt.lines)
			}
			if joined := strings.Join(got, ""); joined != tt.title {
				t.Errorf("split lost characters: %q", joined)
			}
		})
	}
}
