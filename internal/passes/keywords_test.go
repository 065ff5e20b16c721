package passes

import "testing"

func TestKeywordsPassRewritesChineseLine(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"本文研究了图像识别。",
		"关键词：人工智能，机器学习；深度学习",
		"第一章 绪论",
		"正文。",
	)
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&KeywordsPass{}).Run(pc); err != nil {
		t.Fatalf("keywords pass failed: %v", err)
	}

	para := doc.ParagraphAt(2)
	if got, want := para.Text(), "[关键词] 人工智能；机器学习；深度学习"; got != want {
		t.Errorf("keyword line = %q, want %q", got, want)
	}
	if len(para.Runs) != 2 {
		t.Fatalf("run count = %d, want 2", len(para.Runs))
	}
	if !para.Runs[0].Bold {
		t.Error("label run should be bold")
	}
	if para.Runs[1].Bold {
		t.Error("content run should not be bold")
	}
}

func TestKeywordsPassRewritesEnglishLine(t *testing.T) {
	doc := buildDoc(
		"Abstract",
		"This thesis studies image recognition.",
		"Key words: artificial intelligence, machine learning",
		"第一章 绪论",
		"正文。",
	)
	pc := newContext(t, doc)
	detect(t, pc)

	if err := (&KeywordsPass{}).Run(pc); err != nil {
		t.Fatalf("keywords pass failed: %v", err)
	}

	para := doc.ParagraphAt(2)
	if got, want := para.Text(), "[Key words] artificial intelligence; machine learning"; got != want {
		t.Errorf("keyword line = %q, want %q", got, want)
	}
}

func TestKeywordsPassIdempotent(t *testing.T) {
	doc := buildDoc(
		"摘要",
		"正文。",
		"关键词：A；B；C",
		"第一章 绪论",
		"正文。",
	)
	pc := newContext(t, doc)
	detect(t, pc)
	if err := (&KeywordsPass{}).Run(pc); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := doc.ParagraphAt(2).Text()

	pc2 := newContext(t, doc)
	pc2.Regions = pc.Regions
	if err := (&KeywordsPass{}).Run(pc2); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := doc.ParagraphAt(2).Text(); got != first {
		t.Errorf("second run changed text: %q -> %q", first, got)
	}
	for _, c := range pc2.Report.Changes {
		if c.Type == "keywords" {
			t.Errorf("second run logged keyword change: %+v", c)
		}
	}
}
