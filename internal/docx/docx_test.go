package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/thesistools/thesisfmt/internal/model"
)

// buildArchive zips the given parts into an in-memory docx.
func buildArchive(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math">
<w:body>
<w:p>
 <w:pPr>
  <w:pStyle w:val="Heading1"/>
  <w:jc w:val="center"/>
  <w:spacing w:before="240" w:line="440" w:lineRule="exact"/>
  <w:ind w:firstLineChars="200"/>
  <w:tabs><w:tab w:val="right" w:pos="8640"/></w:tabs>
 </w:pPr>
 <w:r>
  <w:rPr><w:b/><w:sz w:val="28"/><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman" w:eastAsia="黑体"/></w:rPr>
  <w:t>绪论</w:t>
 </w:r>
</w:p>
<w:p>
 <w:r><w:t>正文开头</w:t></w:r>
 <w:r><w:footnoteReference w:id="2"/></w:r>
 <w:r><w:t xml:space="preserve">继续</w:t><w:tab/><w:t>3</w:t></w:r>
 <w:r><w:br w:type="page"/></w:r>
</w:p>
<w:p><m:oMath><m:r><m:t>E=mc2</m:t></m:r></m:oMath></w:p>
<w:p><w:pPr><w:sectPr><w:pgNumType w:fmt="upperRoman" w:start="1"/></w:sectPr></w:pPr></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>单元格</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:sectPr>
 <w:footnotePr><w:numRestart w:val="eachPage"/></w:footnotePr>
 <w:pgNumType w:fmt="decimal" w:start="1"/>
</w:sectPr>
</w:body>
</w:document>`

const testFootnotesXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:footnotes xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:footnote w:type="separator" w:id="0"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>
<w:footnote w:type="continuationSeparator" w:id="1"><w:p><w:r><w:continuationSeparator/></w:r></w:p></w:footnote>
<w:footnote w:id="2"><w:p><w:r><w:t>脚注内容</w:t></w:r></w:p></w:footnote>
</w:footnotes>`

func TestLoadRejectsNonDocuments(t *testing.T) {
	if _, err := Load([]byte("not an archive")); !errors.Is(err, ErrNotWordDocument) {
		t.Errorf("error = %v, want ErrNotWordDocument", err)
	}

	empty := buildArchive(t, map[string]string{"hello.txt": "hi"})
	if _, err := Load(empty); !errors.Is(err, ErrNotWordDocument) {
		t.Errorf("error = %v, want ErrNotWordDocument", err)
	}
}

func TestLoadParsesDocument(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"word/document.xml":  testDocumentXML,
		"word/footnotes.xml": testFootnotesXML,
	})
	doc, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Sections))
	}
	s0, s1 := doc.Sections[0], doc.Sections[1]
	if s0.Page.NumberFormat != model.NumberUpperRoman || s0.Page.NumberStart != 1 {
		t.Errorf("front section page = %+v", s0.Page)
	}
	if s1.Page.NumberFormat != model.NumberDecimal || s1.Page.NumberStart != 1 {
		t.Errorf("body section page = %+v", s1.Page)
	}
	if !doc.FootnoteRestartEachPage {
		t.Error("footnote restart flag not read")
	}

	// The run-less section-break paragraph is a boundary marker, not a
	// block.
	if len(s0.Blocks) != 3 {
		t.Fatalf("front section blocks = %d, want 3", len(s0.Blocks))
	}
	p0 := doc.ParagraphAt(0)
	if p0.Style != "Heading1" || p0.Alignment != model.AlignCenter {
		t.Errorf("heading paragraph = %+v", p0)
	}
	if p0.LineSpacing != 22 || p0.SpaceBefore != 12 {
		t.Errorf("spacing = line %v before %v", p0.LineSpacing, p0.SpaceBefore)
	}
	if p0.FirstLineIndentChars != 2 {
		t.Errorf("first line indent = %d chars", p0.FirstLineIndentChars)
	}
	if len(p0.TabStops) != 1 || p0.TabStops[0] != (model.TabStop{Kind: model.TabRight, Pos: 8640}) {
		t.Errorf("tab stops = %+v", p0.TabStops)
	}
	r0 := p0.Runs[0]
	if !r0.Bold || r0.SizePt != 14 || r0.FontEastAsia != "黑体" || r0.FontLatin != "Times New Roman" {
		t.Errorf("heading run = %+v", r0)
	}
	if r0.Text != "绪论" {
		t.Errorf("heading text = %q", r0.Text)
	}

	p1 := doc.ParagraphAt(1)
	if got := p1.Text(); got != "正文开头继续\t3" {
		t.Errorf("body text = %q", got)
	}
	var noteID int
	for _, r := range p1.Runs {
		if r.FootnoteID > 0 {
			noteID = r.FootnoteID
		}
	}
	if noteID != 2 {
		t.Errorf("footnote reference = %d, want 2", noteID)
	}
	if !p1.HasPageBreak() {
		t.Error("page break not read")
	}

	if p2 := doc.ParagraphAt(2); !p2.HasMath() {
		t.Error("math paragraph not read")
	} else if !strings.Contains(p2.Runs[0].MathXML, "E=mc2") {
		t.Errorf("math content = %q", p2.Runs[0].MathXML)
	}

	tbl, ok := s1.Blocks[0].(*model.Table)
	if !ok {
		t.Fatalf("body block 0 = %T, want table", s1.Blocks[0])
	}
	if got := tbl.Paragraphs()[0].Text(); got != "单元格" {
		t.Errorf("cell text = %q", got)
	}

	if len(doc.Footnotes) != 1 {
		t.Fatalf("footnotes = %d, want 1 (separators skipped)", len(doc.Footnotes))
	}
	fn := doc.FootnoteByID(2)
	if fn == nil || fn.Paragraphs[0].Text() != "脚注内容" {
		t.Errorf("footnote body = %+v", fn)
	}
}

func TestLoadStampsOutlineHeadings(t *testing.T) {
	const docXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>第一章 绪论</w:t></w:r></w:p>
<w:p><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:r><w:t>1.1 背景</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="2"/></w:pPr><w:r><w:t>显式样式优先</w:t></w:r></w:p>
<w:p><w:pPr><w:outlineLvl w:val="5"/></w:pPr><w:r><w:t>层级太深</w:t></w:r></w:p>
<w:sectPr/>
</w:body>
</w:document>`
	doc, err := Load(buildArchive(t, map[string]string{"word/document.xml": docXML}))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tests := []struct {
		idx  int
		want string
	}{
		{0, "Heading1"},
		{1, "Heading2"},
		{2, "Heading1"},
		{3, ""},
	}
	for _, tt := range tests {
		if got := doc.ParagraphAt(tt.idx).Style; got != tt.want {
			t.Errorf("block %d style = %q, want %q", tt.idx, got, tt.want)
		}
	}
}

func TestSaveLoadCyclesKeepBlockCount(t *testing.T) {
	doc := model.New()
	doc.Sections[0].Page = model.PageSetup{NumberFormat: model.NumberUpperRoman, NumberStart: 1}
	doc.Sections[0].Blocks = []model.Block{model.NewParagraph("目录")}
	doc.Sections = append(doc.Sections, &model.Section{
		Page:   model.PageSetup{NumberFormat: model.NumberDecimal, NumberStart: 1},
		Blocks: []model.Block{model.NewParagraph("第一章 绪论")},
	})

	for cycle := 0; cycle < 3; cycle++ {
		data, err := Save(doc)
		if err != nil {
			t.Fatalf("cycle %d: Save() error: %v", cycle, err)
		}
		doc, err = Load(data)
		if err != nil {
			t.Fatalf("cycle %d: Load() error: %v", cycle, err)
		}
		if len(doc.Sections) != 2 {
			t.Fatalf("cycle %d: sections = %d, want 2", cycle, len(doc.Sections))
		}
		if got := doc.BlockCount(); got != 2 {
			t.Fatalf("cycle %d: blocks = %d, want 2", cycle, got)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := model.New()
	doc.FootnoteRestartEachPage = true
	doc.Footnotes = []*model.Footnote{
		{ID: 2, Paragraphs: []*model.Paragraph{model.NewParagraph("来源说明")}},
	}

	title := model.NewParagraph("第一章 绪论")
	title.Style = "Heading1"
	title.Alignment = model.AlignCenter
	title.Runs[0].Bold = true
	title.Runs[0].SizePt = 18
	title.Runs[0].FontEastAsia = "黑体"
	title.Runs[0].FontLatin = "Times New Roman"

	entry := model.NewParagraph("参考文献\t45")
	entry.TabStops = []model.TabStop{{Kind: model.TabRight, Pos: 8640}}
	entry.LineSpacing = 20

	noted := model.NewParagraph("有脚注的一句")
	noted.Runs = append(noted.Runs, &model.Run{FootnoteID: 2})

	doc.Sections[0].Page = model.PageSetup{NumberFormat: model.NumberUpperRoman, NumberStart: 1}
	doc.Sections[0].Blocks = []model.Block{title, entry}
	doc.Sections = append(doc.Sections, &model.Section{
		Page:   model.PageSetup{NumberFormat: model.NumberDecimal, NumberStart: 1, HeaderText: "页眉文字"},
		Blocks: []model.Block{noted},
	})

	data, err := Save(doc)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	again, err := Save(doc)
	if err != nil {
		t.Fatalf("second Save() error: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("repeated saves are not byte-identical")
	}

	got, err := Load(data)
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}

	if len(got.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(got.Sections))
	}
	if got.Sections[0].Page.NumberFormat != model.NumberUpperRoman {
		t.Errorf("front page = %+v", got.Sections[0].Page)
	}
	if got.Sections[1].Page.NumberFormat != model.NumberDecimal || got.Sections[1].Page.NumberStart != 1 {
		t.Errorf("body page = %+v", got.Sections[1].Page)
	}
	if got.Sections[1].Page.HeaderText != "页眉文字" {
		t.Errorf("header text = %q, want 页眉文字", got.Sections[1].Page.HeaderText)
	}
	if !got.FootnoteRestartEachPage {
		t.Error("footnote restart flag lost")
	}

	if len(got.Sections[0].Blocks) != 2 {
		t.Fatalf("front blocks = %d, want 2", len(got.Sections[0].Blocks))
	}
	gt := got.ParagraphAt(0)
	if gt.Text() != "第一章 绪论" || gt.Style != "Heading1" || gt.Alignment != model.AlignCenter {
		t.Errorf("title paragraph = %+v", gt)
	}
	if r := gt.Runs[0]; !r.Bold || r.SizePt != 18 || r.FontEastAsia != "黑体" {
		t.Errorf("title run = %+v", r)
	}

	ge := got.ParagraphAt(1)
	if ge.Text() != "参考文献\t45" {
		t.Errorf("entry text = %q", ge.Text())
	}
	if ge.LineSpacing != 20 || len(ge.TabStops) != 1 || ge.TabStops[0].Pos != 8640 {
		t.Errorf("entry formatting = %+v", ge)
	}

	gn := got.Sections[1].Blocks[0].(*model.Paragraph)
	found := false
	for _, r := range gn.Runs {
		if r.FootnoteID == 2 {
			found = true
		}
	}
	if !found {
		t.Error("footnote reference lost")
	}
	fn := got.FootnoteByID(2)
	if fn == nil || fn.Paragraphs[0].Text() != "来源说明" {
		t.Errorf("footnote body = %+v", fn)
	}
}
