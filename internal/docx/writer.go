package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/thesistools/thesisfmt/internal/model"
)

const (
	mathNS = "http://schemas.openxmlformats.org/officeDocument/2006/math"
)

// Save serializes the document model to .docx bytes.
func Save(doc *model.Document) ([]byte, error) {
	parts := buildParts(doc)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Deterministic order keeps repeated saves byte-identical.
	for _, name := range partOrder(parts) {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err := w.Write(parts[name]); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

func partOrder(parts map[string][]byte) []string {
	fixed := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/footnotes.xml",
	}
	var rest []string
	seen := map[string]bool{}
	for _, n := range fixed {
		seen[n] = true
	}
	for i := 1; ; i++ {
		h := fmt.Sprintf("word/header%d.xml", i)
		f := fmt.Sprintf("word/footer%d.xml", i)
		_, hasH := parts[h]
		_, hasF := parts[f]
		if !hasH && !hasF {
			break
		}
		if hasH {
			rest = append(rest, h)
			seen[h] = true
		}
		if hasF {
			rest = append(rest, f)
			seen[f] = true
		}
	}
	var out []string
	for _, n := range fixed {
		if _, ok := parts[n]; ok {
			out = append(out, n)
		}
	}
	return append(out, rest...)
}

// sectionRefs records the header/footer parts generated for a section.
type sectionRefs struct {
	headerRel string
	footerRel string
}

func buildParts(doc *model.Document) map[string][]byte {
	parts := make(map[string][]byte)

	rels := []string{
		relEntry("rId1", "styles", "styles.xml"),
		relEntry("rId2", "footnotes", "footnotes.xml"),
	}
	nextRel := 3
	headerCount, footerCount := 0, 0

	refs := make([]sectionRefs, len(doc.Sections))
	for i, s := range doc.Sections {
		if s.Page.HeaderText != "" {
			headerCount++
			name := fmt.Sprintf("header%d.xml", headerCount)
			rid := fmt.Sprintf("rId%d", nextRel)
			nextRel++
			rels = append(rels, relEntry(rid, "header", name))
			parts["word/"+name] = headerXML(s.Page.HeaderText)
			refs[i].headerRel = rid
		}
		if s.Page.NumberFormat != model.NumberNone {
			footerCount++
			name := fmt.Sprintf("footer%d.xml", footerCount)
			rid := fmt.Sprintf("rId%d", nextRel)
			nextRel++
			rels = append(rels, relEntry(rid, "footer", name))
			parts["word/"+name] = footerXML(s.Page.NumberFormat)
			refs[i].footerRel = rid
		}
	}

	parts["[Content_Types].xml"] = contentTypesXML(headerCount, footerCount)
	parts["_rels/.rels"] = rootRelsXML()
	parts["word/_rels/document.xml.rels"] = documentRelsXML(rels)
	parts["word/document.xml"] = documentXML(doc, refs)
	parts["word/styles.xml"] = stylesXML()
	parts["word/footnotes.xml"] = footnotesXML(doc)
	return parts
}

func documentXML(doc *model.Document, refs []sectionRefs) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)

	for i, s := range doc.Sections {
		last := i == len(doc.Sections)-1
		for _, blk := range s.Blocks {
			writeBlock(&b, blk)
		}
		sp := sectPrXML(s, refs[i], doc.FootnoteRestartEachPage)
		if last {
			b.WriteString(sp)
		} else {
			b.WriteString(`<w:p><w:pPr>` + sp + `</w:pPr></w:p>`)
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return []byte(b.String())
}

func writeBlock(b *strings.Builder, blk model.Block) {
	switch v := blk.(type) {
	case *model.Paragraph:
		writeParagraph(b, v)
	case *model.Table:
		writeTable(b, v)
	}
}

func writeParagraph(b *strings.Builder, p *model.Paragraph) {
	b.WriteString(`<w:p>`)
	writeParaProps(b, p)
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

func writeParaProps(b *strings.Builder, p *model.Paragraph) {
	var pr strings.Builder
	if p.Style != "" {
		fmt.Fprintf(&pr, `<w:pStyle w:val="%s"/>`, esc(p.Style))
	}
	if p.PageBreakBefore {
		pr.WriteString(`<w:pageBreakBefore/>`)
	}
	if len(p.TabStops) > 0 {
		pr.WriteString(`<w:tabs>`)
		for _, t := range p.TabStops {
			fmt.Fprintf(&pr, `<w:tab w:val="%s" w:pos="%d"/>`, t.Kind, t.Pos)
		}
		pr.WriteString(`</w:tabs>`)
	}
	if p.LineSpacing > 0 || p.SpaceBefore > 0 || p.SpaceAfter > 0 {
		pr.WriteString(`<w:spacing`)
		if p.SpaceBefore > 0 {
			fmt.Fprintf(&pr, ` w:before="%d"`, twips(p.SpaceBefore))
		}
		if p.SpaceAfter > 0 {
			fmt.Fprintf(&pr, ` w:after="%d"`, twips(p.SpaceAfter))
		}
		if p.LineSpacing > 0 {
			fmt.Fprintf(&pr, ` w:line="%d" w:lineRule="exact"`, twips(p.LineSpacing))
		}
		pr.WriteString(`/>`)
	}
	if p.FirstLineIndentChars > 0 {
		fmt.Fprintf(&pr, `<w:ind w:firstLineChars="%d"/>`, p.FirstLineIndentChars*100)
	}
	if p.Alignment != model.AlignInherit {
		fmt.Fprintf(&pr, `<w:jc w:val="%s"/>`, p.Alignment)
	}
	if pr.Len() > 0 {
		b.WriteString(`<w:pPr>` + pr.String() + `</w:pPr>`)
	}
}

func writeRun(b *strings.Builder, r *model.Run) {
	if r.MathXML != "" {
		// Re-emitted with a default namespace so the prefix-stripped
		// inner content stays in the math namespace.
		fmt.Fprintf(b, `<oMath xmlns=%q>%s</oMath>`, mathNS, r.MathXML)
		return
	}

	b.WriteString(`<w:r>`)
	writeRunProps(b, r)
	switch {
	case r.PageBreak:
		b.WriteString(`<w:br w:type="page"/>`)
	case r.FootnoteID > 0:
		fmt.Fprintf(b, `<w:footnoteReference w:id="%d"/>`, r.FootnoteID)
	default:
		writeRunText(b, r.Text)
	}
	b.WriteString(`</w:r>`)
}

func writeRunProps(b *strings.Builder, r *model.Run) {
	var rp strings.Builder
	if r.FontEastAsia != "" || r.FontLatin != "" {
		rp.WriteString(`<w:rFonts`)
		if r.FontLatin != "" {
			fmt.Fprintf(&rp, ` w:ascii="%s" w:hAnsi="%s"`, esc(r.FontLatin), esc(r.FontLatin))
		}
		if r.FontEastAsia != "" {
			fmt.Fprintf(&rp, ` w:eastAsia="%s"`, esc(r.FontEastAsia))
		}
		rp.WriteString(`/>`)
	}
	if r.Bold {
		rp.WriteString(`<w:b/>`)
	}
	if r.Italic {
		rp.WriteString(`<w:i/>`)
	}
	if r.Underline {
		rp.WriteString(`<w:u w:val="single"/>`)
	}
	if r.SizePt > 0 {
		hp := halfPoints(r.SizePt)
		fmt.Fprintf(&rp, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, hp, hp)
	}
	if rp.Len() > 0 {
		b.WriteString(`<w:rPr>` + rp.String() + `</w:rPr>`)
	}
}

func writeRunText(b *strings.Builder, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				b.WriteString(`<w:tab/>`)
			}
			if seg != "" {
				fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, esc(seg))
			}
		}
	}
}

func writeTable(b *strings.Builder, t *model.Table) {
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		for _, cell := range row.Cells {
			b.WriteString(`<w:tc>`)
			if len(cell.Paragraphs) == 0 {
				b.WriteString(`<w:p/>`)
			}
			for _, p := range cell.Paragraphs {
				writeParagraph(b, p)
			}
			b.WriteString(`</w:tc>`)
		}
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
}

func sectPrXML(s *model.Section, ref sectionRefs, footnoteRestart bool) string {
	var b strings.Builder
	b.WriteString(`<w:sectPr>`)
	if footnoteRestart {
		b.WriteString(`<w:footnotePr><w:numRestart w:val="eachPage"/></w:footnotePr>`)
	}
	if ref.headerRel != "" {
		fmt.Fprintf(&b, `<w:headerReference w:type="default" r:id="%s"/>`, ref.headerRel)
	}
	if ref.footerRel != "" {
		fmt.Fprintf(&b, `<w:footerReference w:type="default" r:id="%s"/>`, ref.footerRel)
	}
	b.WriteString(`<w:pgSz w:w="11906" w:h="16838"/>`)
	b.WriteString(`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="851" w:footer="992" w:gutter="0"/>`)
	if s.Page.NumberFormat != model.NumberNone {
		fmt.Fprintf(&b, `<w:pgNumType w:fmt="%s"`, s.Page.NumberFormat)
		if s.Page.NumberStart > 0 {
			fmt.Fprintf(&b, ` w:start="%d"`, s.Page.NumberStart)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</w:sectPr>`)
	return b.String()
}

func footerXML(format model.NumberFormat) []byte {
	instr := ` PAGE `
	switch format {
	case model.NumberLowerRoman:
		instr = ` PAGE \* roman `
	case model.NumberUpperRoman:
		instr = ` PAGE \* ROMAN `
	case model.NumberDecimal:
		instr = ` PAGE \* arabic `
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
	fmt.Fprintf(&b, `<w:fldSimple w:instr="%s"><w:r><w:t>1</w:t></w:r></w:fldSimple>`, esc(instr))
	b.WriteString(`</w:p></w:ftr>`)
	return []byte(b.String())
}

func headerXML(text string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(`<w:p><w:pPr>`)
	b.WriteString(`<w:pBdr><w:bottom w:val="single" w:sz="4" w:space="1" w:color="auto"/></w:pBdr>`)
	b.WriteString(`<w:jc w:val="center"/></w:pPr>`)
	fmt.Fprintf(&b, `<w:r><w:rPr><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman" w:eastAsia="宋体"/><w:sz w:val="21"/><w:szCs w:val="21"/></w:rPr><w:t>%s</w:t></w:r>`, esc(text))
	b.WriteString(`</w:p></w:hdr>`)
	return []byte(b.String())
}

func footnotesXML(doc *model.Document) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:footnotes xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(`<w:footnote w:type="separator" w:id="0"><w:p><w:r><w:separator/></w:r></w:p></w:footnote>`)
	b.WriteString(`<w:footnote w:type="continuationSeparator" w:id="1"><w:p><w:r><w:continuationSeparator/></w:r></w:p></w:footnote>`)
	for _, fn := range doc.Footnotes {
		fmt.Fprintf(&b, `<w:footnote w:id="%d">`, fn.ID)
		for _, p := range fn.Paragraphs {
			writeParagraph(&b, p)
		}
		b.WriteString(`</w:footnote>`)
	}
	b.WriteString(`</w:footnotes>`)
	return []byte(b.String())
}

func stylesXML() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	b.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Times New Roman" w:hAnsi="Times New Roman" w:eastAsia="宋体"/><w:sz w:val="24"/></w:rPr></w:rPrDefault></w:docDefaults>`)
	for lvl := 1; lvl <= 3; lvl++ {
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/><w:pPr><w:outlineLvl w:val="%d"/></w:pPr></w:style>`, lvl, lvl, lvl-1)
	}
	b.WriteString(`<w:style w:type="paragraph" w:styleId="FootnoteText"><w:name w:val="footnote text"/></w:style>`)
	b.WriteString(`</w:styles>`)
	return []byte(b.String())
}

func contentTypesXML(headers, footers int) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`<Override PartName="/word/footnotes.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footnotes+xml"/>`)
	for i := 1; i <= headers; i++ {
		fmt.Fprintf(&b, `<Override PartName="/word/header%d.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`, i)
	}
	for i := 1; i <= footers; i++ {
		fmt.Fprintf(&b, `<Override PartName="/word/footer%d.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func rootRelsXML() []byte {
	return []byte(xml.Header +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`)
}

func documentRelsXML(entries []string) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, e := range entries {
		b.WriteString(e)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func relEntry(id, kind, target string) string {
	return fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/%s" Target="%s"/>`, id, kind, target)
}

func twips(points float64) int {
	return int(math.Round(points * 20))
}

func halfPoints(points float64) int {
	return int(math.Round(points * 2))
}

func esc(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
