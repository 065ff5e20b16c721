package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thesistools/thesisfmt/internal/model"
)

// ErrNotWordDocument is returned when the input is not a parseable
// OOXML word-processing archive. It is the only load failure surfaced
// to callers; everything past load is a recoverable pass condition.
var ErrNotWordDocument = errors.New("not a word-processing document")

// Load parses .docx bytes into the document model.
func Load(data []byte) (*model.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWordDocument, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	if _, ok := files["word/document.xml"]; !ok {
		return nil, fmt.Errorf("%w: missing word/document.xml", ErrNotWordDocument)
	}

	var wd wordDocument
	if err := readXML(files, "word/document.xml", &wd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWordDocument, err)
	}

	doc := &model.Document{Sections: []*model.Section{{}}}

	// Relationship targets resolve header parts referenced from sectPr.
	relMap := map[string]string{}
	if _, ok := files["word/_rels/document.xml.rels"]; ok {
		var rels relationships
		if err := readXML(files, "word/_rels/document.xml.rels", &rels); err == nil {
			for _, r := range rels.Rels {
				relMap[r.ID] = r.Target
			}
		}
	}

	// Footnote bodies are optional.
	var wf wordFootnotes
	if _, ok := files["word/footnotes.xml"]; ok {
		if err := readXML(files, "word/footnotes.xml", &wf); err == nil {
			for _, fn := range wf.Footnotes {
				if fn.Type == "separator" || fn.Type == "continuationSeparator" {
					continue
				}
				note := &model.Footnote{ID: fn.ID}
				for i := range fn.Paragraphs {
					note.Paragraphs = append(note.Paragraphs, toParagraph(&fn.Paragraphs[i]))
				}
				doc.Footnotes = append(doc.Footnotes, note)
			}
		}
	}

	// Body content: a paragraph carrying pPr/sectPr closes the current
	// section; the body-level sectPr closes the final one. A run-less
	// paragraph whose only content is the section break is a boundary
	// marker, not a block, so load after save keeps the block count.
	cur := doc.Sections[0]
	for i := range wd.Body.Content {
		el := &wd.Body.Content[i]
		switch {
		case el.Paragraph != nil:
			var sp *sectPr
			if el.Paragraph.Properties != nil {
				sp = el.Paragraph.Properties.SectPr
			}
			p := toParagraph(el.Paragraph)
			if sp == nil || len(p.Runs) > 0 {
				cur.Blocks = append(cur.Blocks, p)
			}
			if sp != nil {
				applySectPr(doc, cur, sp)
				cur.Page.HeaderText = headerText(files, relMap, sp)
				cur = &model.Section{}
				doc.Sections = append(doc.Sections, cur)
			}
		case el.Table != nil:
			cur.Blocks = append(cur.Blocks, toTable(el.Table))
		}
	}
	if wd.Body.SectPr != nil {
		applySectPr(doc, cur, wd.Body.SectPr)
		cur.Page.HeaderText = headerText(files, relMap, wd.Body.SectPr)
	}

	return doc, nil
}

// headerText resolves a section's header reference and returns the
// first non-empty paragraph of the header part.
func headerText(files map[string]*zip.File, rels map[string]string, sp *sectPr) string {
	if sp.HeaderRef == nil {
		return ""
	}
	target, ok := rels[sp.HeaderRef.ID]
	if !ok {
		return ""
	}
	var hdr wordHeader
	if err := readXML(files, "word/"+target, &hdr); err != nil {
		return ""
	}
	for i := range hdr.Paragraphs {
		if t := toParagraph(&hdr.Paragraphs[i]).Text(); t != "" {
			return t
		}
	}
	return ""
}

func applySectPr(d *model.Document, s *model.Section, sp *sectPr) {
	if sp.FootnotePr != nil && sp.FootnotePr.NumRestart != nil && sp.FootnotePr.NumRestart.Val == "eachPage" {
		d.FootnoteRestartEachPage = true
	}
	if sp.PgNumType == nil {
		return
	}
	switch sp.PgNumType.Fmt {
	case "lowerRoman":
		s.Page.NumberFormat = model.NumberLowerRoman
	case "upperRoman":
		s.Page.NumberFormat = model.NumberUpperRoman
	case "decimal":
		s.Page.NumberFormat = model.NumberDecimal
	}
	if sp.PgNumType.Start != "" {
		s.Page.NumberStart = atoiSafe(sp.PgNumType.Start)
	}
}

func toParagraph(wp *wordParagraph) *model.Paragraph {
	p := &model.Paragraph{}

	if pr := wp.Properties; pr != nil {
		if pr.Style != nil {
			p.Style = pr.Style.Val
		}
		// Outline levels 0..2 mark heading paragraphs even when the
		// document carries no heading style id.
		if p.Style == "" && pr.OutlineLevel != nil && pr.OutlineLevel.Val >= 0 && pr.OutlineLevel.Val <= 2 {
			p.Style = fmt.Sprintf("Heading%d", pr.OutlineLevel.Val+1)
		}
		if pr.Justification != nil {
			p.Alignment = model.Alignment(pr.Justification.Val)
		}
		if pr.Spacing != nil {
			// Only exact line rules carry a point value we preserve.
			if pr.Spacing.LineRule == "exact" || pr.Spacing.LineRule == "atLeast" {
				p.LineSpacing = twipsToPoints(pr.Spacing.Line)
			}
			p.SpaceBefore = twipsToPoints(pr.Spacing.Before)
			p.SpaceAfter = twipsToPoints(pr.Spacing.After)
		}
		if pr.Indent != nil && pr.Indent.FirstLineChars != "" {
			// firstLineChars is in hundredths of a character.
			p.FirstLineIndentChars = atoiSafe(pr.Indent.FirstLineChars) / 100
		}
		if pr.Tabs != nil {
			for _, t := range pr.Tabs.Stops {
				p.TabStops = append(p.TabStops, model.TabStop{
					Kind: model.TabKind(t.Val),
					Pos:  atoiSafe(t.Pos),
				})
			}
		}
		p.PageBreakBefore = pr.PageBreak.isOn()
	}

	for i := range wp.Runs {
		p.Runs = append(p.Runs, toRuns(&wp.Runs[i])...)
	}
	for _, m := range wp.Math {
		p.Runs = append(p.Runs, &model.Run{MathXML: m.Inner})
	}
	for _, mp := range wp.MathPara {
		for _, m := range mp.Math {
			p.Runs = append(p.Runs, &model.Run{MathXML: m.Inner})
		}
	}

	return p
}

// toRuns expands one w:r into model runs: text merges into a single
// run; page breaks and footnote references become separate anchors.
func toRuns(wr *wordRun) []*model.Run {
	proto := model.Run{}
	if rp := wr.Properties; rp != nil {
		proto.Bold = rp.Bold.isOn()
		proto.Italic = rp.Italic.isOn()
		if rp.Underline != nil && rp.Underline.Val != "none" && rp.Underline.Val != "" {
			proto.Underline = true
		}
		if rp.Size != nil {
			// sz is in half-points.
			if hp, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil {
				proto.SizePt = hp / 2
			}
		}
		if rp.Fonts != nil {
			proto.FontEastAsia = rp.Fonts.EastAsia
			proto.FontLatin = rp.Fonts.ASCII
			if proto.FontLatin == "" {
				proto.FontLatin = rp.Fonts.HAnsi
			}
		}
	}

	var out []*model.Run
	var text strings.Builder
	flush := func() {
		if text.Len() == 0 {
			return
		}
		r := proto
		r.Text = text.String()
		out = append(out, &r)
		text.Reset()
	}

	for _, c := range wr.Children {
		switch c.XMLName.Local {
		case "t":
			text.WriteString(c.Text)
		case "tab":
			text.WriteString("\t")
		case "br":
			if c.BrType == "page" {
				flush()
				r := proto
				r.PageBreak = true
				out = append(out, &r)
			} else {
				text.WriteString("\n")
			}
		case "footnoteReference":
			flush()
			r := proto
			r.FootnoteID = c.NoteID
			out = append(out, &r)
		}
	}
	flush()
	return out
}

func toTable(wt *wordTable) *model.Table {
	t := &model.Table{}
	for i := range wt.Rows {
		row := &model.TableRow{}
		for j := range wt.Rows[i].Cells {
			cell := &model.TableCell{}
			for k := range wt.Rows[i].Cells[j].Paragraphs {
				cell.Paragraphs = append(cell.Paragraphs, toParagraph(&wt.Rows[i].Cells[j].Paragraphs[k]))
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// readXML decodes one archive entry after stripping namespace prefixes,
// so struct tags match bare local names.
func readXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := unmarshalStripped(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// unmarshalStripped re-encodes the token stream without namespace
// prefixes and unmarshals the result. Byte-backed tokens must be copied
// because the decoder reuses its internal buffer.
func unmarshalStripped(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			t.Name.Local = stripPrefix(t.Name.Local)
			t.Name.Space = ""
			attrs := make([]xml.Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				a.Name.Local = stripPrefix(a.Name.Local)
				a.Name.Space = ""
				attrs = append(attrs, a)
			}
			t.Attr = attrs
			tok = t
		case xml.EndElement:
			t.Name.Local = stripPrefix(t.Name.Local)
			t.Name.Space = ""
			tok = t
		case xml.CharData:
			tok = xml.CharData(append([]byte(nil), t...))
		case xml.Comment, xml.ProcInst, xml.Directive:
			continue
		}
		if err := enc.EncodeToken(tok); err != nil {
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	return xml.Unmarshal(buf.Bytes(), v)
}

func stripPrefix(name string) string {
	if i := strings.Index(name, ":"); i != -1 {
		return name[i+1:]
	}
	return name
}

func atoiSafe(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// twipsToPoints converts twentieths of a point to points.
func twipsToPoints(s string) float64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n / 20
}
