package model

import "strings"

// Alignment is a paragraph justification value.
type Alignment string

const (
	AlignInherit Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// TabKind is a tab stop alignment.
type TabKind string

const (
	TabLeft   TabKind = "left"
	TabCenter TabKind = "center"
	TabRight  TabKind = "right"
)

// TabStop is one custom tab stop. Position is in twentieths of a point.
type TabStop struct {
	Kind TabKind
	Pos  int
}

// Paragraph is an ordered sequence of runs plus paragraph-level
// formatting. Spacing values are in points; zero means inherit.
type Paragraph struct {
	Runs  []*Run
	Style string

	Alignment   Alignment
	LineSpacing float64
	SpaceBefore float64
	SpaceAfter  float64
	// FirstLineIndentChars is the first-line indent in character units.
	FirstLineIndentChars int
	TabStops             []TabStop
	PageBreakBefore      bool

	// HeadingLevel is set by structure detection: 0 means not a
	// heading, 1..3 are outline levels.
	HeadingLevel int
}

func (*Paragraph) isBlock() {}

// Run is a maximal span of text sharing one formatting triple, or a
// non-text anchor (page break, footnote reference, inline math).
type Run struct {
	Text string

	FontEastAsia string
	FontLatin    string
	// SizePt is the font size in points; 0 means inherit.
	SizePt    float64
	Bold      bool
	Italic    bool
	Underline bool

	// PageBreak marks a run that is a hard page break.
	PageBreak bool
	// FootnoteID references a footnote body when > 0.
	FootnoteID int
	// MathXML carries a serialized math element verbatim through
	// load and save; it is never edited, only re-aligned.
	MathXML string
}

// Text returns the concatenated run text of the paragraph.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// TrimmedText returns the paragraph text with surrounding whitespace
// removed.
func (p *Paragraph) TrimmedText() string {
	return strings.TrimSpace(p.Text())
}

// IsEmpty reports whether the paragraph contains no visible text,
// breaks, footnote references, or math.
func (p *Paragraph) IsEmpty() bool {
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) != "" || r.PageBreak || r.FootnoteID > 0 || r.MathXML != "" {
			return false
		}
	}
	return true
}

// HasMath reports whether any run carries math content.
func (p *Paragraph) HasMath() bool {
	for _, r := range p.Runs {
		if r.MathXML != "" {
			return true
		}
	}
	return false
}

// HasPageBreak reports whether any run is a hard page break.
func (p *Paragraph) HasPageBreak() bool {
	for _, r := range p.Runs {
		if r.PageBreak {
			return true
		}
	}
	return false
}

// SetText replaces the paragraph content with a single run carrying the
// formatting of the paragraph's first run, preserving non-text anchors.
func (p *Paragraph) SetText(text string) {
	var keep []*Run
	var proto *Run
	for _, r := range p.Runs {
		if r.PageBreak || r.FootnoteID > 0 || r.MathXML != "" {
			keep = append(keep, r)
			continue
		}
		if proto == nil {
			proto = r
		}
	}
	nr := &Run{Text: text}
	if proto != nil {
		nr.FontEastAsia = proto.FontEastAsia
		nr.FontLatin = proto.FontLatin
		nr.SizePt = proto.SizePt
		nr.Bold = proto.Bold
		nr.Italic = proto.Italic
		nr.Underline = proto.Underline
	}
	p.Runs = append([]*Run{nr}, keep...)
}

// NewParagraph builds a paragraph with a single run.
func NewParagraph(text string) *Paragraph {
	return &Paragraph{Runs: []*Run{{Text: text}}}
}

// Table is a grid of cells; each cell owns its paragraphs.
type Table struct {
	Rows []*TableRow
}

func (*Table) isBlock() {}

// TableRow is one table row.
type TableRow struct {
	Cells []*TableCell
}

// TableCell holds the cell content.
type TableCell struct {
	Paragraphs []*Paragraph
}

// Paragraphs returns every paragraph in the table in reading order.
func (t *Table) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			out = append(out, cell.Paragraphs...)
		}
	}
	return out
}
