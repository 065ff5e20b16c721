// Package docx loads OOXML word-processing archives into the document
// model and saves the mutated model back to a .docx byte stream.
package docx

import "encoding/xml"

// wordDocument mirrors word/document.xml after namespace stripping.
type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    wordBody `xml:"body"`
}

type wordBody struct {
	Content []bodyElement `xml:",any"`
	SectPr  *sectPr       `xml:"sectPr"`
}

// bodyElement captures one body child; only p and tbl are modeled.
type bodyElement struct {
	XMLName   xml.Name
	Paragraph *wordParagraph `xml:"-"`
	Table     *wordTable     `xml:"-"`
}

// UnmarshalXML dispatches on the element name so paragraphs and tables
// stay interleaved in document order.
func (e *bodyElement) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	e.XMLName = start.Name
	switch start.Name.Local {
	case "p":
		e.Paragraph = &wordParagraph{}
		return d.DecodeElement(e.Paragraph, &start)
	case "tbl":
		e.Table = &wordTable{}
		return d.DecodeElement(e.Table, &start)
	default:
		return d.Skip()
	}
}

type wordParagraph struct {
	Properties *paraProps `xml:"pPr"`
	Runs       []wordRun  `xml:"r"`
	Math       []rawXML   `xml:"oMath"`
	MathPara   []mathPara `xml:"oMathPara"`
}

type mathPara struct {
	Math []rawXML `xml:"oMath"`
}

// rawXML keeps an element's inner content verbatim.
type rawXML struct {
	Inner string `xml:",innerxml"`
}

type paraProps struct {
	Style         *valAttr    `xml:"pStyle"`
	Justification *valAttr    `xml:"jc"`
	Spacing       *spacing    `xml:"spacing"`
	Indent        *indent     `xml:"ind"`
	Tabs          *tabs       `xml:"tabs"`
	PageBreak     *boolProp   `xml:"pageBreakBefore"`
	OutlineLevel  *intValAttr `xml:"outlineLvl"`
	RunProps      *runProps   `xml:"rPr"`
	SectPr        *sectPr     `xml:"sectPr"`
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type intValAttr struct {
	Val int `xml:"val,attr"`
}

// spacing values are twentieths of a point.
type spacing struct {
	Before   string `xml:"before,attr"`
	After    string `xml:"after,attr"`
	Line     string `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"`
}

type indent struct {
	FirstLine      string `xml:"firstLine,attr"`
	FirstLineChars string `xml:"firstLineChars,attr"`
}

type tabs struct {
	Stops []tabStop `xml:"tab"`
}

type tabStop struct {
	Val string `xml:"val,attr"`
	Pos string `xml:"pos,attr"`
}

type wordRun struct {
	Properties *runProps  `xml:"rPr"`
	Children   []runChild `xml:",any"`
}

// runChild captures text, breaks, tabs, and footnote references in
// their original order within a run.
type runChild struct {
	XMLName xml.Name
	Text    string
	BrType  string
	NoteID  int
}

func (c *runChild) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.XMLName = start.Name
	switch start.Name.Local {
	case "t":
		var t struct {
			Value string `xml:",chardata"`
		}
		if err := d.DecodeElement(&t, &start); err != nil {
			return err
		}
		c.Text = t.Value
		return nil
	case "br":
		for _, a := range start.Attr {
			if a.Name.Local == "type" {
				c.BrType = a.Value
			}
		}
		return d.Skip()
	case "footnoteReference":
		for _, a := range start.Attr {
			if a.Name.Local == "id" {
				c.NoteID = atoiSafe(a.Value)
			}
		}
		return d.Skip()
	case "tab":
		c.Text = "\t"
		return d.Skip()
	default:
		return d.Skip()
	}
}

// boolProp represents an OOXML on/off property: present without val
// means on.
type boolProp struct {
	Val *string `xml:"val,attr"`
}

func (b *boolProp) isOn() bool {
	if b == nil {
		return false
	}
	if b.Val == nil {
		return true
	}
	switch *b.Val {
	case "0", "false", "off":
		return false
	}
	return true
}

type runProps struct {
	Bold      *boolProp `xml:"b"`
	Italic    *boolProp `xml:"i"`
	Underline *valAttr  `xml:"u"`
	Size      *valAttr  `xml:"sz"`
	Fonts     *runFonts `xml:"rFonts"`
}

type runFonts struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	EastAsia string `xml:"eastAsia,attr"`
}

type sectPr struct {
	FootnotePr *footnotePr `xml:"footnotePr"`
	HeaderRef  *relRef     `xml:"headerReference"`
	PgNumType  *pgNumType  `xml:"pgNumType"`
}

type relRef struct {
	ID string `xml:"id,attr"`
}

type footnotePr struct {
	NumRestart *valAttr `xml:"numRestart"`
}

type pgNumType struct {
	Fmt   string `xml:"fmt,attr"`
	Start string `xml:"start,attr"`
}

type wordTable struct {
	Rows []wordTableRow `xml:"tr"`
}

type wordTableRow struct {
	Cells []wordTableCell `xml:"tc"`
}

type wordTableCell struct {
	Paragraphs []wordParagraph `xml:"p"`
}

// wordHeader mirrors a word/headerN.xml part.
type wordHeader struct {
	XMLName    xml.Name        `xml:"hdr"`
	Paragraphs []wordParagraph `xml:"p"`
}

// relationships mirrors a .rels part.
type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

// wordFootnotes mirrors word/footnotes.xml.
type wordFootnotes struct {
	XMLName   xml.Name       `xml:"footnotes"`
	Footnotes []wordFootnote `xml:"footnote"`
}

type wordFootnote struct {
	Type       string          `xml:"type,attr"`
	ID         int             `xml:"id,attr"`
	Paragraphs []wordParagraph `xml:"p"`
}
