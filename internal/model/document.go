// Package model holds the in-memory document graph that every formatting
// pass reads and mutates: sections, blocks, paragraphs, runs, and the
// region map produced by structure detection.
package model

// NumberFormat is a page-number format for a section.
type NumberFormat string

const (
	NumberDecimal    NumberFormat = "decimal"
	NumberLowerRoman NumberFormat = "lowerRoman"
	NumberUpperRoman NumberFormat = "upperRoman"
	NumberNone       NumberFormat = ""
)

// PageSetup holds the per-section page configuration.
type PageSetup struct {
	// NumberFormat selects the footer page-number style.
	NumberFormat NumberFormat
	// NumberStart restarts numbering at the given value. 0 means
	// continue from the previous section.
	NumberStart int
	// HeaderText, when non-empty, is rendered as a centered page header
	// with a bottom border.
	HeaderText string
}

// Block is one body-level element: a Paragraph or a Table.
type Block interface {
	isBlock()
}

// Section owns page setup and an ordered run of blocks. Sections are
// contiguous and non-overlapping over the document's block sequence.
type Section struct {
	Page   PageSetup
	Blocks []Block
}

// Document is an ordered sequence of sections plus the footnote bodies
// referenced from its runs.
type Document struct {
	Sections  []*Section
	Footnotes []*Footnote
	// FootnoteRestartEachPage mirrors the document-level footnote
	// numbering property written on save.
	FootnoteRestartEachPage bool
}

// Footnote is one footnote body, referenced by ID from a Run.
type Footnote struct {
	ID         int
	Paragraphs []*Paragraph
}

// New returns a document with a single empty section.
func New() *Document {
	return &Document{Sections: []*Section{{}}}
}

// Blocks returns the flattened block sequence across all sections.
// The returned slice is a fresh copy; indexes into it are the canonical
// block positions used by the region map.
func (d *Document) Blocks() []Block {
	var out []Block
	for _, s := range d.Sections {
		out = append(out, s.Blocks...)
	}
	return out
}

// BlockCount returns the total number of blocks.
func (d *Document) BlockCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Blocks)
	}
	return n
}

// Locate maps a flat block index to its owning section and the offset
// within that section. Returns (nil, -1) if out of range.
func (d *Document) Locate(idx int) (*Section, int) {
	if idx < 0 {
		return nil, -1
	}
	for _, s := range d.Sections {
		if idx < len(s.Blocks) {
			return s, idx
		}
		idx -= len(s.Blocks)
	}
	return nil, -1
}

// ParagraphAt returns the paragraph at the flat block index, or nil if
// the index is out of range or holds a table.
func (d *Document) ParagraphAt(idx int) *Paragraph {
	s, off := d.Locate(idx)
	if s == nil {
		return nil
	}
	p, _ := s.Blocks[off].(*Paragraph)
	return p
}

// Insert places blocks before the flat index idx. Inserting at
// BlockCount appends to the last section.
func (d *Document) Insert(idx int, blocks ...Block) {
	if len(blocks) == 0 || len(d.Sections) == 0 {
		return
	}
	s, off := d.Locate(idx)
	if s == nil {
		s = d.Sections[len(d.Sections)-1]
		off = len(s.Blocks)
	}
	s.Blocks = append(s.Blocks[:off], append(append([]Block{}, blocks...), s.Blocks[off:]...)...)
}

// Remove deletes count blocks starting at the flat index idx. The range
// must fall within a single section.
func (d *Document) Remove(idx, count int) {
	s, off := d.Locate(idx)
	if s == nil || count <= 0 {
		return
	}
	end := off + count
	if end > len(s.Blocks) {
		end = len(s.Blocks)
	}
	s.Blocks = append(s.Blocks[:off], s.Blocks[end:]...)
}

// SplitSection inserts a section boundary so that the block at the flat
// index idx becomes the first block of a new section. The new section
// starts with a copy of the old section's page setup. Returns the new
// section, or nil if idx is already a section start or out of range.
func (d *Document) SplitSection(idx int) *Section {
	if idx <= 0 {
		return nil
	}
	flat := 0
	for si, s := range d.Sections {
		if idx == flat {
			return nil // already a boundary
		}
		if idx < flat+len(s.Blocks) {
			off := idx - flat
			next := &Section{Page: s.Page, Blocks: s.Blocks[off:]}
			s.Blocks = s.Blocks[:off]
			rest := append([]*Section{}, d.Sections[si+1:]...)
			d.Sections = append(append(d.Sections[:si+1], next), rest...)
			return next
		}
		flat += len(s.Blocks)
	}
	return nil
}

// SectionOf returns the section owning the flat block index and that
// section's position in the document.
func (d *Document) SectionOf(idx int) (*Section, int) {
	flat := 0
	for si, s := range d.Sections {
		if idx < flat+len(s.Blocks) {
			return s, si
		}
		flat += len(s.Blocks)
	}
	return nil, -1
}

// FootnoteByID returns the footnote body with the given ID.
func (d *Document) FootnoteByID(id int) *Footnote {
	for _, fn := range d.Footnotes {
		if fn.ID == id {
			return fn
		}
	}
	return nil
}
