package passes

import (
	"strconv"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassTOC is the table-of-contents pass name.
const PassTOC = "toc"

const tocTitle = "目录"

// tocPageTab is the right tab stop, in twentieths of a point, that TOC
// page numbers align to.
const tocPageTab = 8640

// TOCPass regenerates the table of contents from the detected headings.
// Page numbers are estimated from block positions, roman in the front
// matter and arabic in the body, matching the page-numbering zones.
type TOCPass struct{}

var _ Pass = (*TOCPass)(nil)

func (p *TOCPass) Name() string { return PassTOC }
func (p *TOCPass) Dependencies() []string {
	return []string{PassPageZones, PassFigTab}
}

type tocEntry struct {
	text  string
	level int
	page  string
}

func (p *TOCPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassTOC)
	if rm == nil {
		return nil
	}

	body := rm.BodyStart()
	if body < 0 {
		pc.Report.Warn(report.WarningStructural, PassTOC,
			"no chapter found; table of contents not generated")
		return nil
	}

	entries := p.collect(pc, rm, body)
	if len(entries) == 0 {
		pc.Report.Warn(report.WarningStructural, PassTOC,
			"no headings found; table of contents left empty")
		return nil
	}
	pc.Report.Warn(report.WarningApproximation, PassTOC,
		"table of contents page numbers estimated from block positions")

	if region, ok := rm.First(model.RegionTOC); ok {
		p.rebuild(pc, region, entries)
		return nil
	}
	p.insert(pc, body, entries)
	return nil
}

// collect walks the document and produces one entry per section title
// and chapter heading, in document order.
func (p *TOCPass) collect(pc *Context, rm *model.RegionMap, body int) []tocEntry {
	perPage := pc.Config.Format.Footnote.ParagraphsPerPage
	if perPage <= 0 {
		perPage = 30
	}
	pageOf := func(idx int) string {
		if idx < body {
			return model.Roman(idx/perPage + 1)
		}
		return strconv.Itoa((idx-body)/perPage + 1)
	}

	var entries []tocEntry
	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		region := rm.At(idx)
		switch region.Kind {
		case model.RegionAbstractCN, model.RegionAbstractEN,
			model.RegionReferences, model.RegionAcknowledgments:
			if idx == region.Start && para.TrimmedText() != "" {
				entries = append(entries, tocEntry{para.TrimmedText(), 1, pageOf(idx)})
			}
		case model.RegionChapter, model.RegionAppendix:
			if para.HeadingLevel >= 1 && para.HeadingLevel <= 3 {
				entries = append(entries, tocEntry{para.TrimmedText(), para.HeadingLevel, pageOf(idx)})
			}
		}
	}
	return entries
}

// rebuild replaces the entry paragraphs of an existing TOC region,
// keeping its title block. No mutation happens when the entries already
// match.
func (p *TOCPass) rebuild(pc *Context, region model.Region, entries []tocEntry) {
	existing := region.Len() - 1
	if existing == len(entries) {
		same := true
		for i, e := range entries {
			para := pc.Doc.ParagraphAt(region.Start + 1 + i)
			if para == nil || para.Text() != e.text+"\t"+e.page {
				same = false
				break
			}
		}
		if same {
			return
		}
	}

	blocks := p.render(pc, entries)
	if existing > 0 {
		pc.Doc.Remove(region.Start+1, existing)
	}
	pc.Doc.Insert(region.Start+1, blocks...)
	pc.Regions.Shift(region.Start+1, len(blocks)-existing)
	pc.Report.ChangeValue("toc", loc(region.Start),
		"regenerated table of contents",
		strconv.Itoa(existing)+" entries", strconv.Itoa(len(entries))+" entries")
}

// insert places a new TOC section, title included, at the end of the
// front matter.
func (p *TOCPass) insert(pc *Context, body int, entries []tocEntry) {
	title := model.NewParagraph(tocTitle)
	title.Alignment = model.AlignCenter
	title.HeadingLevel = 1
	applyFontPolicy(title, pc.Config.Font(config.RoleSectionTitle))
	applySpacingPolicy(title, pc.Config.Spacing(config.RoleSectionTitle))

	blocks := append([]model.Block{title}, p.render(pc, entries)...)

	if body == 0 {
		pc.Doc.Insert(0, blocks...)
	} else {
		// Append to the end of the front matter so the TOC stays in the
		// roman-numbered zone. The split is a no-op when the page-zone
		// pass already put a boundary there.
		pc.Doc.SplitSection(body)
		s, _ := pc.Doc.SectionOf(body - 1)
		if s == nil {
			return
		}
		s.Blocks = append(s.Blocks, blocks...)
	}
	pc.Regions.Shift(body, len(blocks))
	pc.Regions.Regions = append(pc.Regions.Regions,
		model.Region{Kind: model.RegionTOC, Start: body, End: body + len(blocks)})
	pc.Report.Change("toc", loc(body), "inserted table of contents")
}

// render builds the entry paragraphs: indented by level, page number
// pushed to a right tab stop.
func (p *TOCPass) render(pc *Context, entries []tocEntry) []model.Block {
	font := pc.Config.Font(config.RoleTOCEntry)
	spacing := pc.Config.Spacing(config.RoleTOCEntry)
	var blocks []model.Block
	for _, e := range entries {
		para := model.NewParagraph(e.text + "\t" + e.page)
		para.TabStops = []model.TabStop{{Kind: model.TabRight, Pos: tocPageTab}}
		para.FirstLineIndentChars = (e.level - 1) * 2
		applyFontPolicy(para, font)
		applySpacingPolicy(para, spacing)
		blocks = append(blocks, para)
	}
	return blocks
}
