package passes

import (
	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassFootnotes is the footnote normalization pass name.
const PassFootnotes = "footnotes"

// FootnotesPass restyles footnote bodies and switches the document to
// per-page footnote numbering. Page positions are estimated from block
// order, so the grouping is reported as an approximation.
type FootnotesPass struct{}

var _ Pass = (*FootnotesPass)(nil)

func (p *FootnotesPass) Name() string           { return PassFootnotes }
func (p *FootnotesPass) Dependencies() []string { return []string{PassStructure} }

func (p *FootnotesPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassFootnotes)
	if rm == nil {
		return nil
	}

	refs := p.collectRefs(pc)
	if len(refs) == 0 && len(pc.Doc.Footnotes) == 0 {
		return nil
	}

	if !pc.Doc.FootnoteRestartEachPage {
		pc.Doc.FootnoteRestartEachPage = true
		pc.Report.Change("footnote_numbering", "document",
			"enabled per-page footnote numbering")
	}

	font := pc.Config.Font(config.RoleFootnote)
	spacing := pc.Config.Spacing(config.RoleFootnote)
	restyled := 0
	for _, fn := range pc.Doc.Footnotes {
		for _, para := range fn.Paragraphs {
			changed := applyFontPolicy(para, font)
			if applySpacingPolicy(para, spacing) {
				changed = true
			}
			if changed {
				restyled++
			}
		}
	}
	if restyled > 0 {
		pc.Report.Change("footnote_style", "footnotes",
			"restyled footnote bodies")
	}

	if len(refs) > 0 {
		perPage := pc.Config.Format.Footnote.ParagraphsPerPage
		if perPage <= 0 {
			perPage = 30
		}
		pages := map[int]int{}
		for _, r := range refs {
			pages[r/perPage+1]++
		}
		pc.Report.Warn(report.WarningApproximation, PassFootnotes,
			"footnote pages estimated from block position (%d notes over %d pages)",
			len(refs), len(pages))
	}

	pc.Logger.Debug("footnotes normalized",
		"references", len(refs), "bodies", len(pc.Doc.Footnotes))
	return nil
}

// collectRefs returns the flat block index of every footnote reference
// in document order.
func (p *FootnotesPass) collectRefs(pc *Context) []int {
	var refs []int
	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		for _, r := range para.Runs {
			if r.FootnoteID != 0 {
				refs = append(refs, idx)
			}
		}
	}
	return refs
}
