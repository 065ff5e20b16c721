package passes

import (
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassFonts is the font normalization pass name.
const PassFonts = "fonts"

// FontsPass applies the per-role font rules to every classified
// paragraph. Unclassified blocks are left untouched.
type FontsPass struct{}

var _ Pass = (*FontsPass)(nil)

func (p *FontsPass) Name() string           { return PassFonts }
func (p *FontsPass) Dependencies() []string { return []string{PassStructure} }

func (p *FontsPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassFonts)
	if rm == nil {
		return nil
	}

	changed := 0
	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		region := rm.At(idx)
		role := roleForBlock(region.Kind, region.Start, idx, para)
		if role == "" {
			continue
		}
		if applyFontPolicy(para, pc.Config.Font(role)) {
			pc.Report.Change("font", loc(idx), "applied "+role+" font rule")
			changed++
		}
	}

	pc.Logger.Debug("fonts normalized", "paragraphs_changed", changed)
	return nil
}
