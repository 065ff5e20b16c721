package passes

import (
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassSpacing is the line-spacing normalization pass name.
const PassSpacing = "spacing"

// SpacingPass applies the per-role spacing rules to every classified
// paragraph.
type SpacingPass struct{}

var _ Pass = (*SpacingPass)(nil)

func (p *SpacingPass) Name() string           { return PassSpacing }
func (p *SpacingPass) Dependencies() []string { return []string{PassFonts} }

func (p *SpacingPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassSpacing)
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
		if applySpacingPolicy(para, pc.Config.Spacing(role)) {
			pc.Report.Change("spacing", loc(idx), "applied "+role+" spacing rule")
			changed++
		}
	}

	pc.Logger.Debug("spacing normalized", "paragraphs_changed", changed)
	return nil
}
