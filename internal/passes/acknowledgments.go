package passes

import (
	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassAcknowledgments is the acknowledgments normalization pass name.
const PassAcknowledgments = "acknowledgments"

// AcknowledgmentsPass restyles the acknowledgments section: the title
// as a section title, the body as indented running text. It owns its
// region fully, so the font and spacing passes skip it.
type AcknowledgmentsPass struct{}

var _ Pass = (*AcknowledgmentsPass)(nil)

func (p *AcknowledgmentsPass) Name() string           { return PassAcknowledgments }
func (p *AcknowledgmentsPass) Dependencies() []string { return []string{PassStructure} }

func (p *AcknowledgmentsPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassAcknowledgments)
	if rm == nil {
		return nil
	}

	titleFont := pc.Config.Font(config.RoleSectionTitle)
	titleSpacing := pc.Config.Spacing(config.RoleSectionTitle)
	bodyFont := pc.Config.Font(config.RoleAcknowledgmentsBody)
	bodySpacing := pc.Config.Spacing(config.RoleAcknowledgmentsBody)

	changed := 0
	for _, region := range rm.All(model.RegionAcknowledgments) {
		for idx := region.Start; idx < region.End; idx++ {
			para := pc.Doc.ParagraphAt(idx)
			if para == nil || para.IsEmpty() {
				continue
			}
			var did bool
			if idx == region.Start {
				did = applyFontPolicy(para, titleFont)
				if applySpacingPolicy(para, titleSpacing) {
					did = true
				}
			} else {
				did = applyFontPolicy(para, bodyFont)
				if applySpacingPolicy(para, bodySpacing) {
					did = true
				}
			}
			if did {
				pc.Report.Change("acknowledgments", loc(idx), "restyled acknowledgments paragraph")
				changed++
			}
		}
	}

	pc.Logger.Debug("acknowledgments normalized", "paragraphs_changed", changed)
	return nil
}
