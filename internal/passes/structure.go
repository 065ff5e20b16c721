package passes

import (
	"github.com/thesistools/thesisfmt/internal/structure"
)

// PassStructure is the structure-detection pass name.
const PassStructure = "structure"

// StructurePass computes the region map every later pass consumes.
type StructurePass struct{}

var _ Pass = (*StructurePass)(nil)

func (p *StructurePass) Name() string           { return PassStructure }
func (p *StructurePass) Dependencies() []string { return nil }

func (p *StructurePass) Run(pc *Context) error {
	det := structure.NewDetector(structure.Options{
		TieBreak: structure.TieBreak(pc.Config.Format.TieBreak),
	})
	regions, warnings := det.Detect(pc.Doc)
	pc.Regions = regions
	pc.Report.Warnings = append(pc.Report.Warnings, warnings...)

	pc.Logger.Debug("structure detected",
		"regions", len(regions.Regions),
		"chapters", regions.MaxChapter(),
		"warnings", len(warnings))
	return nil
}
