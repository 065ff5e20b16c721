package passes

import (
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassPageZones is the page-numbering zone pass name.
const PassPageZones = "pagezones"

// PageZonesPass splits the document at the first chapter and assigns
// uppercase roman numbering to the front matter and arabic numbering,
// restarting at 1, to the body.
type PageZonesPass struct{}

var _ Pass = (*PageZonesPass)(nil)

func (p *PageZonesPass) Name() string           { return PassPageZones }
func (p *PageZonesPass) Dependencies() []string { return []string{PassCover} }

func (p *PageZonesPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassPageZones)
	if rm == nil {
		return nil
	}

	body := rm.BodyStart()
	if body < 0 {
		pc.Report.Warn(report.WarningStructural, PassPageZones,
			"no chapter found; page numbering zones not applied")
		return nil
	}

	if sec := pc.Doc.SplitSection(body); sec != nil {
		pc.Report.Change("section", loc(body), "inserted section break before first chapter")
	}

	flat := 0
	front := true
	for si, s := range pc.Doc.Sections {
		want := s.Page
		if flat < body {
			want.NumberFormat = model.NumberUpperRoman
			want.NumberStart = 0
			if si == 0 {
				want.NumberStart = 1
			}
		} else {
			want.NumberFormat = model.NumberDecimal
			want.NumberStart = 0
			if front {
				// First body section restarts at page 1.
				want.NumberStart = 1
				front = false
			}
		}
		if want != s.Page {
			pc.Report.ChangeValue("page_numbering", loc(flat),
				"set section page numbering",
				string(s.Page.NumberFormat), string(want.NumberFormat))
			s.Page = want
		}
		flat += len(s.Blocks)
	}
	return nil
}
