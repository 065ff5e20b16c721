package passes

import (
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassHeader is the page-header pass name.
const PassHeader = "header"

// HeaderPass stamps the configured running header on body-zone sections
// and clears it from the front matter.
type HeaderPass struct{}

var _ Pass = (*HeaderPass)(nil)

func (p *HeaderPass) Name() string           { return PassHeader }
func (p *HeaderPass) Dependencies() []string { return []string{PassPageZones} }

func (p *HeaderPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassHeader)
	if rm == nil {
		return nil
	}

	body := rm.BodyStart()
	if body < 0 {
		pc.Report.Warn(report.WarningStructural, PassHeader,
			"no chapter found; page header not applied")
		return nil
	}

	flat := 0
	for _, s := range pc.Doc.Sections {
		want := ""
		if flat >= body {
			want = pc.Config.Format.HeaderText
		}
		if s.Page.HeaderText != want {
			pc.Report.ChangeValue("header", loc(flat),
				"set section page header", s.Page.HeaderText, want)
			s.Page.HeaderText = want
		}
		flat += len(s.Blocks)
	}
	return nil
}
