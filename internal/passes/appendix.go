package passes

import (
	"regexp"

	"github.com/thesistools/thesisfmt/internal/model"
)

// PassAppendix is the appendix relabeling pass name.
const PassAppendix = "appendix"

var appendixTitle = regexp.MustCompile(`^附\s*录\s*([A-Za-z一二三四五六七八九十\d]*)\s*[:：]?\s*(.*)$`)

// AppendixPass relabels appendix titles sequentially as 附录A, 附录B
// and so on, keeping any descriptive suffix.
type AppendixPass struct{}

var _ Pass = (*AppendixPass)(nil)

func (p *AppendixPass) Name() string           { return PassAppendix }
func (p *AppendixPass) Dependencies() []string { return []string{PassStructure} }

func (p *AppendixPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassAppendix)
	if rm == nil {
		return nil
	}

	seq := 0
	for _, region := range rm.All(model.RegionAppendix) {
		para := pc.Doc.ParagraphAt(region.Start)
		if para == nil {
			continue
		}
		m := appendixTitle.FindStringSubmatch(para.TrimmedText())
		if m == nil {
			continue
		}
		seq++
		label := string(rune('A' + seq - 1))
		want := "附录" + label
		if m[2] != "" {
			want += "  " + m[2]
		}
		if old := para.TrimmedText(); old != want {
			para.SetText(want)
			pc.Report.ChangeValue("appendix", loc(region.Start),
				"relabeled appendix title", old, want)
		}
		if para.HeadingLevel == 0 {
			para.HeadingLevel = 1
		}
	}
	return nil
}
