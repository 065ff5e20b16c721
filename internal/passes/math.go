package passes

import (
	"fmt"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassMath is the equation formatting pass name.
const PassMath = "math"

// mathNumberTab is the right tab stop position, in twentieths of a
// point, that the equation number aligns to.
const mathNumberTab = 8640

// MathPass centers display equations inside chapters and numbers them
// chapter.sequence, with the number pushed to the right margin by a tab
// stop. Existing trailing numbers are replaced.
type MathPass struct{}

var _ Pass = (*MathPass)(nil)

func (p *MathPass) Name() string           { return PassMath }
func (p *MathPass) Dependencies() []string { return []string{PassStructure} }

func (p *MathPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassMath)
	if rm == nil {
		return nil
	}

	counters := map[int]int{}
	numbered := 0
	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok || !para.HasMath() {
			continue
		}
		region := rm.At(idx)
		if region.Kind != model.RegionChapter || region.Chapter == 0 {
			continue
		}

		counters[region.Chapter]++
		label := fmt.Sprintf("(%d.%d)", region.Chapter, counters[region.Chapter])
		want := "\t" + label

		changed := false
		if para.Text() != want {
			// Drop any existing number text and hang the new one after
			// the math content.
			var keep []*model.Run
			for _, r := range para.Runs {
				if r.Text == "" {
					keep = append(keep, r)
				}
			}
			font := pc.Config.Font(config.RoleBody)
			keep = append(keep, &model.Run{
				Text:         want,
				FontEastAsia: font.EastAsia,
				FontLatin:    font.Latin,
				SizePt:       font.SizePt,
			})
			para.Runs = keep
			changed = true
		}
		if para.Alignment != model.AlignCenter {
			para.Alignment = model.AlignCenter
			changed = true
		}
		if len(para.TabStops) != 1 || para.TabStops[0] != (model.TabStop{Kind: model.TabRight, Pos: mathNumberTab}) {
			para.TabStops = []model.TabStop{{Kind: model.TabRight, Pos: mathNumberTab}}
			changed = true
		}
		if para.FirstLineIndentChars != 0 {
			para.FirstLineIndentChars = 0
			changed = true
		}
		if changed {
			pc.Report.ChangeValue("equation", loc(idx), "numbered and centered equation", "", label)
			numbered++
		}
	}

	pc.Logger.Debug("equations formatted", "numbered", numbered)
	return nil
}
