package passes

import (
	"strings"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassCover is the cover and commitment generation pass name.
const PassCover = "cover"

const commitmentTitle = "诚信承诺书"

const commitmentBody = "本人郑重承诺：所呈交的毕业论文是本人在指导老师的指导下独立进行研究工作所取得的成果。" +
	"除文中已经注明引用的内容外，本论文不含任何其他个人或集体已经发表或撰写过的作品成果。" +
	"对本文的研究做出重要贡献的个人和集体，均已在文中以明确方式标明。" +
	"本人完全意识到本承诺的法律结果由本人承担。"

// CoverPass inserts the standardized title page and integrity
// statement at the head of the document. A previously generated cover
// is replaced, never duplicated.
type CoverPass struct{}

var _ Pass = (*CoverPass)(nil)

func (p *CoverPass) Name() string           { return PassCover }
func (p *CoverPass) Dependencies() []string { return []string{PassStructure} }

func (p *CoverPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassCover)
	if rm == nil {
		return nil
	}

	blocks := p.build(pc)
	if p.matchesExisting(pc, blocks) {
		return nil
	}

	removed := p.removeGenerated(pc)
	pc.Doc.Insert(0, blocks...)
	rm.Shift(0, len(blocks))

	// The inserted span carries its own classification so later
	// passes leave it alone.
	split := 0
	for i, blk := range blocks {
		if para, ok := blk.(*model.Paragraph); ok && para.TrimmedText() == commitmentTitle {
			split = i
			break
		}
	}
	head := []model.Region{
		{Kind: model.RegionCover, Start: 0, End: split},
		{Kind: model.RegionCommitment, Start: split, End: len(blocks)},
	}
	rm.Regions = append(head, rm.Regions...)

	if removed > 0 {
		pc.Report.ChangeValue("cover", loc(0), "replaced generated cover and commitment pages", "", "")
	} else {
		pc.Report.Change("cover", loc(0), "inserted cover and commitment pages")
	}
	return nil
}

// matchesExisting reports whether the document already starts with an
// identical generated cover, making the pass a no-op.
func (p *CoverPass) matchesExisting(pc *Context, blocks []model.Block) bool {
	existing := pc.Doc.Blocks()
	if len(existing) < len(blocks) {
		return false
	}
	for i, blk := range blocks {
		want, ok := blk.(*model.Paragraph)
		if !ok {
			return false
		}
		have, ok := existing[i].(*model.Paragraph)
		if !ok {
			return false
		}
		if have.Text() != want.Text() || have.HasPageBreak() != want.HasPageBreak() {
			return false
		}
	}
	return true
}

// removeGenerated strips a cover previously produced by this pass,
// identified by the school name on the first paragraph. Returns the
// number of blocks removed.
func (p *CoverPass) removeGenerated(pc *Context) int {
	first := pc.Doc.ParagraphAt(0)
	if first == nil || first.TrimmedText() != pc.Config.Format.SchoolName {
		return 0
	}
	// The generated span ends at the first block the detector put in a
	// non-cover, non-commitment region.
	end := 0
	for _, r := range pc.Regions.Regions {
		if r.Kind == model.RegionCover || r.Kind == model.RegionCommitment {
			if r.End > end {
				end = r.End
			}
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	pc.Doc.Remove(0, end)
	// Drop the consumed entries and rebase what follows.
	var kept []model.Region
	for _, r := range pc.Regions.Regions {
		if r.End <= end {
			continue
		}
		if r.Start < end {
			r.Start = end
		}
		r.Start -= end
		r.End -= end
		kept = append(kept, r)
	}
	pc.Regions.Regions = kept
	return end
}

func (p *CoverPass) build(pc *Context) []model.Block {
	cfg := pc.Config
	field := cfg.Font(config.RoleCoverField)
	var blocks []model.Block

	titleLine := func(text string, size float64, bold bool) *model.Paragraph {
		para := model.NewParagraph(text)
		para.Alignment = model.AlignCenter
		para.SpaceBefore = 12
		para.SpaceAfter = 12
		r := para.Runs[0]
		r.FontEastAsia = "黑体"
		r.FontLatin = field.Latin
		r.SizePt = size
		r.Bold = bold
		return para
	}

	blocks = append(blocks,
		titleLine(cfg.Format.SchoolName, 26, true),
		titleLine(cfg.Format.DocumentLabel, 36, true),
		model.NewParagraph(""),
	)
	for _, line := range splitTitle(pc.Meta.Title) {
		blocks = append(blocks, titleLine(line, 22, true))
	}
	blocks = append(blocks, model.NewParagraph(""))

	fields := []struct{ label, value string }{
		{"专业", pc.Meta.Major},
		{"班级", pc.Meta.ClassName},
		{"学号", pc.Meta.StudentID},
		{"姓名", pc.Meta.StudentName},
		{"指导老师", pc.Meta.Instructor},
	}
	for _, f := range fields {
		para := &model.Paragraph{Alignment: model.AlignCenter, SpaceBefore: 6, SpaceAfter: 6}
		label := &model.Run{
			Text:         f.label + "：",
			FontEastAsia: field.EastAsia,
			FontLatin:    field.Latin,
			SizePt:       field.SizePt,
		}
		value := &model.Run{
			Text:         padFieldValue(f.value),
			FontEastAsia: field.EastAsia,
			FontLatin:    field.Latin,
			SizePt:       field.SizePt,
			Underline:    true,
		}
		para.Runs = []*model.Run{label, value}
		blocks = append(blocks, para)
	}

	date := pc.Meta.Date
	datePara := model.NewParagraph(date)
	datePara.Alignment = model.AlignCenter
	datePara.SpaceBefore = 24
	dr := datePara.Runs[0]
	dr.FontEastAsia = field.EastAsia
	dr.FontLatin = field.Latin
	dr.SizePt = field.SizePt
	blocks = append(blocks, datePara)

	blocks = append(blocks, pageBreakParagraph())

	// Commitment page.
	title := model.NewParagraph(commitmentTitle)
	title.Alignment = model.AlignCenter
	title.SpaceBefore = 24
	title.SpaceAfter = 24
	tr := title.Runs[0]
	tr.FontEastAsia = "黑体"
	tr.FontLatin = field.Latin
	tr.SizePt = 22
	tr.Bold = true
	blocks = append(blocks, title)

	body := cfg.Font(config.RoleBody)
	pledge := model.NewParagraph(commitmentBody)
	pledge.Alignment = model.AlignJustify
	pledge.FirstLineIndentChars = 2
	pledge.LineSpacing = 22
	br := pledge.Runs[0]
	br.FontEastAsia = body.EastAsia
	br.FontLatin = body.Latin
	br.SizePt = body.SizePt
	blocks = append(blocks, pledge)

	signer := model.NewParagraph("承诺人：" + pc.Meta.StudentName + "    " + date)
	signer.Alignment = model.AlignRight
	signer.SpaceBefore = 48
	sr := signer.Runs[0]
	sr.FontEastAsia = body.EastAsia
	sr.FontLatin = body.Latin
	sr.SizePt = body.SizePt
	blocks = append(blocks, signer)

	blocks = append(blocks, pageBreakParagraph())
	return blocks
}

func pageBreakParagraph() *model.Paragraph {
	return &model.Paragraph{Runs: []*model.Run{{PageBreak: true}}}
}

// titleBreakChars are the connectives a long title is preferentially
// split at, nearest the midpoint.
var titleBreakChars = []rune{'的', '与', '和', '及', '或'}

// splitTitle breaks titles longer than 20 runes into two lines at the
// connective nearest the middle, falling back to a hard midpoint cut.
func splitTitle(title string) []string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) <= 20 {
		return []string{string(runes)}
	}

	mid := len(runes) / 2
	best := -1
	bestDist := len(runes)
	for i, r := range runes {
		for _, c := range titleBreakChars {
			if r == c {
				dist := i - mid
				if dist < 0 {
					dist = -dist
				}
				if dist < bestDist {
					best = i
					bestDist = dist
				}
			}
		}
	}
	if best <= 0 || best >= len(runes)-1 {
		best = mid - 1
	}
	return []string{string(runes[:best+1]), string(runes[best+1:])}
}

// padFieldValue widens short values so the underline reads as a blank.
func padFieldValue(v string) string {
	const width = 14
	n := len([]rune(v))
	if n >= width {
		return " " + v + " "
	}
	pad := strings.Repeat("　", (width-n)/2)
	return pad + v + pad
}
