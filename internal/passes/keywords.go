package passes

import (
	"regexp"
	"strings"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
)

// PassKeywords is the keyword-line normalization pass name.
const PassKeywords = "keywords"

var (
	cnKeywordLine = regexp.MustCompile(`^[\[【［]?\s*关键[词字]\s*[】］\]]?\s*[:：]?\s*(.+)$`)
	enKeywordLine = regexp.MustCompile(`(?i)^[\[［]?\s*key\s*words?\s*[］\]]?\s*[:：]?\s*(.+)$`)
	keywordSep    = regexp.MustCompile(`[;；，,、]`)
)

// KeywordsPass rewrites the keyword lines into the institutional form:
// a bracketed bold label followed by non-bold terms joined with the
// canonical separator.
type KeywordsPass struct{}

var _ Pass = (*KeywordsPass)(nil)

func (p *KeywordsPass) Name() string           { return PassKeywords }
func (p *KeywordsPass) Dependencies() []string { return []string{PassStructure} }

func (p *KeywordsPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassKeywords)
	if rm == nil {
		return nil
	}

	for _, region := range rm.Regions {
		var line *regexp.Regexp
		var label, sep string
		switch region.Kind {
		case model.RegionKeywordsCN:
			line, label, sep = cnKeywordLine, "[关键词] ", "；"
		case model.RegionKeywordsEN:
			line, label, sep = enKeywordLine, "[Key words] ", "; "
		default:
			continue
		}

		for idx := region.Start; idx < region.End; idx++ {
			para := pc.Doc.ParagraphAt(idx)
			if para == nil {
				continue
			}
			m := line.FindStringSubmatch(para.TrimmedText())
			if m == nil {
				continue
			}

			content := joinKeywords(m[1], sep)
			labelFont := pc.Config.Font(config.RoleKeywordLabel)
			contentFont := pc.Config.Font(config.RoleKeywordContent)

			old := para.Text()
			if old != label+content {
				para.Runs = []*model.Run{
					{
						Text:         label,
						Bold:         true,
						FontEastAsia: labelFont.EastAsia,
						FontLatin:    labelFont.Latin,
						SizePt:       labelFont.SizePt,
					},
					{
						Text:         content,
						FontEastAsia: contentFont.EastAsia,
						FontLatin:    contentFont.Latin,
						SizePt:       contentFont.SizePt,
					},
				}
				para.FirstLineIndentChars = 0
				pc.Report.ChangeValue("keywords", loc(idx),
					"normalized keyword line", old, label+content)
			}
			applySpacingPolicy(para, pc.Config.Spacing(config.RoleKeywordContent))
		}
	}
	return nil
}

// joinKeywords splits the raw term list on any common separator and
// rejoins the non-empty terms with the canonical one.
func joinKeywords(raw, sep string) string {
	var terms []string
	for _, t := range keywordSep.Split(raw, -1) {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	return strings.Join(terms, sep)
}
