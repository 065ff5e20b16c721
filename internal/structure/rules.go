// Package structure classifies a document's block sequence into named
// regions using a prioritized, data-driven rule list.
package structure

import (
	"regexp"
	"strings"

	"github.com/thesistools/thesisfmt/internal/model"
)

// Rule matches a paragraph against one region marker. Rules are
// evaluated in registration order; conflicts are settled by the
// detector's tie-break strategy.
type Rule struct {
	Name   string
	Region model.RegionKind

	// Literals match the whitespace-collapsed paragraph text exactly.
	Literals []string
	// Pattern matches the trimmed paragraph text.
	Pattern *regexp.Regexp
	// Styles match the paragraph style identifier exactly.
	Styles []string

	// HeadingLevel, when > 0, is stamped on the matching paragraph.
	HeadingLevel int
	// Weight is the base specificity used by the most_specific
	// tie-break; literal matches add the literal's length on top.
	Weight int
}

// match returns the match specificity, or -1 when the rule does not
// apply.
func (r *Rule) match(text, style string) int {
	collapsed := collapseSpace(text)
	for _, lit := range r.Literals {
		if collapsed == lit {
			return r.Weight + 100 + len(lit)
		}
	}
	if r.Pattern != nil && r.Pattern.MatchString(text) {
		return r.Weight + 50
	}
	for _, s := range r.Styles {
		if style == s {
			return r.Weight + 10
		}
	}
	return -1
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

var (
	chapterPattern  = regexp.MustCompile(`^第([一二三四五六七八九十百零\d]+)[章节]`)
	appendixPattern = regexp.MustCompile(`^附\s*录\s*[A-Za-z一二三四五六七八九十\d]?([::.\s].*)?$`)
	keywordsCN      = regexp.MustCompile(`^[\[【\[]?关键[词字][\]】\]]?\s*[::]?`)
	keywordsEN      = regexp.MustCompile(`(?i)^[\[\[]?key\s*words?[\]\]]?\s*[::]?`)
	subHeading2     = regexp.MustCompile(`^\d+\.\d+\s*\S`)
	subHeading3     = regexp.MustCompile(`^\d+\.\d+\.\d+\s*\S`)
	// tocEntryPattern recognizes a contents line: text, a tab, then a
	// trailing arabic or roman page number.
	tocEntryPattern = regexp.MustCompile(`\t\s*([0-9]+|[IVXLCDM]+)\s*$`)
)

// DefaultRules returns the institutional marker rules in priority
// registration order (later entries win most_specific ties).
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:         "commitment",
			Region:       model.RegionCommitment,
			Literals:     []string{"诚信承诺书", "承诺书", "独创性声明"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:         "abstract-cn",
			Region:       model.RegionAbstractCN,
			Literals:     []string{"摘要", "中文摘要", "内容摘要"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:         "abstract-en",
			Region:       model.RegionAbstractEN,
			Literals:     []string{"Abstract", "ABSTRACT", "英文摘要"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:    "keywords-cn",
			Region:  model.RegionKeywordsCN,
			Pattern: keywordsCN,
			Weight:  20,
		},
		{
			Name:    "keywords-en",
			Region:  model.RegionKeywordsEN,
			Pattern: keywordsEN,
			Weight:  20,
		},
		{
			Name:         "toc",
			Region:       model.RegionTOC,
			Literals:     []string{"目录", "目次"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:         "chapter",
			Region:       model.RegionChapter,
			Pattern:      chapterPattern,
			Styles:       []string{"Heading1", "1"},
			HeadingLevel: 1,
			Weight:       5,
		},
		{
			Name:         "references",
			Region:       model.RegionReferences,
			Literals:     []string{"参考文献", "参考书目"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:         "acknowledgments",
			Region:       model.RegionAcknowledgments,
			Literals:     []string{"致谢", "谢辞", "鸣谢"},
			HeadingLevel: 1,
			Weight:       10,
		},
		{
			Name:         "appendix",
			Region:       model.RegionAppendix,
			Pattern:      appendixPattern,
			HeadingLevel: 1,
			Weight:       8,
		},
	}
}

// chapterOrdinal extracts the chapter number from a chapter heading,
// or 0 when the text is not a numbered chapter heading.
func chapterOrdinal(text string) int {
	m := chapterPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return model.ParseChineseNumber(m[1])
}
