package structure

import (
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// TieBreak selects how overlapping rule matches are resolved.
type TieBreak string

const (
	// TieMostSpecific prefers the highest specificity; among equals the
	// most recently registered rule wins.
	TieMostSpecific TieBreak = "most_specific"
	// TieFirstMatch takes the first matching rule in registration order.
	TieFirstMatch TieBreak = "first_match"
)

// Options configures a Detector.
type Options struct {
	// TieBreak defaults to TieMostSpecific.
	TieBreak TieBreak
	// ExtraRules are appended after the default rules, giving them
	// priority under the most_specific strategy.
	ExtraRules []Rule
}

// Detector classifies block sequences into regions.
type Detector struct {
	rules    []Rule
	tieBreak TieBreak
}

// NewDetector builds a detector from the default institutional rules
// plus any caller-supplied additions.
func NewDetector(opts Options) *Detector {
	tb := opts.TieBreak
	if tb == "" {
		tb = TieMostSpecific
	}
	rules := DefaultRules()
	rules = append(rules, opts.ExtraRules...)
	return &Detector{rules: rules, tieBreak: tb}
}

// Detect scans the document's blocks once and produces the region map.
// It also stamps HeadingLevel on heading paragraphs. Detection never
// fails: a document with no recognizable markers yields one body
// region spanning everything plus a structural warning.
func (d *Detector) Detect(doc *model.Document) (*model.RegionMap, []report.Warning) {
	blocks := doc.Blocks()
	var warnings []report.Warning

	rm := &model.RegionMap{}
	open := model.Region{Kind: model.RegionCover, Start: 0}
	matchedAny := false
	chapterSeq := 0

	closeOpen := func(end int) {
		if end > open.Start {
			open.End = end
			rm.Regions = append(rm.Regions, open)
		}
	}

	for i, blk := range blocks {
		p, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		text := p.TrimmedText()
		if text == "" && p.Style == "" {
			continue
		}

		// Contents lines repeat chapter headings verbatim; keep them in
		// the open TOC region instead of re-matching them.
		if open.Kind == model.RegionTOC && tocEntryPattern.MatchString(text) {
			continue
		}

		rule := d.bestMatch(text, p.Style)
		if rule == nil {
			// Unmatched paragraphs inherit the open region; inside a
			// chapter we still derive sub-heading levels.
			if open.Kind == model.RegionChapter {
				switch {
				case subHeading3.MatchString(text):
					p.HeadingLevel = 3
				case subHeading2.MatchString(text):
					p.HeadingLevel = 2
				case p.Style == "Heading2" || p.Style == "2":
					p.HeadingLevel = 2
				case p.Style == "Heading3" || p.Style == "3":
					p.HeadingLevel = 3
				}
			}
			continue
		}

		matchedAny = true
		closeOpen(i)
		open = model.Region{Kind: rule.Region, Start: i}
		if rule.Region == model.RegionChapter {
			ord := chapterOrdinal(text)
			if ord == 0 {
				chapterSeq++
				ord = chapterSeq
				warnings = append(warnings, report.Warning{
					Kind:    report.WarningStructural,
					Pass:    "structure",
					Message: "chapter heading without a parseable ordinal: " + text,
				})
			} else {
				chapterSeq = ord
			}
			open.Chapter = ord
		}
		if rule.HeadingLevel > 0 {
			p.HeadingLevel = rule.HeadingLevel
		}
	}
	closeOpen(len(blocks))

	if !matchedAny {
		rm.Regions = []model.Region{{
			Kind:    model.RegionChapter,
			Chapter: 1,
			Start:   0,
			End:     len(blocks),
		}}
		warnings = append(warnings, report.Warning{
			Kind:    report.WarningStructural,
			Pass:    "structure",
			Message: "no structural markers found; treating the whole document as body text",
		})
		return rm, warnings
	}

	if _, ok := rm.First(model.RegionChapter); !ok {
		warnings = append(warnings, report.Warning{
			Kind:    report.WarningStructural,
			Pass:    "structure",
			Message: "no chapter headings found; page numbering zones may be incomplete",
		})
	}

	return rm, warnings
}

// bestMatch applies the tie-break strategy across all rules.
func (d *Detector) bestMatch(text, style string) *Rule {
	var best *Rule
	bestScore := -1
	for i := range d.rules {
		r := &d.rules[i]
		score := r.match(text, style)
		if score < 0 {
			continue
		}
		if d.tieBreak == TieFirstMatch {
			return r
		}
		// Most specific wins; ties go to the latest registered rule.
		if score >= bestScore {
			best = r
			bestScore = score
		}
	}
	return best
}
