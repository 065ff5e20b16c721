// Package passes implements the formatting transformations applied to
// a document: structure detection, cover generation, font and spacing
// normalization, page-number zones, keyword/figure/footnote/math/TOC
// rewriting, and acknowledgments and appendix normalization.
package passes

import (
	"fmt"
	"log/slog"

	"github.com/thesistools/thesisfmt/internal/config"
	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// Pass is one self-contained transformation stage. Passes run in a
// fixed total order against a shared document and region map; each
// pass touches only its own scope.
type Pass interface {
	// Name identifies the pass and its config toggle.
	Name() string
	// Dependencies lists passes that must complete first.
	Dependencies() []string
	// Run mutates the shared document through the pass context.
	Run(pc *Context) error
}

// Context is the shared state one formatting run threads through its
// passes. The document is mutated in place; the region map is computed
// by the structure pass and read by everything after it.
type Context struct {
	Doc     *model.Document
	Regions *model.RegionMap
	Config  *config.Config
	Meta    config.Metadata
	Report  *report.Report
	Logger  *slog.Logger
}

// RequireRegions returns the region map or records a structural
// warning for the calling pass when detection never ran.
func (pc *Context) RequireRegions(pass string) *model.RegionMap {
	if pc.Regions == nil {
		pc.Report.Warn(report.WarningStructural, pass, "no region map available; pass skipped")
		return nil
	}
	return pc.Regions
}

// loc formats a block position for change records.
func loc(idx int) string {
	return fmt.Sprintf("block %d", idx)
}

// applyFontPolicy styles every run of a paragraph with the given rule
// and sets its alignment. Returns true when anything changed.
func applyFontPolicy(p *model.Paragraph, fp config.FontPolicy) bool {
	changed := false
	for _, r := range p.Runs {
		if r.PageBreak || r.MathXML != "" {
			continue
		}
		if fp.EastAsia != "" && r.FontEastAsia != fp.EastAsia {
			r.FontEastAsia = fp.EastAsia
			changed = true
		}
		if fp.Latin != "" && r.FontLatin != fp.Latin {
			r.FontLatin = fp.Latin
			changed = true
		}
		if fp.SizePt > 0 && r.SizePt != fp.SizePt {
			r.SizePt = fp.SizePt
			changed = true
		}
		if r.Bold != fp.Bold {
			r.Bold = fp.Bold
			changed = true
		}
	}
	if fp.Align != "" {
		align := model.Alignment(fp.Align)
		if p.Alignment != align {
			p.Alignment = align
			changed = true
		}
	}
	return changed
}

// applySpacingPolicy sets paragraph spacing from the rule. Zero-valued
// rule fields leave the attribute untouched. Returns true when
// anything changed.
func applySpacingPolicy(p *model.Paragraph, sp config.SpacingPolicy) bool {
	changed := false
	if sp.Line > 0 && p.LineSpacing != sp.Line {
		p.LineSpacing = sp.Line
		changed = true
	}
	if sp.Before > 0 && p.SpaceBefore != sp.Before {
		p.SpaceBefore = sp.Before
		changed = true
	}
	if sp.After > 0 && p.SpaceAfter != sp.After {
		p.SpaceAfter = sp.After
		changed = true
	}
	if sp.FirstLineChars > 0 && p.FirstLineIndentChars != sp.FirstLineChars {
		p.FirstLineIndentChars = sp.FirstLineChars
		changed = true
	}
	return changed
}

// roleForBlock maps a classified block to the font/spacing role the
// normalizer passes use. Empty means the block is out of scope.
func roleForBlock(kind model.RegionKind, regionStart int, idx int, p *model.Paragraph) string {
	switch kind {
	case model.RegionCover, model.RegionCommitment,
		model.RegionAcknowledgments, model.RegionUnclassified,
		model.RegionKeywordsCN, model.RegionKeywordsEN:
		// Cover and commitment are generated fully styled; keywords
		// and acknowledgments are owned by their dedicated passes.
		return ""
	case model.RegionAbstractCN, model.RegionAbstractEN:
		if idx == regionStart && p.HeadingLevel > 0 {
			return config.RoleSectionTitle
		}
		return config.RoleAbstractBody
	case model.RegionTOC:
		if idx == regionStart && p.HeadingLevel > 0 {
			return config.RoleSectionTitle
		}
		return config.RoleTOCEntry
	case model.RegionReferences:
		if idx == regionStart && p.HeadingLevel > 0 {
			return config.RoleSectionTitle
		}
		return config.RoleReferences
	case model.RegionChapter, model.RegionAppendix:
		switch p.HeadingLevel {
		case 1:
			return config.RoleHeading1
		case 2:
			return config.RoleHeading2
		case 3:
			return config.RoleHeading3
		}
		if captionPattern.MatchString(p.TrimmedText()) {
			return config.RoleCaption
		}
		return config.RoleBody
	}
	return ""
}
