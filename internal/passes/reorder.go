package passes

import (
	"fmt"
	"sort"

	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassReorder is the binding-order pass name.
const PassReorder = "reorder"

// bindingRank is the standard binding order for a thesis: cover,
// commitment, abstracts with their keyword lines, table of contents,
// chapters, references, acknowledgments, appendix.
var bindingRank = map[model.RegionKind]int{
	model.RegionCover:           0,
	model.RegionCommitment:      1,
	model.RegionAbstractCN:      2,
	model.RegionKeywordsCN:      3,
	model.RegionAbstractEN:      4,
	model.RegionKeywordsEN:      5,
	model.RegionTOC:             6,
	model.RegionChapter:         7,
	model.RegionReferences:      8,
	model.RegionAcknowledgments: 9,
	model.RegionAppendix:        10,
}

// ReorderPass moves detected regions into the standard binding order.
// Unclassified content travels with the region it follows, and chapters
// keep their relative order. A document whose regions already sit in
// binding order is left untouched.
type ReorderPass struct{}

var _ Pass = (*ReorderPass)(nil)

func (p *ReorderPass) Name() string           { return PassReorder }
func (p *ReorderPass) Dependencies() []string { return []string{PassStructure} }

// rankedRegion pairs a region with its binding rank.
type rankedRegion struct {
	model.Region
	rank int
}

func rankRegions(regions []model.Region) []rankedRegion {
	out := make([]rankedRegion, len(regions))
	last := -1
	for i, r := range regions {
		rank, ok := bindingRank[r.Kind]
		if !ok {
			rank = last
		} else {
			last = rank
		}
		out[i] = rankedRegion{Region: r, rank: rank}
	}
	return out
}

func (p *ReorderPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassReorder)
	if rm == nil || len(rm.Regions) == 0 {
		return nil
	}

	ranked := rankRegions(rm.Regions)
	inOrder := true
	for i := 1; i < len(ranked); i++ {
		if ranked[i].rank < ranked[i-1].rank {
			inOrder = false
			break
		}
	}
	if inOrder {
		return nil
	}

	// Section breaks carry page-numbering zones; moving content across
	// them would scramble the zones, so only a single-section document
	// is reordered.
	if len(pc.Doc.Sections) > 1 {
		pc.Report.Warn(report.WarningStructural, PassReorder,
			"regions out of binding order but the document already has section breaks; order left unchanged")
		return nil
	}

	blocks := pc.Doc.Blocks()
	prev := 0
	for _, r := range rm.Regions {
		if r.Start != prev || r.End < r.Start {
			pc.Report.Warn(report.WarningStructural, PassReorder,
				"region map does not cover the document contiguously; order left unchanged")
			return nil
		}
		prev = r.End
	}
	if prev != len(blocks) {
		pc.Report.Warn(report.WarningStructural, PassReorder,
			"region map does not cover the document contiguously; order left unchanged")
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rank < ranked[j].rank })

	newBlocks := make([]model.Block, 0, len(blocks))
	newRegions := make([]model.Region, 0, len(ranked))
	moved := 0
	for _, r := range ranked {
		start := len(newBlocks)
		newBlocks = append(newBlocks, blocks[r.Start:r.End]...)
		nr := r.Region
		nr.Start = start
		nr.End = start + r.Len()
		newRegions = append(newRegions, nr)
		if r.Start != start {
			moved++
			pc.Report.ChangeValue("reorder", loc(start),
				fmt.Sprintf("moved %s into binding order", r.Kind), loc(r.Start), loc(start))
		}
	}
	pc.Doc.Sections[0].Blocks = newBlocks
	rm.Regions = newRegions

	pc.Logger.Debug("regions reordered", "moved", moved, "regions", len(newRegions))
	return nil
}
