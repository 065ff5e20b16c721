package passes

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/thesistools/thesisfmt/internal/model"
	"github.com/thesistools/thesisfmt/internal/report"
)

// PassFigTab is the figure and table renumbering pass name.
const PassFigTab = "figtab"

var (
	// captionPattern matches a figure or table caption prefix, either
	// chapter-scoped (图1-2, 表3.1) or plain (图5).
	captionPattern = regexp.MustCompile(`^(图|表)\s*(\d+)(?:\s*[-—..]\s*(\d+))?`)
	// refPattern matches the same label anywhere in running text.
	refPattern = regexp.MustCompile(`(图|表)\s*(\d+)(?:\s*[-—..]\s*(\d+))?`)
)

// labelKey identifies an artifact label as it appeared in the source
// text. minor is -1 for single-number labels.
type labelKey struct {
	kind  string
	major int
	minor int
}

func parseLabelKey(m []string) labelKey {
	key := labelKey{kind: m[1], minor: -1}
	key.major, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		key.minor, _ = strconv.Atoi(m[3])
	}
	return key
}

func (k labelKey) String() string {
	if k.minor < 0 {
		return fmt.Sprintf("%s%d", k.kind, k.major)
	}
	return fmt.Sprintf("%s%d.%d", k.kind, k.major, k.minor)
}

// FigTabPass renumbers figure and table captions chapter by chapter
// and rewrites every cross-reference to match. References whose
// caption no longer exists are left as-is and reported.
type FigTabPass struct{}

var _ Pass = (*FigTabPass)(nil)

func (p *FigTabPass) Name() string           { return PassFigTab }
func (p *FigTabPass) Dependencies() []string { return []string{PassStructure} }

type captionEdit struct {
	idx     int
	para    *model.Paragraph
	oldText string
	newText string
}

// captionTarget is one caption's new label at its block position. A
// source label reused in several chapters yields several targets; a
// reference resolves to the nearest preceding one.
type captionTarget struct {
	idx   int
	label string
}

// resolveTarget picks the target for a reference at refIdx: the last
// caption at or before it, else the first one in the document.
func resolveTarget(targets []captionTarget, refIdx int) string {
	chosen := targets[0]
	for _, t := range targets[1:] {
		if t.idx <= refIdx {
			chosen = t
		}
	}
	return chosen.label
}

func (p *FigTabPass) Run(pc *Context) error {
	rm := pc.RequireRegions(PassFigTab)
	if rm == nil {
		return nil
	}

	// First walk: number captions in document order, keyed per chapter
	// and per kind, and collect every assignment per source label.
	counters := map[string]map[int]int{"图": {}, "表": {}}
	rename := map[labelKey][]captionTarget{}
	var edits []captionEdit
	captionBlocks := map[int]bool{}
	var artifacts []model.NumberedArtifact

	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		region := rm.At(idx)
		if region.Kind != model.RegionChapter || region.Chapter == 0 {
			continue
		}
		m := captionPattern.FindStringSubmatch(para.TrimmedText())
		if m == nil {
			continue
		}

		key := parseLabelKey(m)
		counters[key.kind][region.Chapter]++
		seq := counters[key.kind][region.Chapter]

		art := model.NumberedArtifact{
			Kind:       artifactKind(key.kind),
			BlockIndex: idx,
			Chapter:    region.Chapter,
			Seq:        seq,
		}
		artifacts = append(artifacts, art)
		newLabel := key.kind + art.Label()
		rename[key] = append(rename[key], captionTarget{idx: idx, label: newLabel})

		captionBlocks[idx] = true
		old := para.Text()
		span := captionPattern.FindStringIndex(old)
		if span == nil {
			continue
		}
		edits = append(edits, captionEdit{
			idx:     idx,
			para:    para,
			oldText: old,
			newText: newLabel + old[span[1]:],
		})
	}

	// Second walk: rewrite references in body text against the source
	// labels, before any caption text changes.
	dangling := map[labelKey]bool{}
	for idx, blk := range pc.Doc.Blocks() {
		para, ok := blk.(*model.Paragraph)
		if !ok {
			continue
		}
		if captionBlocks[idx] {
			continue
		}
		kind := rm.At(idx).Kind
		if kind != model.RegionChapter && kind != model.RegionAppendix {
			continue
		}
		for _, r := range para.Runs {
			if r.Text == "" {
				continue
			}
			rewritten := refPattern.ReplaceAllStringFunc(r.Text, func(s string) string {
				key := parseLabelKey(refPattern.FindStringSubmatch(s))
				targets, ok := rename[key]
				if !ok {
					if !dangling[key] {
						dangling[key] = true
						pc.Report.Warn(report.WarningCrossReference, PassFigTab,
							"reference to %s has no matching caption", key)
					}
					return s
				}
				return resolveTarget(targets, idx)
			})
			if rewritten != r.Text {
				pc.Report.ChangeValue("cross_reference", loc(idx),
					"rewrote figure/table reference", r.Text, rewritten)
				r.Text = rewritten
			}
		}
	}

	for _, e := range edits {
		if e.newText == e.oldText {
			continue
		}
		e.para.SetText(e.newText)
		pc.Report.ChangeValue("caption", loc(e.idx),
			"renumbered caption", e.oldText, e.newText)
	}

	pc.Logger.Debug("figures and tables renumbered",
		"captions", len(artifacts), "dangling_refs", len(dangling))
	return nil
}

func artifactKind(marker string) model.ArtifactKind {
	if marker == "表" {
		return model.ArtifactTable
	}
	return model.ArtifactFigure
}
