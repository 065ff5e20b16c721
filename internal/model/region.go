package model

// RegionKind names a detected document region.
type RegionKind string

const (
	RegionCover           RegionKind = "cover"
	RegionCommitment      RegionKind = "commitment"
	RegionAbstractCN      RegionKind = "abstract_cn"
	RegionKeywordsCN      RegionKind = "keywords_cn"
	RegionAbstractEN      RegionKind = "abstract_en"
	RegionKeywordsEN      RegionKind = "keywords_en"
	RegionTOC             RegionKind = "toc"
	RegionChapter         RegionKind = "chapter"
	RegionReferences      RegionKind = "references"
	RegionAcknowledgments RegionKind = "acknowledgments"
	RegionAppendix        RegionKind = "appendix"
	RegionUnclassified    RegionKind = "unclassified"
)

// IsFrontMatter reports whether the region belongs to the roman-numbered
// front matter zone.
func (k RegionKind) IsFrontMatter() bool {
	switch k {
	case RegionCover, RegionCommitment, RegionAbstractCN, RegionKeywordsCN,
		RegionAbstractEN, RegionKeywordsEN, RegionTOC:
		return true
	}
	return false
}

// Region is a contiguous half-open span [Start, End) of flat block
// indexes carrying one classification.
type Region struct {
	Kind RegionKind
	// Chapter is the 1-based chapter ordinal for RegionKindChapter
	// spans, 0 otherwise.
	Chapter int
	Start   int
	End     int
}

// Contains reports whether the flat block index falls in the region.
func (r Region) Contains(idx int) bool {
	return idx >= r.Start && idx < r.End
}

// Len returns the number of blocks in the region.
func (r Region) Len() int { return r.End - r.Start }

// RegionMap is the ordered, non-overlapping set of regions covering a
// document's block sequence. It is computed once after load and treated
// as read-only by passes; passes that insert blocks call Shift.
type RegionMap struct {
	Regions []Region
}

// At returns the region containing the flat block index. Unclaimed
// indexes report RegionUnclassified.
func (m *RegionMap) At(idx int) Region {
	for _, r := range m.Regions {
		if r.Contains(idx) {
			return r
		}
	}
	return Region{Kind: RegionUnclassified, Start: idx, End: idx + 1}
}

// First returns the first region of the given kind.
func (m *RegionMap) First(kind RegionKind) (Region, bool) {
	for _, r := range m.Regions {
		if r.Kind == kind {
			return r, true
		}
	}
	return Region{}, false
}

// All returns every region of the given kind in document order.
func (m *RegionMap) All(kind RegionKind) []Region {
	var out []Region
	for _, r := range m.Regions {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// ChapterAt returns the chapter ordinal enclosing the flat block index,
// or 0 when the index is outside every chapter.
func (m *RegionMap) ChapterAt(idx int) int {
	chapter := 0
	for _, r := range m.Regions {
		if r.Kind == RegionChapter && r.Start <= idx {
			chapter = r.Chapter
		}
	}
	if r := m.At(idx); r.Kind == RegionChapter {
		return r.Chapter
	}
	return chapter
}

// BodyStart returns the flat index of the first chapter block, or -1
// when the document has no detected chapters.
func (m *RegionMap) BodyStart() int {
	if r, ok := m.First(RegionChapter); ok {
		return r.Start
	}
	return -1
}

// Shift moves every region boundary at or after idx by delta. Used by
// passes that insert or remove blocks so later passes keep valid spans.
func (m *RegionMap) Shift(idx, delta int) {
	for i := range m.Regions {
		if m.Regions[i].Start >= idx {
			m.Regions[i].Start += delta
		}
		if m.Regions[i].End > idx {
			m.Regions[i].End += delta
		}
	}
}

// MaxChapter returns the highest chapter ordinal in the map.
func (m *RegionMap) MaxChapter() int {
	max := 0
	for _, r := range m.Regions {
		if r.Kind == RegionChapter && r.Chapter > max {
			max = r.Chapter
		}
	}
	return max
}
