package model

import "strconv"

// ArtifactKind names a renumberable document artifact.
type ArtifactKind string

const (
	ArtifactFigure   ArtifactKind = "figure"
	ArtifactTable    ArtifactKind = "table"
	ArtifactFootnote ArtifactKind = "footnote"
	ArtifactEquation ArtifactKind = "equation"
)

// NumberedArtifact anchors one figure, table, footnote, or equation to a
// block position together with its resolved numbering.
type NumberedArtifact struct {
	Kind       ArtifactKind
	BlockIndex int
	// Chapter is the enclosing chapter ordinal (0 for front matter).
	Chapter int
	// Seq is the 1-based sequence within the numbering scope: chapter
	// for figures, tables, and equations; approximated page for
	// footnotes.
	Seq int
}

// Label returns the canonical chapter.sequence label, e.g. "3.2".
func (a NumberedArtifact) Label() string {
	return strconv.Itoa(a.Chapter) + "." + strconv.Itoa(a.Seq)
}
