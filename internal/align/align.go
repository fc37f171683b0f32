// internal/align/align.go
package align

// Scores are the two training-capture quality gates computed from an
// alignment of a candidate call against the reference.
type Scores struct {
	// Coverage is the aligned fraction of the query: (qend-qstart)/qlen.
	Coverage float64
	// Accuracy is the match fraction of the alignment block: nmatch/alnlen.
	Accuracy float64
}

// Aligner scores a candidate basecalled segment against a reference.
// ok is false when the segment did not align at all; that is an expected
// outcome, not an error.
type Aligner interface {
	Score(seq []byte) (Scores, bool)
}
