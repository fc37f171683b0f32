// core/decode/decode.go
package decode

import "math"

// Greedy collapses a posterior matrix into a base sequence by per-row argmax,
// merging consecutive repeats and dropping the blank symbol at alphabet[0].
// Qualities are Phred-scaled from each emitted symbol's probability, one per
// base, offset to printable ASCII ('!' == Q0).
func Greedy(post [][]float32, alphabet []byte) (seq, quals []byte) {
	prev := -1
	for _, row := range post {
		best, p := argmax(row)
		if best != prev && best > 0 && best < len(alphabet) {
			seq = append(seq, alphabet[best])
			quals = append(quals, phred(p))
		}
		prev = best
	}
	return seq, quals
}

func argmax(row []float32) (int, float32) {
	best, bp := 0, float32(-1)
	for i, v := range row {
		if v > bp {
			best, bp = i, v
		}
	}
	return best, bp
}

// phred maps probability p to a printable Phred character, clamped to [1,50].
func phred(p float32) byte {
	q := -10 * math.Log10(math.Max(1e-5, 1-float64(p)))
	if q < 1 {
		q = 1
	}
	if q > 50 {
		q = 50
	}
	return byte('!' + int(q))
}
