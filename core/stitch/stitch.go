// core/stitch/stitch.go
package stitch

// Stitch merges per-chunk posterior outputs back into one continuous
// sequence. trim is half the post-stride overlap (overlap/stride/2): the
// first chunk loses its trailing trim rows, the last its leading trim rows,
// interior chunks both. Chunk edges have reduced model context, so the
// trimmed region is exactly the low-confidence half-overlap on each side.
//
// A single-chunk batch is returned untrimmed. The caller must still truncate
// the result to OutLen(signalLen, stride): the final chunk's extra overlap
// can produce rows past the logical end of the read.
func Stitch(batch [][][]float32, trim int) [][]float32 {
	switch len(batch) {
	case 0:
		return nil
	case 1:
		return batch[0]
	}
	total := 0
	for i, p := range batch {
		rows := len(p)
		if i > 0 {
			rows -= trim
		}
		if i < len(batch)-1 {
			rows -= trim
		}
		if rows > 0 {
			total += rows
		}
	}
	out := make([][]float32, 0, total)
	for i, p := range batch {
		lo, hi := 0, len(p)
		if i > 0 {
			lo += trim
		}
		if i < len(batch)-1 {
			hi -= trim
		}
		if lo < hi {
			out = append(out, p[lo:hi]...)
		}
	}
	return out
}

// OutLen is the stitched length a signal of n samples maps to under the
// scorer's temporal stride: ceil(n/stride).
func OutLen(n, stride int) int {
	if stride <= 0 {
		return n
	}
	return (n + stride - 1) / stride
}

// Truncate clips a stitched sequence to the read's true post-stride length.
func Truncate(post [][]float32, n, stride int) [][]float32 {
	if want := OutLen(n, stride); want < len(post) {
		return post[:want]
	}
	return post
}
