// core/chunk/chunk.go
package chunk

import "fmt"

// Batch is the overlapped windowing of one read's signal. Size, Overlap and
// SignalLen carry enough metadata to reverse the windowing downstream.
// Windows share backing storage with the original signal.
type Batch struct {
	Windows   [][]float32
	Starts    []int
	Size      int
	Overlap   int
	SignalLen int
}

// Chunked reports whether the signal was actually split (more than one
// window). A read that fit in a single window has no overlap structure.
func (b Batch) Chunked() bool { return len(b.Windows) > 1 }

// Validate checks a size/overlap combination. An invalid combination is a
// configuration error: it is reported once at startup, never per read.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("chunk size must be > 0 (got %d)", size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("overlap must be in [0, chunk size) (got overlap=%d, size=%d)", overlap, size)
	}
	return nil
}

// Split windows signal into overlapping chunks of exactly size samples.
// A signal no longer than size yields one whole-signal window. Otherwise
// windows start size-overlap apart, and the final window is pulled back so it
// ends exactly at the last sample; it may therefore overlap its predecessor
// by more than overlap, but no short tail is ever emitted.
func Split(signal []float32, size, overlap int) Batch {
	b := Batch{Size: size, Overlap: overlap, SignalLen: len(signal)}
	n := len(signal)
	if n <= size {
		b.Windows = [][]float32{signal}
		b.Starts = []int{0}
		return b
	}
	step := size - overlap
	for start := 0; start+size <= n; start += step {
		b.Windows = append(b.Windows, signal[start:start+size])
		b.Starts = append(b.Starts, start)
	}
	if last := b.Starts[len(b.Starts)-1]; last+size < n {
		b.Windows = append(b.Windows, signal[n-size:])
		b.Starts = append(b.Starts, n-size)
	}
	return b
}
