// core/read/read.go
package read

// Read is one raw sensor trace plus its identifier. The signal is immutable
// once handed to the pipeline; downstream stages slice it but never mutate it.
type Read struct {
	ID     string
	Signal []float32
	// Source is the file the read was decoded from. Diagnostics only; the
	// pipeline does not interpret it.
	Source string
}

// Len returns the number of raw samples.
func (r *Read) Len() int { return len(r.Signal) }
