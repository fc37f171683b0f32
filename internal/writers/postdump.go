// internal/writers/postdump.go
package writers

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"

	"porecall/internal/jsonlutil"
)

// IndexEntry locates one read's posterior block inside the flat dump stream
// and carries a digest so the block can be verified after the fact.
type IndexEntry struct {
	ReadID string `json:"read_id"`
	Offset int64  `json:"offset"`
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Digest string `json:"blake2b"`
}

// Dump appends stitched posteriors as one flat little-endian float32 stream
// for the whole run, in processing order, with a JSONL index sidecar.
// Append is called by the scoring loop directly; only the index encoding runs
// on its own goroutine.
type Dump struct {
	w      *bufio.Writer
	off    int64
	idx    chan<- IndexEntry
	idxErr <-chan error
	buf    [4]byte
}

// NewDump wraps the stream and index writers. index may be nil to disable
// the sidecar.
func NewDump(stream, index io.Writer) *Dump {
	d := &Dump{w: bufio.NewWriterSize(stream, 256<<10)}
	if index != nil {
		d.idx, d.idxErr = jsonlutil.Start[IndexEntry](index, 16,
			func(enc *json.Encoder, e IndexEntry) error { return enc.Encode(e) },
			IsBrokenPipe,
		)
	}
	return d
}

// Append writes one read's posterior block and records its index entry.
func (d *Dump) Append(readID string, post [][]float32) error {
	h, _ := blake2b.New256(nil)
	start := d.off
	cols := 0
	if len(post) > 0 {
		cols = len(post[0])
	}
	for _, row := range post {
		for _, v := range row {
			binary.LittleEndian.PutUint32(d.buf[:], math.Float32bits(v))
			if _, err := d.w.Write(d.buf[:]); err != nil {
				return err
			}
			_, _ = h.Write(d.buf[:])
			d.off += 4
		}
	}
	if d.idx != nil {
		d.idx <- IndexEntry{
			ReadID: readID,
			Offset: start,
			Rows:   len(post),
			Cols:   cols,
			Digest: hex.EncodeToString(h.Sum(nil)),
		}
	}
	return nil
}

// Close flushes the stream and joins the index goroutine.
func (d *Dump) Close() error {
	err := d.w.Flush()
	if d.idx != nil {
		close(d.idx)
		if ierr := <-d.idxErr; err == nil {
			err = ierr
		}
	}
	return err
}
