// internal/reads/sig.go
package reads

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"porecall-core/read"
)

// Raw signal container format: a .sig file is a sequence of records, each
//
//	magic "PSIG" | version u8 | idLen u32 | id | sampleCount u32 | f32 × count
//
// all little-endian. Files may hold any number of records and may be
// gzip-compressed (.sig.gz).
var sigMagic = [4]byte{'P', 'S', 'I', 'G'}

const sigVersion = 1

// maxIDLen and maxSamples bound a single record so a corrupt header cannot
// trigger a huge allocation.
const (
	maxIDLen   = 4096
	maxSamples = 1 << 30
)

// ReadRecord decodes the next signal record from r. io.EOF signals a clean
// end of file; any other error means corruption.
func ReadRecord(r io.Reader) (*read.Read, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("sig header: %w", err)
	}
	if magic != sigMagic {
		return nil, fmt.Errorf("bad sig magic %q", magic[:])
	}
	var ver uint8
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("sig version: %w", err)
	}
	if ver != sigVersion {
		return nil, fmt.Errorf("unsupported sig version %d", ver)
	}
	var idLen uint32
	if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
		return nil, fmt.Errorf("sig id length: %w", err)
	}
	if idLen == 0 || idLen > maxIDLen {
		return nil, fmt.Errorf("implausible sig id length %d", idLen)
	}
	id := make([]byte, idLen)
	if _, err := io.ReadFull(r, id); err != nil {
		return nil, fmt.Errorf("sig id: %w", err)
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("sig sample count: %w", err)
	}
	if n > maxSamples {
		return nil, fmt.Errorf("implausible sig sample count %d", n)
	}
	sig := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, sig); err != nil {
		return nil, fmt.Errorf("sig samples: %w", err)
	}
	return &read.Read{ID: string(id), Signal: sig}, nil
}

// WriteRecord encodes one signal record to w. Used by tests and by tooling
// that prepares read directories.
func WriteRecord(w io.Writer, id string, signal []float32) error {
	if _, err := w.Write(sigMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(sigVersion)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, id); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(signal))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, signal)
}
