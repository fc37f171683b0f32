// internal/writers/callpool.go
package writers

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// CallItem is one finished read handed to the call writer pool.
type CallItem struct {
	ID   string
	Post [][]float32
}

// DecodeFunc turns a posterior matrix into a base sequence with per-base
// qualities. The decoding algorithm is a collaborator; the pool only runs it.
type DecodeFunc func(post [][]float32) (seq, quals []byte, err error)

// StartCallPool starts `workers` goroutines that each pull items from a
// shared bounded queue, decode them and serialize FASTA/FASTQ records to out.
// First-available-worker semantics: output order is not guaranteed.
//
// A failure on one item is surfaced with the read's ID and that item is
// dropped; the pool keeps consuming. Only output I/O failures are terminal,
// and even then the queue is drained so the sender never hangs.
func StartCallPool(out io.Writer, dec DecodeFunc, fastq bool, workers, bufSize int, log zerolog.Logger) (chan<- CallItem, <-chan error) {
	if workers < 1 {
		workers = 1
	}
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan CallItem, bufSize)
	done := make(chan error, 1)

	var (
		mu     sync.Mutex
		outErr error
	)
	writeRecord := func(id string, seq, quals []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if outErr != nil {
			return outErr
		}
		var err error
		if fastq {
			_, err = fmt.Fprintf(out, "@%s\n%s\n+\n%s\n", id, seq, quals)
		} else {
			_, err = fmt.Fprintf(out, ">%s\n%s\n", id, seq)
		}
		if err != nil {
			outErr = err
		}
		return err
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for item := range in {
				seq, quals, err := dec(item.Post)
				if err != nil {
					log.Error().Str("read", item.ID).Err(err).
						Msg("dropping call: decode failed")
					continue
				}
				if len(seq) == 0 {
					log.Warn().Str("read", item.ID).Msg("dropping call: empty sequence")
					continue
				}
				if err := writeRecord(item.ID, seq, quals); err != nil {
					// Terminal: stop writing but keep draining.
					continue
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		mu.Lock()
		err := outErr
		mu.Unlock()
		if IsBrokenPipe(err) {
			err = nil
		}
		done <- err
	}()

	return in, done
}
