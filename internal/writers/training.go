// internal/writers/training.go
package writers

import (
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"porecall/internal/align"
)

// TrainingItem is one chunked read's raw capture material: the signal windows
// and their unstitched posteriors, index-aligned.
type TrainingItem struct {
	ReadID string
	Chunks [][]float32
	Post   [][][]float32
}

// TrainingRecord is one persisted example: a fixed-shape signal window, its
// raw posterior, the decoded labels and the alignment scores that admitted it.
type TrainingRecord struct {
	ReadID   string
	Chunk    []float32
	Post     [][]float32
	Labels   []byte
	Coverage float64
	Accuracy float64
}

// StartTrainingWriter starts the single-consumer training sink. Arrival order
// is preserved. Each chunk is decoded and scored against the aligner; chunks
// whose coverage and accuracy both clear the thresholds are appended to a
// zstd-compressed gob stream. Everything else is discarded silently: filter
// rejection is expected, not an error.
func StartTrainingWriter(out io.Writer, al align.Aligner, dec DecodeFunc, minCov, minAcc float64, bufSize int, log zerolog.Logger) (chan<- TrainingItem, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan TrainingItem, bufSize)
	done := make(chan error, 1)

	go func() {
		zw, err := zstd.NewWriter(out)
		if err != nil {
			for range in {
			}
			done <- err
			return
		}
		enc := gob.NewEncoder(zw)

		kept, seen := 0, 0
		for item := range in {
			if err != nil {
				continue
			}
			for i, post := range item.Post {
				seen++
				seq, _, derr := dec(post)
				if derr != nil || len(seq) == 0 {
					continue
				}
				sc, ok := al.Score(seq)
				if !ok || sc.Coverage < minCov || sc.Accuracy < minAcc {
					continue
				}
				rec := TrainingRecord{
					ReadID:   item.ReadID,
					Chunk:    item.Chunks[i],
					Post:     post,
					Labels:   seq,
					Coverage: sc.Coverage,
					Accuracy: sc.Accuracy,
				}
				if err = enc.Encode(&rec); err != nil {
					break
				}
				kept++
			}
		}
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		log.Debug().Int("kept", kept).Int("seen", seen).Msg("training capture finished")
		done <- err
	}()

	return in, done
}
