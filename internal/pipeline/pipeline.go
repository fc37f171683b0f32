// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"porecall-core/chunk"
	"porecall-core/read"
	"porecall-core/stitch"

	"porecall/internal/reads"
)

// Scorer is the slice of the model contract the loop needs.
type Scorer interface {
	Score(ctx context.Context, chunks [][]float32) ([][][]float32, error)
	Stride() int
}

// Config controls the streaming core.
type Config struct {
	ChunkSize   int
	Overlap     int
	MaxReadSize int // reads longer than this are skipped, not fatal
	QueueSize   int // ingestion queue capacity
}

// Call is one finished read: the read plus its stitched posterior truncated
// to the read's true post-stride length.
type Call struct {
	Read *read.Read
	Post [][]float32
}

// Training is the raw material for one read's training capture: the chunk
// windows and the unstitched per-chunk posteriors.
type Training struct {
	ReadID string
	Chunks [][]float32
	Post   [][][]float32
}

// Sinks are the fan-out targets. A nil function disables that sink. Each
// send must block until the sink has capacity; errors abort the run.
type Sinks struct {
	Calls    func(Call) error
	Training func(Training) error
	// PostDump receives the full (untruncated) stitched posterior of every
	// accepted read, in processing order.
	PostDump func(readID string, post [][]float32) error
}

// Stats are the run counters, owned exclusively by the scoring loop.
type Stats struct {
	Reads   int
	Samples int64
	Skipped int
}

// Run streams src to exhaustion. A scorer or sink failure is fatal and
// returns immediately after the ingestion goroutine is released; oversized
// reads are skipped with a diagnostic. Returns the counters either way.
func Run(ctx context.Context, cfg Config, src reads.Source, sc Scorer, sinks Sinks, log zerolog.Logger) (Stats, error) {
	var stats Stats

	if err := chunk.Validate(cfg.ChunkSize, cfg.Overlap); err != nil {
		return stats, err
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Ingestion stage: decouples slow read decoding from scoring. Closing
	// the channel is the end-of-stream sentinel.
	readCh := make(chan *read.Read, cfg.QueueSize)
	srcErr := make(chan error, 1)
	go func() {
		defer close(readCh)
		for {
			r, err := src.Next(ctx)
			if err != nil {
				if errors.Is(err, io.EOF) {
					srcErr <- nil
				} else {
					srcErr <- fmt.Errorf("read source: %w", err)
				}
				return
			}
			select {
			case readCh <- r:
			case <-ctx.Done():
				srcErr <- ctx.Err()
				return
			}
		}
	}()

	trim := cfg.Overlap / sc.Stride() / 2

	var runErr error
loop:
	for r := range readCh {
		if cfg.MaxReadSize > 0 && r.Len() > cfg.MaxReadSize {
			log.Warn().Str("read", r.ID).Int("samples", r.Len()).
				Msg("skipping long read")
			stats.Skipped++
			continue
		}

		batch := chunk.Split(r.Signal, cfg.ChunkSize, cfg.Overlap)
		post, err := sc.Score(ctx, batch.Windows)
		if err != nil {
			runErr = fmt.Errorf("score read %s: %w", r.ID, err)
			break loop
		}
		stitched := stitch.Stitch(post, trim)

		stats.Reads++
		stats.Samples += int64(r.Len())

		if sinks.Calls != nil {
			truncated := stitch.Truncate(stitched, r.Len(), sc.Stride())
			if err := sinks.Calls(Call{Read: r, Post: truncated}); err != nil {
				runErr = fmt.Errorf("dispatch call %s: %w", r.ID, err)
				break loop
			}
		}
		// Single-chunk reads carry no overlap structure worth training on.
		if sinks.Training != nil && batch.Chunked() {
			t := Training{ReadID: r.ID, Chunks: batch.Windows, Post: post}
			if err := sinks.Training(t); err != nil {
				runErr = fmt.Errorf("dispatch training %s: %w", r.ID, err)
				break loop
			}
		}
		if sinks.PostDump != nil {
			if err := sinks.PostDump(r.ID, stitched); err != nil {
				runErr = fmt.Errorf("dump posteriors %s: %w", r.ID, err)
				break loop
			}
		}
	}

	// Release and join the producer before reporting, so a fatal error
	// still leaves no goroutine blocked on the queue.
	cancel()
	for range readCh {
	}
	if err := <-srcErr; runErr == nil && err != nil && !errors.Is(err, context.Canceled) {
		runErr = err
	}
	if runErr == nil && parent.Err() != nil {
		runErr = parent.Err()
	}
	return stats, runErr
}
