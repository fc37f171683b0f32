// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/shenwei356/xopen"

	"porecall-core/chunk"
	"porecall-core/decode"
	"porecall/internal/align"
	"porecall/internal/cli"
	"porecall/internal/config"
	"porecall/internal/logging"
	"porecall/internal/model"
	"porecall/internal/pipeline"
	"porecall/internal/reads"
	"porecall/internal/runutil"
	"porecall/internal/version"
	"porecall/internal/writers"
)

// RunContext wires flags, config, model, aligner, source, pipeline and sinks
// together and maps the outcome to a process exit code:
//
//	0   success
//	1   setup refused (missing reference, model/aligner load failure)
//	2   usage or configuration error
//	3   I/O or runtime failure
//	130 interrupted
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("porecall")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(stdout)
		fs.Usage()
		return 0
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return 2
	}
	if opts.Version {
		_, _ = fmt.Fprintf(stdout, "porecall version %s\n", version.Version)
		return 0
	}

	log := logging.New(stderr, opts.LogLevel, opts.Quiet)

	defaults, err := config.Load(opts.ConfigFile)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	fillDefaults(&opts, defaults)

	// Refuse training capture without a reference before anything expensive
	// is loaded.
	if opts.SaveTraining && opts.Reference == "" {
		_, _ = fmt.Fprintln(stderr, "error: --save-training requires --reference")
		return 1
	}

	size, overlap, warns := runutil.ApplyTrainingPreset(
		opts.SaveTraining, opts.ChunkSize, opts.Overlap,
		defaults.TrainingChunkSize, defaults.TrainingOverlap)
	for _, w := range warns {
		log.Warn().Msg(w)
	}
	if size == 0 {
		size = defaults.ChunkSize
	}
	if overlap == 0 {
		overlap = defaults.Overlap
	}
	if err := chunk.Validate(size, overlap); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	scorer, err := model.Load(opts.ModelDir, model.Config{Device: opts.Device, Half: opts.Half, Beam: opts.Beam})
	if err != nil {
		log.Error().Err(err).Str("model", opts.ModelDir).Msg("model load failed")
		return 1
	}
	defer func() { _ = scorer.Close() }()

	var aligner align.Aligner
	if opts.Reference != "" {
		mm, aerr := align.NewMinimap(opts.Reference, opts.Threads)
		if aerr != nil {
			log.Error().Err(aerr).Str("reference", opts.Reference).Msg("reference load failed")
			return 1
		}
		aligner = mm
		log.Info().Str("reference", opts.Reference).Msg("reference loaded")
	}

	var ids map[string]struct{}
	if opts.ReadIDs != "" {
		ids, err = reads.LoadIDSet(opts.ReadIDs)
		if err != nil {
			log.Error().Err(err).Msg("read-id list load failed")
			return 3
		}
	}
	src, err := reads.OpenDir(opts.ReadsDir, reads.DirOptions{IDs: ids, Skip: opts.Skip})
	if err != nil {
		log.Error().Err(err).Str("dir", opts.ReadsDir).Msg("reads directory open failed")
		return 3
	}
	defer func() { _ = src.Close() }()

	alphabet := scorer.Alphabet()
	dec := func(post [][]float32) ([]byte, []byte, error) {
		seq, quals := decode.Greedy(post, alphabet)
		return seq, quals, nil
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	queue := runutil.EffectiveQueue(opts.QueueSize)

	// Sinks. Each failure after this point must still shut every sink down,
	// so closers are collected and run after the writer goroutines join.
	var closers []func() error

	var (
		callCh  chan<- writers.CallItem
		callErr <-chan error
	)
	if opts.WriteCalls {
		var out io.Writer
		if opts.Output == "" || opts.Output == "-" {
			bw := bufio.NewWriter(stdout)
			out = bw
			closers = append(closers, bw.Flush)
		} else {
			f, oerr := xopen.Wopen(opts.Output)
			if oerr != nil {
				log.Error().Err(oerr).Str("path", opts.Output).Msg("call output open failed")
				return 3
			}
			out = f
			closers = append(closers, f.Close)
		}
		callCh, callErr = writers.StartCallPool(out, dec, opts.FASTQ, threads, queue,
			logging.Component(log, "calls"))
	}

	var (
		trainCh  chan<- writers.TrainingItem
		trainErr <-chan error
	)
	if opts.SaveTraining {
		f, oerr := xopen.Wopen(opts.TrainingFile)
		if oerr != nil {
			log.Error().Err(oerr).Str("path", opts.TrainingFile).Msg("training output open failed")
			return 3
		}
		closers = append(closers, f.Close)
		trainCh, trainErr = writers.StartTrainingWriter(f, aligner, dec,
			opts.MinCoverage, opts.MinAccuracy, queue, logging.Component(log, "training"))
	}

	var dump *writers.Dump
	if opts.PostFile != "" {
		pf, oerr := os.Create(opts.PostFile)
		if oerr != nil {
			log.Error().Err(oerr).Str("path", opts.PostFile).Msg("posterior dump open failed")
			return 3
		}
		closers = append(closers, pf.Close)
		xf, oerr := os.Create(opts.PostFile + ".idx.jsonl")
		if oerr != nil {
			log.Error().Err(oerr).Msg("posterior index open failed")
			return 3
		}
		closers = append(closers, xf.Close)
		dump = writers.NewDump(pf, xf)
	}

	var sinks pipeline.Sinks
	if callCh != nil {
		sinks.Calls = func(c pipeline.Call) error {
			select {
			case callCh <- writers.CallItem{ID: c.Read.ID, Post: c.Post}:
				return nil
			case <-parent.Done():
				return parent.Err()
			}
		}
	}
	if trainCh != nil {
		sinks.Training = func(t pipeline.Training) error {
			select {
			case trainCh <- writers.TrainingItem{ReadID: t.ReadID, Chunks: t.Chunks, Post: t.Post}:
				return nil
			case <-parent.Done():
				return parent.Err()
			}
		}
	}
	if dump != nil {
		sinks.PostDump = func(id string, post [][]float32) error {
			return dump.Append(id, post)
		}
	}

	cfg := pipeline.Config{
		ChunkSize:   size,
		Overlap:     overlap,
		MaxReadSize: opts.MaxReadSize,
		QueueSize:   queue,
	}
	log.Info().
		Str("model", opts.ModelDir).Str("reads", opts.ReadsDir).
		Int("chunksize", size).Int("overlap", overlap).
		Int("stride", scorer.Stride()).Int("beam", opts.Beam).
		Str("device", opts.Device).
		Msg("starting run")

	start := time.Now()
	stats, runErr := pipeline.Run(parent, cfg, src, scorer, sinks, logging.Component(log, "pipeline"))

	// Close sink queues and join the writer goroutines, then release the
	// underlying files, regardless of how the run ended.
	sinkFailed := false
	if callCh != nil {
		close(callCh)
		if werr := <-callErr; werr != nil {
			log.Error().Err(werr).Msg("call writer failed")
			sinkFailed = true
		}
	}
	if trainCh != nil {
		close(trainCh)
		if werr := <-trainErr; werr != nil {
			log.Error().Err(werr).Msg("training writer failed")
			sinkFailed = true
		}
	}
	if dump != nil {
		if werr := dump.Close(); werr != nil {
			log.Error().Err(werr).Msg("posterior dump failed")
			sinkFailed = true
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i](); cerr != nil && !writers.IsBrokenPipe(cerr) {
			log.Error().Err(cerr).Msg("output close failed")
			sinkFailed = true
		}
	}

	switch {
	case errors.Is(runErr, context.Canceled):
		log.Warn().Msg("interrupted")
		return 130
	case runErr != nil:
		log.Error().Err(runErr).Msg("run failed")
		return 3
	case sinkFailed:
		return 3
	}

	elapsed := time.Since(start)
	log.Info().
		Int("reads", stats.Reads).Int("skipped", stats.Skipped).
		Int64("samples", stats.Samples).
		Dur("elapsed", elapsed).
		Float64("samples_per_sec", float64(stats.Samples)/elapsed.Seconds()).
		Msg("run complete")
	return 0
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func fillDefaults(o *cli.Options, d config.Defaults) {
	if o.Device == "" {
		o.Device = d.Device
	}
	if o.MaxReadSize == 0 {
		o.MaxReadSize = d.MaxReadSize
	}
	if o.QueueSize == 0 {
		o.QueueSize = d.QueueSize
	}
	if o.Threads == 0 {
		o.Threads = d.Threads
	}
	if o.Beam == 0 {
		o.Beam = d.Beam
	}
	if o.MinCoverage < 0 {
		o.MinCoverage = d.MinCoverage
	}
	if o.MinAccuracy < 0 {
		o.MinAccuracy = d.MinAccuracy
	}
}
