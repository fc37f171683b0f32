// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"porecall/internal/cliutil"
	"porecall/internal/version"
)

// Options holds all CLI flags and arguments. Zero/negative sentinel values
// mean "not set"; the app layer fills those from config defaults.
type Options struct {
	// Positionals
	ModelDir string
	ReadsDir string

	// Read selection
	Reference string
	ReadIDs   string
	Skip      int

	// Scoring
	Device    string
	Half      bool
	ChunkSize int
	Overlap   int
	Beam      int

	// Pipeline
	MaxReadSize int
	QueueSize   int
	Threads     int

	// Outputs
	WriteCalls bool
	FASTQ      bool
	Output     string
	PostFile   string

	// Training capture
	SaveTraining bool
	TrainingFile string
	MinCoverage  float64
	MinAccuracy  float64

	// Misc
	ConfigFile string
	LogLevel   string
	Quiet      bool
	Version    bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: chunked-inference basecaller

Version: %s

Usage:
  %s [flags] MODEL_DIR READS_DIR
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Positionals (MODEL_DIR, READS_DIR) may be interleaved with flags.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Read selection
	fs.StringVar(&opt.Reference, "reference", "", "reference FASTA for alignment scoring [none]")
	fs.StringVar(&opt.ReadIDs, "read-ids", "", "file whose first column lists read IDs to keep [all]")
	fs.IntVar(&opt.Skip, "skip", 0, "skip the first N reads [0]")

	// Scoring
	fs.StringVar(&opt.Device, "device", "", "execution device passed to the model runner [cpu]")
	fs.BoolVar(&opt.Half, "half", false, "half-precision scoring [false]")
	fs.IntVar(&opt.ChunkSize, "chunksize", 0, "chunk size in samples (0 = config default) [4000]")
	fs.IntVar(&opt.Overlap, "overlap", 0, "chunk overlap in samples (0 = config default) [400]")
	fs.IntVar(&opt.Beam, "beam", 0, "beam width forwarded to the model runner (0 = config default) [5]")

	// Pipeline
	fs.IntVar(&opt.MaxReadSize, "max-read-size", 0, "skip reads longer than N samples (0 = config default) [4000000]")
	fs.IntVar(&opt.QueueSize, "queue-size", 0, "ingestion queue capacity (0 = config default) [64]")
	fs.IntVar(&opt.Threads, "threads", 0, "call writer workers (0 = all CPUs) [0]")

	// Outputs
	fs.BoolVar(&opt.WriteCalls, "write-calls", false, "emit basecalled sequences [false]")
	fs.BoolVar(&opt.FASTQ, "fastq", false, "emit FASTQ instead of FASTA [false]")
	fs.StringVar(&opt.Output, "output", "-", "call output file ('-' = stdout, .gz compresses) [-]")
	fs.StringVar(&opt.PostFile, "post", "", "append raw stitched posteriors to this file [none]")

	// Training capture
	fs.BoolVar(&opt.SaveTraining, "save-training", false, "capture aligned training chunks (needs --reference) [false]")
	fs.StringVar(&opt.TrainingFile, "training-file", "training.gob.zst", "training capture output [training.gob.zst]")
	fs.Float64Var(&opt.MinCoverage, "min-coverage", -1, "training filter: minimum alignment coverage [0.9]")
	fs.Float64Var(&opt.MinAccuracy, "min-accuracy", -1, "training filter: minimum alignment accuracy [0.9]")

	// Misc
	fs.StringVar(&opt.ConfigFile, "config", "", "YAML config file with flag defaults [none]")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug | info | warn | error [info]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "errors only [false]")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	if len(posArgs) != 2 {
		return opt, fmt.Errorf("expected MODEL_DIR and READS_DIR, got %d positional argument(s)", len(posArgs))
	}
	opt.ModelDir, opt.ReadsDir = posArgs[0], posArgs[1]

	// Validation
	switch {
	case opt.Skip < 0:
		return opt, errors.New("--skip must be ≥ 0")
	case opt.ChunkSize < 0:
		return opt, errors.New("--chunksize must be ≥ 0")
	case opt.Overlap < 0:
		return opt, errors.New("--overlap must be ≥ 0")
	case opt.Threads < 0:
		return opt, errors.New("--threads must be ≥ 0")
	case opt.QueueSize < 0:
		return opt, errors.New("--queue-size must be ≥ 0")
	case opt.MaxReadSize < 0:
		return opt, errors.New("--max-read-size must be ≥ 0")
	}
	if opt.MinCoverage > 1 || opt.MinAccuracy > 1 {
		return opt, errors.New("--min-coverage/--min-accuracy must be ≤ 1")
	}
	if !opt.WriteCalls && !opt.SaveTraining && opt.PostFile == "" {
		return opt, errors.New("no sink selected: use --write-calls, --save-training and/or --post")
	}
	return opt, nil
}
