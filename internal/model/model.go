// internal/model/model.go
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scorer is the opaque scoring stage: a batch of fixed-length windows in,
// per-window posterior matrices out. Stride is the model's temporal
// downsampling factor; Alphabet lists output symbols with the blank first.
// A scoring failure is fatal to the run, so implementations never retry.
type Scorer interface {
	Score(ctx context.Context, chunks [][]float32) ([][][]float32, error)
	Stride() int
	Alphabet() []byte
	Close() error
}

// Config selects the execution context forwarded to the model runner.
type Config struct {
	Device string
	Half   bool
	Beam   int
}

// Info is the model directory's metadata (model.json).
type Info struct {
	Type     string   `json:"type"`               // "exec" or "flat"
	Stride   int      `json:"stride"`
	Alphabet string   `json:"alphabet"`           // blank symbol first
	Runner   []string `json:"runner,omitempty"`   // exec: argv relative to the model dir
}

// LoadInfo parses and validates model.json in dir.
func LoadInfo(dir string) (Info, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "model.json"))
	if err != nil {
		return Info{}, fmt.Errorf("model metadata: %w", err)
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return Info{}, fmt.Errorf("model metadata: %w", err)
	}
	if info.Stride <= 0 {
		return Info{}, fmt.Errorf("model metadata: stride must be > 0 (got %d)", info.Stride)
	}
	if len(info.Alphabet) < 2 {
		return Info{}, fmt.Errorf("model metadata: alphabet %q too short", info.Alphabet)
	}
	return info, nil
}

// Load opens the scorer described by dir/model.json.
func Load(dir string, cfg Config) (Scorer, error) {
	info, err := LoadInfo(dir)
	if err != nil {
		return nil, err
	}
	switch info.Type {
	case "flat":
		return NewFlat(info), nil
	case "exec":
		return NewExec(dir, info, cfg)
	default:
		return nil, fmt.Errorf("unknown model type %q", info.Type)
	}
}
