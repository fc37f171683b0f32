// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults are file/env-supplied fallbacks for flags the user left unset.
// Precedence: flag > PORECALL_* environment > config file > built-in.
type Defaults struct {
	Device      string
	ChunkSize   int
	Overlap     int
	QueueSize   int
	Threads     int
	MaxReadSize int
	Beam        int
	MinCoverage float64
	MinAccuracy float64

	// Training capture geometry preset (applied when --save-training is set).
	TrainingChunkSize int
	TrainingOverlap   int
}

// Load reads defaults from an optional config file and the environment.
// path == "" means no file; a named file that cannot be read is an error.
func Load(path string) (Defaults, error) {
	v := viper.New()
	v.SetEnvPrefix("PORECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("device", "cpu")
	v.SetDefault("chunksize", 4000)
	v.SetDefault("overlap", 400)
	v.SetDefault("queue-size", 64)
	v.SetDefault("threads", 0)
	v.SetDefault("max-read-size", 4_000_000)
	v.SetDefault("beam", 5)
	v.SetDefault("min-coverage", 0.9)
	v.SetDefault("min-accuracy", 0.9)
	v.SetDefault("training.chunksize", 3600)
	v.SetDefault("training.overlap", 900)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Defaults{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return Defaults{
		Device:            v.GetString("device"),
		ChunkSize:         v.GetInt("chunksize"),
		Overlap:           v.GetInt("overlap"),
		QueueSize:         v.GetInt("queue-size"),
		Threads:           v.GetInt("threads"),
		MaxReadSize:       v.GetInt("max-read-size"),
		Beam:              v.GetInt("beam"),
		MinCoverage:       v.GetFloat64("min-coverage"),
		MinAccuracy:       v.GetFloat64("min-accuracy"),
		TrainingChunkSize: v.GetInt("training.chunksize"),
		TrainingOverlap:   v.GetInt("training.overlap"),
	}, nil
}
