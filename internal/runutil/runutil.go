// internal/runutil/runutil.go
package runutil

import "fmt"

// ApplyTrainingPreset returns the effective chunk geometry. When training
// capture is enabled the preset geometry wins: captured chunks must share one
// fixed shape across the whole run, so user-supplied values are overridden
// and a warning is returned for each override.
func ApplyTrainingPreset(save bool, size, overlap, presetSize, presetOverlap int) (int, int, []string) {
	if !save {
		return size, overlap, nil
	}
	var warns []string
	if size != 0 && size != presetSize {
		warns = append(warns, fmt.Sprintf("warning: --save-training forces --chunksize %d (ignoring %d)", presetSize, size))
	}
	if overlap != 0 && overlap != presetOverlap {
		warns = append(warns, fmt.Sprintf("warning: --save-training forces --overlap %d (ignoring %d)", presetOverlap, overlap))
	}
	return presetSize, presetOverlap, warns
}

// EffectiveQueue clamps a queue capacity to a sane floor.
func EffectiveQueue(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
