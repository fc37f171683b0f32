// Package pipeline is the streaming core: an ingestion goroutine pulls reads
// from the source into a bounded queue, a single scoring loop windows each
// read, runs the scorer and stitches the per-chunk posteriors back into one
// continuous sequence, then fans the result out to the configured sinks.
//
// All coordination is bounded channels; a full queue blocks the producer and
// a full sink blocks the loop. That backpressure is the flow-control
// mechanism; nothing is dropped and nothing buffers unboundedly.
package pipeline
