// Package writers holds the pipeline's sinks. Each sink is started as one or
// more goroutines behind a bounded channel via a Start function returning
// (chan<- T, <-chan error): the caller sends items, closes the channel as the
// end-of-stream sentinel, then receives the sink's terminal error. Every sink
// drains its queue even after an internal failure so the sender never hangs.
package writers
