// internal/model/exec.go
package model

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
)

// Exec scores batches through a long-lived model runner subprocess speaking a
// framed little-endian protocol on stdin/stdout:
//
//	request:  chunkCount u32 | chunkLen u32 | f32 × count×len
//	response: chunkCount u32 | rows u32 | cols u32 | f32 × count×rows×cols
//
// The runner owns the weights, the device, the numeric precision and the
// decoder search; device, precision and beam width are forwarded as
// arguments at launch.
type Exec struct {
	info Info

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr bytes.Buffer
}

// runnerArgv builds the runner command line: the declared argv resolved
// relative to the model directory, plus the forwarded execution options.
func runnerArgv(dir string, info Info, cfg Config) []string {
	argv := append([]string(nil), info.Runner...)
	if !filepath.IsAbs(argv[0]) {
		argv[0] = filepath.Join(dir, argv[0])
	}
	if cfg.Device != "" {
		argv = append(argv, "--device", cfg.Device)
	}
	if cfg.Half {
		argv = append(argv, "--half")
	}
	if cfg.Beam > 0 {
		argv = append(argv, "--beam", strconv.Itoa(cfg.Beam))
	}
	return argv
}

// NewExec launches the runner declared in model.json.
func NewExec(dir string, info Info, cfg Config) (*Exec, error) {
	if len(info.Runner) == 0 {
		return nil, fmt.Errorf("model %s: exec model without runner", dir)
	}
	argv := runnerArgv(dir, info, cfg)

	e := &Exec{info: info}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stderr = &e.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("model runner stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("model runner stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start model runner: %w", err)
	}
	e.cmd, e.stdin, e.stdout = cmd, stdin, bufio.NewReaderSize(stdout, 1<<20)
	return e, nil
}

func (e *Exec) Stride() int      { return e.info.Stride }
func (e *Exec) Alphabet() []byte { return []byte(e.info.Alphabet) }

func (e *Exec) Score(ctx context.Context, chunks [][]float32) ([][][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	bw := bufio.NewWriterSize(e.stdin, 1<<20)
	hdr := [2]uint32{uint32(len(chunks)), uint32(len(chunks[0]))}
	if err := binary.Write(bw, binary.LittleEndian, hdr[:]); err != nil {
		return nil, e.runnerErr(err)
	}
	for _, c := range chunks {
		if err := binary.Write(bw, binary.LittleEndian, c); err != nil {
			return nil, e.runnerErr(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, e.runnerErr(err)
	}

	var rhdr [3]uint32
	if err := binary.Read(e.stdout, binary.LittleEndian, rhdr[:]); err != nil {
		return nil, e.runnerErr(err)
	}
	count, rows, cols := int(rhdr[0]), int(rhdr[1]), int(rhdr[2])
	if count != len(chunks) {
		return nil, fmt.Errorf("model runner returned %d posteriors for %d chunks", count, len(chunks))
	}
	out := make([][][]float32, count)
	for i := range out {
		flat := make([]float32, rows*cols)
		if err := binary.Read(e.stdout, binary.LittleEndian, flat); err != nil {
			return nil, e.runnerErr(err)
		}
		p := make([][]float32, rows)
		for r := 0; r < rows; r++ {
			p[r] = flat[r*cols : (r+1)*cols]
		}
		out[i] = p
	}
	return out, nil
}

func (e *Exec) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil {
		return nil
	}
	_ = e.stdin.Close()
	err := e.cmd.Wait()
	e.cmd = nil
	if err != nil {
		return fmt.Errorf("model runner exit: %w", e.withStderr(err))
	}
	return nil
}

func (e *Exec) runnerErr(err error) error {
	return fmt.Errorf("model runner: %w", e.withStderr(err))
}

func (e *Exec) withStderr(err error) error {
	if msg := bytes.TrimSpace(e.stderr.Bytes()); len(msg) > 0 {
		return fmt.Errorf("%w (runner stderr: %s)", err, msg)
	}
	return err
}
