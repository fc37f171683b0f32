package writers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func okDecode(post [][]float32) ([]byte, []byte, error) {
	seq := bytes.Repeat([]byte{'A'}, len(post))
	quals := bytes.Repeat([]byte{'#'}, len(post))
	return seq, quals, nil
}

func post(rows int) [][]float32 {
	p := make([][]float32, rows)
	for i := range p {
		p[i] = []float32{1, 0}
	}
	return p
}

func TestCallPool_WritesAllItems(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartCallPool(&buf, okDecode, false, 3, 4, zerolog.Nop())
	for i := 0; i < 10; i++ {
		in <- CallItem{ID: fmt.Sprintf("r%d", i), Post: post(5)}
	}
	close(in)
	if err := <-errCh; err != nil {
		t.Fatalf("pool: %v", err)
	}
	if got := strings.Count(buf.String(), ">"); got != 10 {
		t.Fatalf("wrote %d records, want 10", got)
	}
}

func TestCallPool_FASTQRecords(t *testing.T) {
	var buf bytes.Buffer
	in, errCh := StartCallPool(&buf, okDecode, true, 1, 1, zerolog.Nop())
	in <- CallItem{ID: "r1", Post: post(4)}
	close(in)
	if err := <-errCh; err != nil {
		t.Fatalf("pool: %v", err)
	}
	want := "@r1\nAAAA\n+\n####\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestCallPool_ItemFailureDoesNotKillPool(t *testing.T) {
	flaky := func(p [][]float32) ([]byte, []byte, error) {
		if len(p) == 1 {
			return nil, nil, errors.New("bad item")
		}
		return okDecode(p)
	}
	var buf bytes.Buffer
	in, errCh := StartCallPool(&buf, flaky, false, 2, 2, zerolog.Nop())
	in <- CallItem{ID: "good1", Post: post(5)}
	in <- CallItem{ID: "bad", Post: post(1)}
	in <- CallItem{ID: "good2", Post: post(5)}
	close(in)
	if err := <-errCh; err != nil {
		t.Fatalf("per-item failure must not be terminal: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, ">good1") || !strings.Contains(out, ">good2") {
		t.Fatalf("surviving items missing: %q", out)
	}
	if strings.Contains(out, "bad") {
		t.Fatalf("failed item written: %q", out)
	}
}

type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("disk full")
}

func TestCallPool_OutputErrorDrainsQueue(t *testing.T) {
	in, errCh := StartCallPool(&failWriter{}, okDecode, false, 1, 1, zerolog.Nop())
	for i := 0; i < 50; i++ {
		in <- CallItem{ID: "r", Post: post(3)} // must not hang
	}
	close(in)
	if err := <-errCh; err == nil {
		t.Fatal("output failure not surfaced")
	}
}
