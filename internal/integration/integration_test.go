// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"porecall/internal/app"
	"porecall/internal/reads"
)

func makeModel(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	meta := `{"type":"flat","stride":5,"alphabet":"NACGT"}`
	if err := os.WriteFile(filepath.Join(dir, "model.json"), []byte(meta), 0644); err != nil {
		t.Fatalf("write model.json: %v", err)
	}
	return dir
}

func makeReads(t *testing.T, ids []string, samples int) string {
	t.Helper()
	dir := t.TempDir()
	for _, id := range ids {
		sig := make([]float32, samples)
		for i := range sig {
			sig[i] = float32((i + len(id)) % 7)
		}
		f, err := os.Create(filepath.Join(dir, id+".sig"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := reads.WriteRecord(f, id, sig); err != nil {
			t.Fatalf("write record: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	return dir
}

func TestEndToEnd_WritesCalls(t *testing.T) {
	model := makeModel(t)
	rd := makeReads(t, []string{"r1", "r2"}, 100)

	var out, errBuf bytes.Buffer
	code := app.Run([]string{model, rd, "--write-calls", "--quiet"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errBuf.String())
	}
	got := out.String()
	if !strings.Contains(got, ">r1\n") || !strings.Contains(got, ">r2\n") {
		t.Fatalf("missing FASTA records:\n%s", got)
	}
}

func TestEndToEnd_FASTQ(t *testing.T) {
	model := makeModel(t)
	rd := makeReads(t, []string{"r1"}, 60)

	var out, errBuf bytes.Buffer
	code := app.Run([]string{model, rd, "--write-calls", "--fastq", "--quiet"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errBuf.String())
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "@r1" || lines[2] != "+" {
		t.Fatalf("not a FASTQ record:\n%s", out.String())
	}
	if len(lines[1]) != len(lines[3]) {
		t.Fatalf("sequence/quality length mismatch: %q vs %q", lines[1], lines[3])
	}
}

func TestEndToEnd_PostDump(t *testing.T) {
	model := makeModel(t)
	rd := makeReads(t, []string{"r1", "r2"}, 100)
	post := filepath.Join(t.TempDir(), "post.f32")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{model, rd, "--post", post, "--quiet"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d, stderr=%s", code, errBuf.String())
	}
	// stride 5, 100 samples -> 20 rows; alphabet NACGT -> 5 cols; 2 reads.
	st, err := os.Stat(post)
	if err != nil {
		t.Fatalf("stat dump: %v", err)
	}
	if want := int64(2 * 20 * 5 * 4); st.Size() != want {
		t.Fatalf("dump size %d, want %d", st.Size(), want)
	}
	idx, err := os.ReadFile(post + ".idx.jsonl")
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if n := strings.Count(string(idx), "\n"); n != 2 {
		t.Fatalf("index lines %d, want 2", n)
	}
}

func TestSaveTraining_RequiresReference(t *testing.T) {
	model := makeModel(t)
	rd := makeReads(t, []string{"r1"}, 60)

	var out, errBuf bytes.Buffer
	code := app.Run([]string{model, rd, "--save-training", "--quiet"}, &out, &errBuf)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.Contains(errBuf.String(), "reference") {
		t.Fatalf("unexpected stderr: %s", errBuf.String())
	}
}

func TestNoSink_IsUsageError(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"m", "r"}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
}

func TestBadModelDir_Exit1(t *testing.T) {
	rd := makeReads(t, []string{"r1"}, 60)

	var out, errBuf bytes.Buffer
	code := app.Run([]string{t.TempDir(), rd, "--write-calls", "--quiet"}, &out, &errBuf)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
}

func TestVersionFlag(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"--version"}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out.String(), "porecall version") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
