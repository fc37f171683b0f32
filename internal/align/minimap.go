// internal/align/minimap.go
package align

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

const minimapExe = "minimap2"

// Minimap wraps the external minimap2 binary. Candidate segments are piped in
// as single-record FASTA on stdin and the first PAF line is scored. The
// constructor is the "successfully loaded" signal: a missing binary or an
// unreadable/empty reference fails the run before any read is processed.
type Minimap struct {
	ref     string
	threads int
	preset  string
}

func NewMinimap(ref string, threads int) (*Minimap, error) {
	if _, err := exec.LookPath(minimapExe); err != nil {
		return nil, fmt.Errorf("aligner: %w", err)
	}
	if threads < 1 {
		threads = 1
	}
	reader, err := fastx.NewDefaultReader(ref)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", ref, err)
	}
	rec, err := reader.Read()
	if err != nil || rec == nil || len(rec.Seq.Seq) == 0 {
		return nil, fmt.Errorf("reference %s: no sequences", ref)
	}
	return &Minimap{ref: ref, threads: threads, preset: "map-ont"}, nil
}

func (m *Minimap) Score(seq []byte) (Scores, bool) {
	cmd := exec.Command(minimapExe,
		"-x", m.preset, "-t", strconv.Itoa(m.threads), m.ref, "-")
	var fa bytes.Buffer
	fa.WriteString(">q\n")
	fa.Write(seq)
	fa.WriteByte('\n')
	cmd.Stdin = &fa

	out, err := cmd.Output()
	if err != nil {
		return Scores{}, false
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if s, ok := parsePAF(sc.Text()); ok {
			return s, true
		}
	}
	return Scores{}, false
}

// parsePAF extracts coverage and accuracy from one PAF line.
// Columns (0-based): 1 qlen, 2 qstart, 3 qend, 9 nmatch, 10 alnlen.
func parsePAF(line string) (Scores, bool) {
	f := strings.Split(line, "\t")
	if len(f) < 11 {
		return Scores{}, false
	}
	qlen, err1 := strconv.ParseFloat(f[1], 64)
	qstart, err2 := strconv.ParseFloat(f[2], 64)
	qend, err3 := strconv.ParseFloat(f[3], 64)
	nmatch, err4 := strconv.ParseFloat(f[9], 64)
	alen, err5 := strconv.ParseFloat(f[10], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return Scores{}, false
	}
	if qlen <= 0 || alen <= 0 {
		return Scores{}, false
	}
	return Scores{
		Coverage: (qend - qstart) / qlen,
		Accuracy: nmatch / alen,
	}, true
}
