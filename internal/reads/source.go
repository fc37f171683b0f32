// internal/reads/source.go
package reads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shenwei356/xopen"

	"porecall-core/read"

	"porecall/internal/runutil"
)

// Source produces a lazy, finite sequence of reads. Next returns io.EOF once
// the source is exhausted.
type Source interface {
	Next(ctx context.Context) (*read.Read, error)
	Close() error
}

// DirOptions select and filter reads during enumeration.
type DirOptions struct {
	// IDs restricts the stream to listed read IDs; nil keeps everything.
	IDs map[string]struct{}
	// Skip drops the first N reads that pass the ID filter.
	Skip int
	// DedupeCap bounds the duplicate-ID suppression window (0 = default).
	DedupeCap int
}

// DirSource walks a directory of .sig/.sig.gz files in name order and decodes
// reads lazily, one file open at a time. Duplicate read IDs are suppressed.
type DirSource struct {
	files []string
	opt   DirOptions

	cur     *xopen.Reader
	curName string
	seen    *runutil.LRUSet[string]
	skipped int
}

// OpenDir enumerates dir. An empty directory is not an error; the source is
// simply exhausted immediately.
func OpenDir(dir string, opt DirOptions) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reads directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".sig") || strings.HasSuffix(name, ".sig.gz") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return &DirSource{files: files, opt: opt, seen: runutil.NewLRUSet[string](opt.DedupeCap)}, nil
}

func (s *DirSource) Next(ctx context.Context) (*read.Read, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.cur == nil {
			if len(s.files) == 0 {
				return nil, io.EOF
			}
			name := s.files[0]
			s.files = s.files[1:]
			r, err := xopen.Ropen(name)
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
			s.cur, s.curName = r, name
		}
		rd, err := ReadRecord(s.cur)
		if errors.Is(err, io.EOF) {
			_ = s.cur.Close()
			s.cur = nil
			continue
		}
		if err != nil {
			_ = s.cur.Close()
			s.cur = nil
			return nil, fmt.Errorf("%s: %w", s.curName, err)
		}
		rd.Source = s.curName
		if s.opt.IDs != nil {
			if _, ok := s.opt.IDs[rd.ID]; !ok {
				continue
			}
		}
		if s.seen.Add(rd.ID) {
			continue
		}
		if s.skipped < s.opt.Skip {
			s.skipped++
			continue
		}
		return rd, nil
	}
}

func (s *DirSource) Close() error {
	if s.cur != nil {
		err := s.cur.Close()
		s.cur = nil
		return err
	}
	return nil
}

// LoadIDSet reads the first whitespace-delimited column of path into a set.
// Lines starting with '#' are skipped. An empty path yields a nil set.
func LoadIDSet(path string) (map[string]struct{}, error) {
	if path == "" {
		return nil, nil
	}
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("read-ids: %w", err)
	}
	defer r.Close()

	ids := make(map[string]struct{})
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			fields := strings.Fields(line)
			if len(fields) > 0 && !strings.HasPrefix(fields[0], "#") {
				ids[fields[0]] = struct{}{}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read-ids: %w", err)
		}
	}
	return ids, nil
}
