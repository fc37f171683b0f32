package chunk

import "testing"

func ramp(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i)
	}
	return s
}

func TestValidate(t *testing.T) {
	cases := []struct {
		size, overlap int
		ok            bool
	}{
		{3600, 900, true},
		{1, 0, true},
		{0, 0, false},
		{-4, 0, false},
		{100, 100, false},
		{100, 101, false},
		{100, -1, false},
	}
	for _, c := range cases {
		err := Validate(c.size, c.overlap)
		if (err == nil) != c.ok {
			t.Fatalf("Validate(%d,%d) = %v, want ok=%v", c.size, c.overlap, err, c.ok)
		}
	}
}

func TestSplit_ShortSignalSingleWindow(t *testing.T) {
	sig := ramp(120)
	b := Split(sig, 3600, 900)
	if len(b.Windows) != 1 || len(b.Windows[0]) != 120 {
		t.Fatalf("want single whole-signal window, got %d windows", len(b.Windows))
	}
	if b.Chunked() {
		t.Fatal("single window must not report Chunked")
	}
	if b.Starts[0] != 0 || b.SignalLen != 120 {
		t.Fatalf("bad metadata: starts=%v len=%d", b.Starts, b.SignalLen)
	}
}

func TestSplit_ExactSizeSingleWindow(t *testing.T) {
	b := Split(ramp(3600), 3600, 900)
	if len(b.Windows) != 1 {
		t.Fatalf("signal equal to chunk size: want 1 window, got %d", len(b.Windows))
	}
}

func TestSplit_TrainingGeometry(t *testing.T) {
	// L=3600 V=900 N=10000: starts 0, 2700, 5400, then 6400 so the final
	// window ends exactly at 10000.
	b := Split(ramp(10000), 3600, 900)
	want := []int{0, 2700, 5400, 6400}
	if len(b.Starts) != len(want) {
		t.Fatalf("want %d windows, got %d (%v)", len(want), len(b.Starts), b.Starts)
	}
	for i, s := range want {
		if b.Starts[i] != s {
			t.Fatalf("start[%d] = %d, want %d", i, b.Starts[i], s)
		}
		if len(b.Windows[i]) != 3600 {
			t.Fatalf("window %d has %d samples, want 3600", i, len(b.Windows[i]))
		}
	}
	if end := b.Starts[3] + 3600; end != 10000 {
		t.Fatalf("final window ends at %d, want 10000", end)
	}
}

func TestSplit_CoversSignalWithoutGaps(t *testing.T) {
	cases := []struct{ n, size, overlap int }{
		{10, 100, 10},
		{100, 100, 50},
		{101, 100, 50},
		{10000, 3600, 900},
		{4321, 500, 499},
		{999, 100, 0},
		{1000, 100, 0},
	}
	for _, c := range cases {
		b := Split(ramp(c.n), c.size, c.overlap)
		covered := make([]bool, c.n)
		for i, w := range b.Windows {
			for j := range w {
				covered[b.Starts[i]+j] = true
			}
			// windows carry the right slice of the signal
			if w[0] != float32(b.Starts[i]) {
				t.Fatalf("n=%d: window %d starts with sample %v, want %d", c.n, i, w[0], b.Starts[i])
			}
		}
		for i, ok := range covered {
			if !ok {
				t.Fatalf("n=%d size=%d overlap=%d: sample %d uncovered", c.n, c.size, c.overlap, i)
			}
		}
	}
}

func TestSplit_EqualLengthWindows(t *testing.T) {
	b := Split(ramp(7777), 512, 128)
	for i, w := range b.Windows {
		if len(w) != 512 {
			t.Fatalf("window %d: %d samples, want 512", i, len(w))
		}
	}
}
