package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"testing"
)

func TestIsBrokenPipe(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("disk full"), false},
		{io.ErrClosedPipe, true},
		{syscall.EPIPE, true},
		{syscall.ECONNRESET, true},
		{fmt.Errorf("write calls: %w", syscall.EPIPE), true},
		{&os.PathError{Op: "write", Path: "-", Err: syscall.ECONNRESET}, true},
		{io.ErrUnexpectedEOF, false},
	}
	for _, c := range cases {
		if got := IsBrokenPipe(c.err); got != c.want {
			t.Fatalf("IsBrokenPipe(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
