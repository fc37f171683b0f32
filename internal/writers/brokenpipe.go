package writers

import (
	"errors"
	"io"
	"syscall"
)

// IsBrokenPipe reports whether an error means the consumer went away: a
// broken or closed pipe (calls piped into `head`), or a reset connection
// (output on a socket). Those end a run quietly rather than failing it.
func IsBrokenPipe(err error) bool {
	return err != nil &&
		(errors.Is(err, syscall.EPIPE) ||
			errors.Is(err, syscall.ECONNRESET) ||
			errors.Is(err, io.ErrClosedPipe))
}
