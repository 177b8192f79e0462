package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter fans one log write out to all its writers, used to mirror
// service logs to stdout and the rotated log file at the same time.
type CombinedWriter struct {
	Writers []io.Writer
	Err     error
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		cw.Writers = append(cw.Writers, w)
	}
	return cw
}

// Write writes to every writer, a failing writer does not stop the others.
func (cw CombinedWriter) Write(p []byte) (n int, err error) {
	n = 0
	for _, w := range cw.Writers {
		written, werr := w.Write(p)
		if werr != nil {
			err = multierr.Combine(err, werr)
			continue
		}
		n += written
	}
	return n, err
}
