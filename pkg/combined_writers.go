package pkg

import "io"

// CombinedWriter fans writes out to all given writers, e.g. stdout plus a
// rotated log file.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: writers,
	}
}

func (w *CombinedWriter) Write(p []byte) (n int, err error) {
	for _, writer := range w.writers {
		if n, err = writer.Write(p); err != nil {
			return n, err
		}
	}
	return len(p), nil
}
