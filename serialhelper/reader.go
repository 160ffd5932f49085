package serialhelper

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// Reader builds line and pause delimited reads out of short polling reads.
// A read returning no data (nil error or io.EOF) is treated as a poll timeout.
type Reader struct {
	r       io.Reader
	now     func() time.Time
	buf     []byte
	pending []byte
}

func NewReader(r io.Reader, now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{r: r, now: now, buf: make([]byte, 256)}
}

func (r *Reader) poll() ([]byte, error) {
	n, err := r.r.Read(r.buf)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return r.buf[:n], err
}

// ReadLine returns everything up to and including the next '\n'.
// If the timeout passes first it returns what has arrived so far, possibly nothing.
func (r *Reader) ReadLine(timeout time.Duration) (string, error) {
	deadline := r.now().Add(timeout)
	var line []byte
	for {
		if i := bytes.IndexByte(r.pending, '\n'); i >= 0 {
			line = append(line, r.pending[:i+1]...)
			r.pending = r.pending[i+1:]
			return string(line), nil
		}
		line = append(line, r.pending...)
		r.pending = nil

		if !r.now().Before(deadline) {
			return string(line), nil
		}
		b, err := r.poll()
		r.pending = append(r.pending, b...)
		if err != nil {
			line = append(line, r.pending...)
			r.pending = nil
			return string(line), err
		}
	}
}

// ReadUntilPause waits up to timeout for data, then keeps reading until nothing
// has arrived for gap.
func (r *Reader) ReadUntilPause(timeout, gap time.Duration) (string, error) {
	deadline := r.now().Add(timeout)
	out := r.pending
	r.pending = nil

	for len(out) == 0 {
		if !r.now().Before(deadline) {
			return "", nil
		}
		b, err := r.poll()
		out = append(out, b...)
		if err != nil {
			return string(out), err
		}
	}

	last := r.now()
	for r.now().Sub(last) < gap {
		b, err := r.poll()
		if len(b) > 0 {
			out = append(out, b...)
			last = r.now()
		}
		if err != nil {
			return string(out), err
		}
	}
	return string(out), nil
}
