package outbuf

import (
	"io"
)

// Reader reads a Buffer from the beginning, blocking for new data until the
// buffer is closed.
type Reader struct {
	buf     *Buffer
	next    int
	pending []byte
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b *Buffer) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(r.pending) == 0 {
		chunks, closed, changed := r.buf.from(r.next)
		if len(chunks) > 0 {
			r.pending = chunks[0]
			r.next++
			break
		}
		if closed {
			return 0, io.EOF
		}
		<-changed
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
