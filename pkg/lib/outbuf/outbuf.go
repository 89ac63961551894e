// Package outbuf keeps the complete output of a process so that any number of
// readers can replay it from the start and then follow new writes.
package outbuf

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "outbuf"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l.WithPrefix("outbuf")
	}
}

// Buffer is an append-only list of output chunks. It is safe for concurrent
// writers and readers. Readers block for more data until Close is called.
type Buffer struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
	closed bool
	// changed is closed and replaced on every Write and on Close.
	changed chan struct{}
}

// New creates an empty, open Buffer.
func New() *Buffer {
	return &Buffer{changed: make(chan struct{})}
}

// Write implements io.Writer. It stores a copy of p, so callers may reuse p.
// Writing to a closed buffer fails with io.ErrClosedPipe.
func (b *Buffer) Write(p []byte) (int, error) {
	if b == nil {
		return len(p), nil
	}
	if len(p) == 0 {
		return 0, nil
	}

	cp := append([]byte(nil), p...)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	b.chunks = append(b.chunks, cp)
	b.size += len(cp)
	b.broadcastLocked()
	b.mu.Unlock()

	logger.Debug("chunk appended", "bytes", len(cp))
	return len(p), nil
}

// Close marks the end of output. Pending and future readers reach EOF after
// draining what was written. Close is idempotent.
func (b *Buffer) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.broadcastLocked()
}

// Closed reports whether Close has been called.
func (b *Buffer) Closed() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Buffer) broadcastLocked() {
	close(b.changed)
	b.changed = make(chan struct{})
}

// from returns the chunks at index >= i, whether the buffer is closed, and a
// channel that is closed on the next change.
func (b *Buffer) from(i int) ([][]byte, bool, <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out [][]byte
	if i < len(b.chunks) {
		out = b.chunks[i:len(b.chunks):len(b.chunks)]
	}
	return out, b.closed, b.changed
}

// Bytes concatenates everything written so far.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, 0, b.size)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

// String returns everything written so far as a string.
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Subscribe streams every chunk, starting from the first one, into the returned
// channel. The channel is closed once the buffer is closed and drained, or when
// ctx is done.
func (b *Buffer) Subscribe(ctx context.Context, capacity int) <-chan []byte {
	ch := make(chan []byte, capacity)
	go func() {
		defer close(ch)
		next := 0
		for {
			chunks, closed, changed := b.from(next)
			for _, c := range chunks {
				select {
				case ch <- c:
					next++
				case <-ctx.Done():
					return
				}
			}
			if len(chunks) > 0 {
				continue
			}
			if closed {
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
