package screen

import (
	"context"
	"sync"
	"time"
)

// Loop is a Dispatcher with its own event goroutine, for running a
// Controller without a terminal UI.
type Loop struct {
	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
	done  chan struct{}
	stop  sync.Once
}

var _ Dispatcher = (*Loop)(nil)

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues ev. It never blocks.
func (l *Loop) Post(ev Event) {
	l.mu.Lock()
	l.queue = append(l.queue, ev)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// PostAfter queues ev once d has elapsed.
func (l *Loop) PostAfter(d time.Duration, ev Event) {
	time.AfterFunc(d, func() { l.Post(ev) })
}

// Run delivers queued events to handle, in order, until Stop is called or
// ctx is done. handle runs on the calling goroutine only.
func (l *Loop) Run(ctx context.Context, handle func(Event)) error {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()
		for _, ev := range batch {
			select {
			case <-l.done:
				return nil
			default:
			}
			handle(ev)
		}

		select {
		case <-l.wake:
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop makes Run return. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stop.Do(func() { close(l.done) })
}
