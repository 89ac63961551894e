// Package permission tracks which client identities may spawn processes
// through the broker, and parks permission requests until an operator decides.
package permission

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/SanjoDeundiak/gestureback/pkg/lib"
)

// ErrRateLimited is returned when an identity requests permission too often.
var ErrRateLimited = errors.New("too many permission requests")

type Options struct {
	// AutoGrant identities are granted as soon as they ask.
	AutoGrant []string
	// Deny identities are refused without involving the operator.
	Deny []string
	// RequestTimeout bounds how long a request waits for a decision before it
	// is treated as denied. Zero waits until the caller gives up.
	RequestTimeout time.Duration
	// RequestInterval and RequestBurst rate-limit requests per identity.
	// A zero interval disables limiting.
	RequestInterval time.Duration
	RequestBurst    int

	Logger *log.Logger
}

// PendingRequest is a snapshot of an undecided request.
type PendingRequest struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"`
	Since    time.Time `json:"since"`
	Waiters  int       `json:"waiters"`
}

// Decision is a recorded operator decision.
type Decision struct {
	Identity string `json:"identity"`
	Granted  bool   `json:"granted"`
}

type pending struct {
	id      string
	since   time.Time
	waiters map[chan bool]struct{}
}

// Registry holds grants in memory only; a broker restart forgets them.
type Registry struct {
	opts      Options
	logger    *log.Logger
	autoGrant map[string]bool
	deny      map[string]bool

	mu        sync.Mutex
	decisions map[string]bool
	pending   map[string]*pending
	limiters  map[string]*rate.Limiter
}

func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Registry{
		opts:      opts,
		logger:    logger.WithPrefix("permission"),
		autoGrant: make(map[string]bool),
		deny:      make(map[string]bool),
		decisions: make(map[string]bool),
		pending:   make(map[string]*pending),
		limiters:  make(map[string]*rate.Limiter),
	}
	for _, id := range opts.AutoGrant {
		r.autoGrant[id] = true
	}
	for _, id := range opts.Deny {
		r.deny[id] = true
	}
	return r
}

// Check reports whether identity currently holds a grant.
func (r *Registry) Check(identity string) bool {
	if r.deny[identity] {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decisions[identity]
}

// Request asks for a grant on behalf of identity. It returns immediately for
// granted, auto-granted and denied identities; otherwise it blocks until an
// operator decides, the request times out (denied), or ctx is done.
func (r *Registry) Request(ctx context.Context, identity string) (bool, error) {
	r.mu.Lock()
	if !r.limiterLocked(identity).Allow() {
		r.mu.Unlock()
		return false, ErrRateLimited
	}
	switch {
	case r.deny[identity]:
		r.mu.Unlock()
		r.logger.Info("permission refused by policy", "identity", identity)
		return false, nil
	case r.decisions[identity]:
		r.mu.Unlock()
		return true, nil
	case r.autoGrant[identity]:
		r.decisions[identity] = true
		r.mu.Unlock()
		r.logger.Info("permission auto-granted", "identity", identity)
		return true, nil
	}

	p := r.pending[identity]
	if p == nil {
		p = &pending{id: lib.NewID(), since: time.Now(), waiters: make(map[chan bool]struct{})}
		r.pending[identity] = p
		r.logger.Info("permission request pending", "identity", identity, "request", p.id)
	}
	ch := make(chan bool, 1)
	p.waiters[ch] = struct{}{}
	r.mu.Unlock()

	var timeout <-chan time.Time
	if r.opts.RequestTimeout > 0 {
		timer := time.NewTimer(r.opts.RequestTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case granted := <-ch:
		return granted, nil
	case <-timeout:
		r.dropWaiter(identity, ch)
		r.logger.Info("permission request timed out", "identity", identity)
		return false, nil
	case <-ctx.Done():
		r.dropWaiter(identity, ch)
		return false, ctx.Err()
	}
}

func (r *Registry) limiterLocked(identity string) *rate.Limiter {
	if r.opts.RequestInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	l := r.limiters[identity]
	if l == nil {
		burst := r.opts.RequestBurst
		if burst < 1 {
			burst = 1
		}
		l = rate.NewLimiter(rate.Every(r.opts.RequestInterval), burst)
		r.limiters[identity] = l
	}
	return l
}

func (r *Registry) dropWaiter(identity string, ch chan bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending[identity]
	if p == nil {
		return
	}
	delete(p.waiters, ch)
	if len(p.waiters) == 0 {
		delete(r.pending, identity)
	}
}

// Decide records the operator decision for identity and wakes its pending
// requests. It returns how many waiting requests were resolved.
func (r *Registry) Decide(identity string, granted bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decisions[identity] = granted
	p := r.pending[identity]
	delete(r.pending, identity)
	if p == nil {
		return 0
	}
	for ch := range p.waiters {
		ch <- granted
	}
	r.logger.Info("permission decided", "identity", identity, "granted", granted, "waiters", len(p.waiters))
	return len(p.waiters)
}

// Revoke forgets the decision for identity. It reports whether one existed.
func (r *Registry) Revoke(identity string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.decisions[identity]
	delete(r.decisions, identity)
	return ok
}

// Pending lists undecided requests, oldest first.
func (r *Registry) Pending() []PendingRequest {
	r.mu.Lock()
	out := make([]PendingRequest, 0, len(r.pending))
	for identity, p := range r.pending {
		out = append(out, PendingRequest{ID: p.id, Identity: identity, Since: p.since, Waiters: len(p.waiters)})
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b PendingRequest) int { return a.Since.Compare(b.Since) })
	return out
}

// Decisions lists recorded decisions sorted by identity.
func (r *Registry) Decisions() []Decision {
	r.mu.Lock()
	out := make([]Decision, 0, len(r.decisions))
	for identity, granted := range r.decisions {
		out = append(out, Decision{Identity: identity, Granted: granted})
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b Decision) int {
		switch {
		case a.Identity < b.Identity:
			return -1
		case a.Identity > b.Identity:
			return 1
		}
		return 0
	})
	return out
}
