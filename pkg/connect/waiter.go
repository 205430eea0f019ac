package connect

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAttemptInFlight is returned when a connection attempt is already
	// pending for the same user and platform.
	ErrAttemptInFlight = errors.New("connection attempt already in flight")

	// ErrCancelled is delivered to awaiters when the attempt is abandoned
	// (the dashboard closed the authorization window).
	ErrCancelled = errors.New("connection attempt cancelled")

	ErrNoAttempt = errors.New("no pending connection attempt")
)

// DefaultAttemptTTL bounds how long an unresolved attempt blocks a new one.
// It matches the OAuth state-token lifetime: once the state has expired the
// callback can no longer land, so holding the key any longer would lock the
// user out of reconnecting.
const DefaultAttemptTTL = 10 * time.Minute

// Result is the outcome of one OAuth connection attempt.
type Result struct {
	Platform string
	Err      error
}

// Waiter is a cancellable completion future for one in-flight OAuth
// attempt. It replaces timer-based polling: the callback (or an explicit
// cancel) resolves it exactly once.
type Waiter struct {
	platform string
	created  time.Time
	done     chan Result
	once     sync.Once
}

// Await blocks until the attempt resolves or ctx expires.
func (w *Waiter) Await(ctx context.Context) (Result, error) {
	select {
	case res := <-w.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (w *Waiter) resolve(res Result) {
	w.once.Do(func() {
		w.done <- res
		close(w.done)
	})
}

// Registry tracks at most one pending attempt per key (user+platform).
// Attempts that never resolve (crashed dashboard, popup closed without a
// cancel call) are reaped after ttl on the next Begin.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	waiters map[string]*Waiter
}

func NewRegistry() *Registry {
	return NewRegistryWithTTL(DefaultAttemptTTL)
}

func NewRegistryWithTTL(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		waiters: make(map[string]*Waiter),
	}
}

// Begin registers a new attempt. A second Begin for the same key before the
// first resolves fails with ErrAttemptInFlight, unless the first has
// outlived the registry TTL, in which case it is cancelled and replaced.
func (r *Registry) Begin(key, platform string) (*Waiter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.waiters[key]; ok {
		if r.ttl <= 0 || time.Since(existing.created) < r.ttl {
			return nil, ErrAttemptInFlight
		}
		existing.resolve(Result{Platform: existing.platform, Err: ErrCancelled})
		delete(r.waiters, key)
	}
	w := &Waiter{
		platform: platform,
		created:  time.Now(),
		done:     make(chan Result, 1),
	}
	r.waiters[key] = w
	return w, nil
}

// Lookup returns the pending waiter for key, if any.
func (r *Registry) Lookup(key string) (*Waiter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waiters[key]
	return w, ok
}

// Resolve completes the pending attempt for key. err is nil on a successful
// authorization, non-nil on a provider error.
func (r *Registry) Resolve(key string, err error) error {
	r.mu.Lock()
	w, ok := r.waiters[key]
	delete(r.waiters, key)
	r.mu.Unlock()

	if !ok {
		return ErrNoAttempt
	}
	w.resolve(Result{Platform: w.platform, Err: err})
	return nil
}

// Cancel abandons the pending attempt for key, delivering ErrCancelled to
// any awaiter.
func (r *Registry) Cancel(key string) error {
	return r.Resolve(key, ErrCancelled)
}

// Pending reports whether an attempt is in flight for key.
func (r *Registry) Pending(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.waiters[key]
	return ok
}
