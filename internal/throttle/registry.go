// Package throttle enforces a minimum delay between consecutive requests to
// the same network host.
package throttle

import (
	"net/url"
	"strings"
	"sync"
	"time"
)

// Registry tracks, per host, the earliest instant at which the next request
// may be issued. It is shared by all fetch workers; every mutation happens
// inside a single lock-protected reservation step so two concurrent fetches
// to the same host are never scheduled closer together than the configured
// delay. Entries are never expired; the registry lives for one pipeline run
// and is bounded by the number of distinct hosts.
type Registry struct {
	mu    sync.Mutex
	delay time.Duration
	next  map[string]time.Time
	now   func() time.Time
}

// NewRegistry creates a Registry with the given per-host delay. A delay of
// zero disables waiting entirely.
func NewRegistry(delay time.Duration) *Registry {
	return &Registry{
		delay: delay,
		next:  make(map[string]time.Time),
		now:   time.Now,
	}
}

// Reserve atomically claims the next allowed instant for the target's host
// and returns how long the caller must wait before issuing its request.
// The computation and the reservation form one critical section.
func (r *Registry) Reserve(target string) time.Duration {
	if r.delay <= 0 {
		return 0
	}
	key := hostKey(target)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	allowed, ok := r.next[key]
	if !ok || allowed.Before(now) {
		allowed = now
	}
	r.next[key] = allowed.Add(r.delay)
	return allowed.Sub(now)
}

// hostKey keys reservations by network authority. Malformed targets fall
// back to the whole string so they still throttle against themselves.
func hostKey(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return strings.ToLower(target)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
