package registry

import (
	"sort"
	"sync"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Registry maps call ids to live sessions.
type Registry struct {
	mu         sync.Mutex
	calls      map[string]*Session
	supervisor *Supervisor
	onEvict    func(*Session)
}

// New creates a registry whose sessions are timed by supervisor.
func New(supervisor *Supervisor) *Registry {
	return &Registry{
		calls:      make(map[string]*Session),
		supervisor: supervisor,
	}
}

// OnEvict sets a hook called once for every session that ends. It must be set
// before the registry is used.
func (r *Registry) OnEvict(fn func(*Session)) {
	r.onEvict = fn
}

// GetOrCreate returns the live session for callID, creating it with init when
// none exists. init runs under the registry lock.
func (r *Registry) GetOrCreate(callID string, init func(*Session)) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.calls[callID]; ok {
		return s, false
	}
	s := newSession(callID)
	if init != nil {
		init(s)
	}
	r.calls[callID] = s
	return s, true
}

// Get returns the live session for callID.
func (r *Registry) Get(callID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.calls[callID]
	return s, ok
}

// Delete ends and removes the session for callID. It reports whether a live
// session existed.
func (r *Registry) Delete(callID string, reason error) bool {
	s, ok := r.Get(callID)
	if !ok {
		return false
	}
	return r.Evict(s, reason)
}

// Evict ends s with reason, cancels its deadline and removes it. Only the
// first eviction of a session has any effect.
func (r *Registry) Evict(s *Session, reason error) bool {
	if !s.end(reason) {
		return false
	}
	r.supervisor.Disarm(s)

	r.mu.Lock()
	if r.calls[s.CallID] == s {
		delete(r.calls, s.CallID)
	}
	r.mu.Unlock()

	if r.onEvict != nil {
		r.onEvict(s)
	}
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Snapshot returns every live session ordered by start time.
func (r *Registry) Snapshot() []domain.CallInfo {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.calls))
	for _, s := range r.calls {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	out := make([]domain.CallInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].CallID < out[j].CallID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
