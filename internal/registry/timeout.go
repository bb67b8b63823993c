package registry

import (
	"time"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// DefaultTimeout is the library default input deadline.
const DefaultTimeout = 5 * time.Minute

// ExpireFunc is called when a deadline elapses. gen identifies the timer so
// the callee can check it is still current with IsCurrent.
type ExpireFunc func(s *Session, gen uint64)

// Supervisor arms one input deadline per session.
type Supervisor struct {
	timeout  time.Duration
	onExpire ExpireFunc
}

// NewSupervisor creates a supervisor with the router default timeout. Zero
// selects DefaultTimeout; a negative value disables deadlines.
func NewSupervisor(timeout time.Duration) *Supervisor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Supervisor{timeout: timeout}
}

// OnExpire sets the expiry callback. It must be set before any Arm.
func (sv *Supervisor) OnExpire(fn ExpireFunc) {
	sv.onExpire = fn
}

// Timeout returns the deadline for s: the per-call override, else the router
// default.
func (sv *Supervisor) Timeout(s *Session) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeout != 0 {
		return s.timeout
	}
	return sv.timeout
}

// Arm replaces any deadline of s with a new one and returns its duration.
// Nothing is armed for a non-positive duration.
func (sv *Supervisor) Arm(s *Session) time.Duration {
	d := sv.Timeout(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.armedFor = 0
	if d <= 0 || s.status == domain.CallStatusEnded {
		return 0
	}
	gen := s.timerGen
	s.armedFor = d
	s.timer = time.AfterFunc(d, func() {
		if sv.onExpire != nil && sv.IsCurrent(s, gen) {
			sv.onExpire(s, gen)
		}
	})
	return d
}

// Disarm cancels the deadline of s, if any.
func (sv *Supervisor) Disarm(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.armedFor = 0
}

// IsCurrent reports whether gen is the deadline armed on s right now.
func (sv *Supervisor) IsCurrent(s *Session, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil && s.timerGen == gen
}

// Armed reports whether s has a deadline and its duration.
func (sv *Supervisor) Armed(s *Session) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armedFor, s.timer != nil
}
