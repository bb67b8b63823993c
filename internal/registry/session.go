// Package registry owns the live call sessions and their input deadlines.
package registry

import (
	"sync"
	"time"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/extractor"
)

// Pending is the single in-flight read of a session.
type Pending struct {
	extractor.Pending
	// Instruction is re-sent when a request arrives without the answer.
	Instruction string
	// Resolver receives the captured value exactly once.
	Resolver chan string
}

// Session is the live state of one call.
type Session struct {
	CallID    string
	Path      string
	Identity  domain.Identity
	StartedAt time.Time

	busy sync.Mutex

	mu           sync.Mutex
	status       domain.CallStatus
	values       []domain.Value
	pending      *Pending
	lastActivity time.Time
	reads        int
	timeout      time.Duration

	// Owned by the Supervisor.
	timer    *time.Timer
	timerGen uint64
	armedFor time.Duration

	endOnce   sync.Once
	done      chan struct{}
	endReason error
}

func newSession(callID string) *Session {
	now := time.Now()
	return &Session{
		CallID:       callID,
		StartedAt:    now,
		status:       domain.CallStatusNew,
		lastActivity: now,
		done:         make(chan struct{}),
	}
}

// TryAcquire claims the session for one request. It fails while another
// request for the same call is being processed.
func (s *Session) TryAcquire() bool {
	return s.busy.TryLock()
}

// Release ends the claim taken by TryAcquire.
func (s *Session) Release() {
	s.busy.Unlock()
}

func (s *Session) Status() domain.CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetStatus moves the session to status. ENDED is only set by end.
func (s *Session) SetStatus(status domain.CallStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.CallStatusEnded {
		return
	}
	s.status = status
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Values returns a copy of the captured values in capture order.
func (s *Session) Values() []domain.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Value, len(s.values))
	copy(out, s.values)
	return out
}

// Value returns the stored value for name.
func (s *Session) Value(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// StoreValue appends name=value. A name captured again by a re-entered read
// keeps its position and takes the new value.
func (s *Session) StoreValue(name, value string) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.values {
		if s.values[i].Name == name {
			s.values[i].Value = value
			return true
		}
	}
	s.values = append(s.values, domain.Value{Name: name, Value: value})
	return false
}

// NextRead returns the 1-based index of the next automatically named read.
func (s *Session) NextRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.reads
}

func (s *Session) Pending() *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// SetPending installs p. It fails if a read is already pending or the session
// has ended.
func (s *Session) SetPending(p *Pending) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil || s.status == domain.CallStatusEnded {
		return false
	}
	s.pending = p
	return true
}

// TakePending removes and returns the pending read, so it resolves only once.
func (s *Session) TakePending() *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.pending
	s.pending = nil
	return p
}

// SetTimeout overrides the input deadline for this call. Zero restores the
// router default.
func (s *Session) SetTimeout(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the signal that ended the session, nil while it is live or when
// the handler completed normally.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.endReason
	default:
		return nil
	}
}

func (s *Session) Ended() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// end marks the session ENDED. Only the first call has any effect.
func (s *Session) end(reason error) bool {
	ended := false
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.status = domain.CallStatusEnded
		s.pending = nil
		s.endReason = reason
		s.mu.Unlock()
		close(s.done)
		ended = true
	})
	return ended
}

// Info returns a snapshot of the session.
func (s *Session) Info() domain.CallInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := domain.CallInfo{
		CallID:       s.CallID,
		Path:         s.Path,
		Identity:     s.Identity,
		Status:       s.status,
		Values:       make([]domain.Value, len(s.values)),
		StartedAt:    s.StartedAt,
		LastActivity: s.lastActivity,
	}
	copy(info.Values, s.values)
	if s.pending != nil {
		info.PendingName = s.pending.ValName
		info.PendingMode = s.pending.Mode
	}
	if s.status == domain.CallStatusEnded {
		info.EndReason = domain.EndReasonOf(s.endReason)
	}
	return info
}
