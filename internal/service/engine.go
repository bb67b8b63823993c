package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/extractor"
	"github.com/xiaot623/gogo/yemot-router/internal/registry"
)

// Serve handles one webhook request for path and returns the instruction for
// the switch. A request for an unseen call starts the bound handler; a request
// for a call awaiting input resumes it. The returned error is one of
// ErrMissingCallID, ErrRouteNotFound, ErrCallBusy or a context error.
func (s *Service) Serve(ctx context.Context, method, path string, params domain.Params) (string, error) {
	if params.CallID == "" {
		return "", domain.ErrMissingCallID
	}
	if params.Hangup {
		return s.hangup(params.CallID), nil
	}
	h, ok := s.handler(method, path)
	if !ok {
		return "", domain.ErrRouteNotFound
	}

	// A live call is replaced at most once per request; the loop also covers
	// a session that ended between lookup and acquisition.
	for attempt := 0; attempt < 3; attempt++ {
		session, created := s.registry.GetOrCreate(params.CallID, func(ns *registry.Session) {
			ns.Path = path
			ns.Identity = domain.IdentityFrom(params)
			ns.TryAcquire()
			if s.metrics != nil {
				s.metrics.ActiveCalls.Inc()
			}
		})

		if created {
			instruction, err := s.start(ctx, session, h)
			session.Release()
			return instruction, err
		}

		if session.Path != path {
			s.logger.Info("call restarted on another route",
				zap.String("callId", session.CallID),
				zap.String("from", session.Path),
				zap.String("to", path))
			s.registry.Evict(session, domain.ErrCallSuperseded)
			continue
		}

		if !session.TryAcquire() {
			if s.metrics != nil {
				s.metrics.BusyRejections.Inc()
			}
			s.logger.Warn("rejected overlapping request", zap.String("callId", session.CallID))
			return "", domain.ErrCallBusy
		}
		if session.Ended() {
			session.Release()
			continue
		}
		instruction, err := s.resume(ctx, session, params)
		session.Release()
		return instruction, err
	}
	return "", domain.ErrCallBusy
}

// hangup ends the call reported disconnected by the switch. It does not wait
// for a request in flight for the same call.
func (s *Service) hangup(callID string) string {
	if session, ok := s.registry.Get(callID); ok {
		s.registry.Evict(session, &domain.HangupError{CallID: callID})
	}
	return s.encoder.Hangup()
}

// start launches the handler of a new session and waits for its first step.
func (s *Service) start(ctx context.Context, session *registry.Session, h HandlerFunc) (string, error) {
	if session.Ended() {
		return s.encoder.Hangup(), nil
	}

	handlerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	call := newCall(s, session, cancel)

	s.activeMu.Lock()
	s.active[session] = call
	s.activeMu.Unlock()

	session.SetStatus(domain.CallStatusRunning)
	if s.metrics != nil {
		s.metrics.CallsStarted.Inc()
	}
	s.logger.Info("new call",
		zap.String("callId", session.CallID),
		zap.String("path", session.Path),
		zap.String("phone", session.Identity.Phone))
	s.persist(session)
	s.notifier.Emit(newEvent(domain.EventTypeNewCall, session.Info(), nil))

	go call.run(handlerCtx, h)

	return s.wait(ctx, session, call)
}

// resume answers the pending read of session from params.
func (s *Service) resume(ctx context.Context, session *registry.Session, params domain.Params) (string, error) {
	call := s.call(session)
	pending := session.Pending()
	if call == nil || pending == nil || session.Status() != domain.CallStatusAwaitingInput {
		return "", domain.ErrCallBusy
	}

	value, ok := extractor.Extract(params.Raw, pending.Pending)
	if !ok {
		// The switch did not deliver the answer; ask again.
		session.Touch()
		s.supervisor.Arm(session)
		if s.metrics != nil {
			s.metrics.ResendsNoValue.Inc()
		}
		s.logger.Debug("request without pending value, re-sending instruction",
			zap.String("callId", session.CallID),
			zap.String("valName", pending.ValName))
		return pending.Instruction, nil
	}

	pending = session.TakePending()
	if pending == nil {
		return "", domain.ErrCallBusy
	}
	s.supervisor.Disarm(session)
	session.StoreValue(pending.ValName, value)
	session.Touch()
	session.SetStatus(domain.CallStatusRunning)
	if s.metrics != nil {
		s.metrics.Resumptions.Inc()
	}
	s.logger.Debug("call continued",
		zap.String("callId", session.CallID),
		zap.String("valName", pending.ValName))
	s.notifier.Emit(newEvent(domain.EventTypeCallContinue, session.Info(), nil))

	pending.Resolver <- value

	return s.wait(ctx, session, call)
}

// wait blocks until the handler reaches its next suspension point or ends.
func (s *Service) wait(ctx context.Context, session *registry.Session, call *Call) (string, error) {
	select {
	case st := <-call.steps:
		if st.final {
			s.registry.Evict(session, st.err)
			return st.instruction, nil
		}
		session.SetStatus(domain.CallStatusAwaitingInput)
		s.supervisor.Arm(session)
		s.persist(session)
		return st.instruction, nil
	case <-session.Done():
		return s.encoder.Hangup(), nil
	case <-ctx.Done():
		s.registry.Evict(session, fmt.Errorf("request canceled: %w", ctx.Err()))
		return "", ctx.Err()
	}
}

// expire ends a session whose deadline elapsed. A request currently owning the
// session takes precedence; it either resolves or re-arms the deadline.
func (s *Service) expire(session *registry.Session, gen uint64) {
	if !session.TryAcquire() {
		return
	}
	defer session.Release()

	if !s.supervisor.IsCurrent(session, gen) || session.Status() != domain.CallStatusAwaitingInput {
		return
	}
	after, _ := s.supervisor.Armed(session)
	s.logger.Info("call timed out", zap.String("callId", session.CallID), zap.Duration("after", after))
	s.registry.Evict(session, &domain.TimeoutError{CallID: session.CallID, After: after})
}

// evicted runs once for every session that ends.
func (s *Service) evicted(session *registry.Session) {
	s.activeMu.Lock()
	call := s.active[session]
	delete(s.active, session)
	s.activeMu.Unlock()
	if call != nil {
		call.cancel()
	}

	if s.store != nil {
		s.storeMu.Lock()
		if err := s.store.DeleteCall(context.Background(), session.CallID); err != nil {
			s.logger.Error("failed to delete call snapshot", zap.String("callId", session.CallID), zap.Error(err))
		}
		s.storeMu.Unlock()
	}

	cause := session.Err()
	info := session.Info()
	if s.metrics != nil {
		s.metrics.ActiveCalls.Dec()
		s.metrics.CallsEnded.WithLabelValues(string(info.EndReason)).Inc()
		s.metrics.HandlerDuration.Observe(time.Since(session.StartedAt).Seconds())
	}

	fields := []zap.Field{
		zap.String("callId", session.CallID),
		zap.String("reason", string(info.EndReason)),
	}
	if info.EndReason == domain.EndReasonError {
		s.logger.Error("call ended", append(fields, zap.Error(cause))...)
	} else {
		s.logger.Info("call ended", fields...)
	}
	s.notifier.Emit(newEvent(domain.EventTypeCallHangup, info, cause))
}

// persist writes the snapshot of a live session to the store.
func (s *Service) persist(session *registry.Session) {
	if s.store == nil {
		return
	}
	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	if session.Ended() {
		return
	}
	if err := s.store.UpsertCall(context.Background(), session.Info()); err != nil {
		s.logger.Error("failed to persist call snapshot", zap.String("callId", session.CallID), zap.Error(err))
	}
}

func (s *Service) call(session *registry.Session) *Call {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.active[session]
}

// DeleteCall ends a live call from outside the conversation. It reports
// whether a live call existed.
func (s *Service) DeleteCall(callID string) bool {
	deleted := s.registry.Delete(callID, domain.ErrCallDeleted)
	if deleted {
		s.logger.Info("call deleted", zap.String("callId", callID))
	}
	return deleted
}

// ListCalls returns the live calls, optionally filtered by status.
func (s *Service) ListCalls(ctx context.Context, status domain.CallStatus) ([]domain.CallInfo, error) {
	if s.store != nil {
		return s.store.ListCalls(ctx, status)
	}
	calls := []domain.CallInfo{}
	for _, c := range s.registry.Snapshot() {
		if status == "" || c.Status == status {
			calls = append(calls, c)
		}
	}
	return calls, nil
}

// GetCall returns a live call, or nil when none exists.
func (s *Service) GetCall(ctx context.Context, callID string) (*domain.CallInfo, error) {
	if s.store != nil {
		return s.store.GetCall(ctx, callID)
	}
	session, ok := s.registry.Get(callID)
	if !ok {
		return nil, nil
	}
	info := session.Info()
	return &info, nil
}

// ActiveCalls returns the number of live calls.
func (s *Service) ActiveCalls() int {
	return s.registry.Len()
}
