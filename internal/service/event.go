package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

type subscription struct {
	fn    func(domain.Event)
	types map[domain.EventType]bool
}

// Notifier fans lifecycle events out to subscribers. Delivery is synchronous
// and in subscription order.
type Notifier struct {
	mu     sync.RWMutex
	next   int
	subs   map[int]subscription
	order  []int
	logger *zap.Logger
}

// NewNotifier creates an empty notifier.
func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{
		subs:   make(map[int]subscription),
		logger: logger,
	}
}

// Subscribe registers fn for the given event types, or for every type when
// none is given. The returned func removes the subscription.
func (n *Notifier) Subscribe(fn func(domain.Event), types ...domain.EventType) func() {
	sub := subscription{fn: fn}
	if len(types) > 0 {
		sub.types = make(map[domain.EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = sub
	n.order = append(n.order, id)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit delivers ev to every matching subscriber. A panicking subscriber is
// logged and skipped.
func (n *Notifier) Emit(ev domain.Event) {
	n.mu.RLock()
	subs := make([]subscription, 0, len(n.order))
	for _, id := range n.order {
		subs = append(subs, n.subs[id])
	}
	n.mu.RUnlock()

	for _, sub := range subs {
		if sub.types != nil && !sub.types[ev.Type] {
			continue
		}
		n.deliver(sub, ev)
	}
}

func (n *Notifier) deliver(sub subscription, ev domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("event subscriber panicked",
				zap.String("callId", ev.CallID),
				zap.String("event", string(ev.Type)),
				zap.Any("panic", r))
		}
	}()
	sub.fn(ev)
}

// newEvent builds an event for the call snapshot. cause is the termination
// cause of a call_hangup event.
func newEvent(eventType domain.EventType, call domain.CallInfo, cause error) domain.Event {
	ev := domain.Event{
		EventID: "evt_" + uuid.New().String(),
		Type:    eventType,
		CallID:  call.CallID,
		Ts:      time.Now().UnixMilli(),
		Call:    call,
	}
	if eventType == domain.EventTypeCallHangup {
		ev.Reason = domain.EndReasonOf(cause)
		if ev.Reason == domain.EndReasonError && cause != nil {
			ev.Error = cause.Error()
		}
	}
	return ev
}
