package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

func TestNotifierFiltersByType(t *testing.T) {
	n := NewNotifier(zap.NewNop())

	var all, hangups []domain.EventType
	n.Subscribe(func(ev domain.Event) { all = append(all, ev.Type) })
	n.Subscribe(func(ev domain.Event) { hangups = append(hangups, ev.Type) }, domain.EventTypeCallHangup)

	n.Emit(domain.Event{Type: domain.EventTypeNewCall})
	n.Emit(domain.Event{Type: domain.EventTypeCallHangup})

	assert.Equal(t, []domain.EventType{domain.EventTypeNewCall, domain.EventTypeCallHangup}, all)
	assert.Equal(t, []domain.EventType{domain.EventTypeCallHangup}, hangups)
}

func TestNotifierRecoversPanickingSubscriber(t *testing.T) {
	n := NewNotifier(zap.NewNop())

	delivered := 0
	n.Subscribe(func(ev domain.Event) { panic("bad subscriber") })
	n.Subscribe(func(ev domain.Event) { delivered++ })

	assert.NotPanics(t, func() { n.Emit(domain.Event{Type: domain.EventTypeNewCall}) })
	assert.Equal(t, 1, delivered)
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier(zap.NewNop())

	delivered := 0
	unsubscribe := n.Subscribe(func(ev domain.Event) { delivered++ })
	n.Emit(domain.Event{Type: domain.EventTypeNewCall})
	unsubscribe()
	unsubscribe()
	n.Emit(domain.Event{Type: domain.EventTypeNewCall})

	assert.Equal(t, 1, delivered)
}

func TestNewEventCarriesReason(t *testing.T) {
	info := domain.CallInfo{CallID: "c1"}

	ev := newEvent(domain.EventTypeCallHangup, info, &domain.TimeoutError{CallID: "c1"})
	assert.True(t, strings.HasPrefix(ev.EventID, "evt_"))
	assert.Equal(t, "c1", ev.CallID)
	assert.Equal(t, domain.EndReasonTimeout, ev.Reason)
	assert.Empty(t, ev.Error)

	ev = newEvent(domain.EventTypeNewCall, info, nil)
	assert.Empty(t, ev.Reason)
}
