package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/extractor"
	"github.com/xiaot623/gogo/yemot-router/internal/registry"
)

// step is what the handler hands back to the request waiting on it.
type step struct {
	instruction string
	// final ends the call with err as its cause.
	final bool
	err   error
}

// Call is the handler's view of one live call. Its methods must only be used
// from the handler goroutine (and the error handler it triggers).
type Call struct {
	svc     *Service
	session *registry.Session
	steps   chan step
	cancel  context.CancelFunc

	prepend  []string
	signal   error
	finished bool
}

func newCall(svc *Service, session *registry.Session, cancel context.CancelFunc) *Call {
	return &Call{
		svc:     svc,
		session: session,
		steps:   make(chan step),
		cancel:  cancel,
	}
}

// run executes h and reports how it ended.
func (c *Call) run(ctx context.Context, h HandlerFunc) {
	err := c.invoke(func() error { return h(ctx, c) })

	if err != nil && !domain.IsTerminal(err) && !c.finished && !c.session.Ended() {
		c.svc.logger.Error("handler failed", zap.String("callId", c.CallID()), zap.Error(err))
		if c.svc.errorHandler != nil {
			if herr := c.invoke(func() error { c.svc.errorHandler(ctx, c, err); return nil }); herr != nil {
				c.svc.logger.Error("error handler failed", zap.String("callId", c.CallID()), zap.Error(herr))
			}
		}
	}
	if c.finished {
		return
	}

	// Completed, or a fault nobody answered: disconnect.
	if err != nil && domain.IsTerminal(err) {
		err = nil
	}
	c.finished = true
	_ = c.send(step{instruction: c.withPrepend(c.svc.encoder.Hangup()), final: true, err: err})
}

func (c *Call) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn()
}

// send hands st to the waiting request. It fails once the call has ended.
func (c *Call) send(st step) error {
	select {
	case c.steps <- st:
		return nil
	case <-c.session.Done():
		return c.ended()
	}
}

// ended returns the signal that stops the handler.
func (c *Call) ended() error {
	if c.signal != nil {
		return c.signal
	}
	if err := c.session.Err(); err != nil {
		c.signal = err
	} else {
		c.signal = &domain.HangupError{CallID: c.CallID()}
	}
	return c.signal
}

func (c *Call) stopped() bool {
	return c.signal != nil || c.session.Ended()
}

// withPrepend prefixes instruction with buffered messages and clears them.
func (c *Call) withPrepend(instruction string) string {
	if len(c.prepend) == 0 {
		return instruction
	}
	parts := append(c.prepend, instruction)
	c.prepend = nil
	return c.svc.encoder.Join(parts...)
}

// finish sends the final instruction of the call and returns signal.
func (c *Call) finish(instruction string, signal error) error {
	c.signal = signal
	c.finished = true
	_ = c.send(step{instruction: c.withPrepend(instruction), final: true, err: signal})
	return signal
}

// Read asks the caller for input and suspends until the switch answers. opts
// selects the mode: TapOptions, SttOptions or RecordOptions; nil reads keys
// with the defaults. The returned error is a ValidationError for rejected
// options, or the termination signal when the call ends while waiting.
func (c *Call) Read(msgs []domain.Message, opts domain.ReadOptions) (string, error) {
	if c.stopped() {
		return "", c.ended()
	}

	merged, err := c.mergeRead(opts)
	if err != nil {
		return "", err
	}
	if c.svc.policyEngine != nil {
		if err := c.svc.policyEngine.Validate(context.Background(), merged); err != nil {
			return "", err
		}
	}

	general := merged.General()
	if general.ValName == "" {
		general.ValName = extractor.AutoName(c.svc.defaults.ValNamePrefix, c.session.NextRead())
		merged = withGeneral(merged, general)
	}

	pending := extractor.Pending{
		Mode:    merged.Mode(),
		ValName: general.ValName,
		ReEnter: domain.IsSet(general.ReEnterIfExists),
	}
	if tap, ok := merged.(domain.TapOptions); ok {
		pending.AllowEmpty = domain.IsSet(tap.AllowEmpty)
		pending.EmptyVal = tap.EmptyVal
	}

	if value, ok := extractor.Reusable(pending, c.session.Values()); ok {
		return value, nil
	}

	instruction, err := c.svc.encoder.Read(msgs, merged)
	if err != nil {
		return "", err
	}
	instruction = c.withPrepend(instruction)

	resolver := make(chan string, 1)
	if !c.session.SetPending(&registry.Pending{Pending: pending, Instruction: instruction, Resolver: resolver}) {
		if c.session.Ended() {
			return "", c.ended()
		}
		return "", errors.New("a read is already pending")
	}
	if c.svc.metrics != nil {
		c.svc.metrics.Reads.WithLabelValues(string(pending.Mode)).Inc()
	}

	if err := c.send(step{instruction: instruction}); err != nil {
		return "", err
	}
	select {
	case value := <-resolver:
		return value, nil
	case <-c.session.Done():
		return "", c.ended()
	}
}

func (c *Call) mergeRead(opts domain.ReadOptions) (domain.ReadOptions, error) {
	d := c.svc.defaults
	switch o := opts.(type) {
	case nil:
		return domain.DefaultTapOptions().Merge(d.Tap), nil
	case domain.TapOptions:
		return domain.DefaultTapOptions().Merge(d.Tap).Merge(o), nil
	case *domain.TapOptions:
		return domain.DefaultTapOptions().Merge(d.Tap).Merge(*o), nil
	case domain.SttOptions:
		return domain.DefaultSttOptions().Merge(d.Stt).Merge(o), nil
	case *domain.SttOptions:
		return domain.DefaultSttOptions().Merge(d.Stt).Merge(*o), nil
	case domain.RecordOptions:
		return domain.DefaultRecordOptions().Merge(d.Record).Merge(o), nil
	case *domain.RecordOptions:
		return domain.DefaultRecordOptions().Merge(d.Record).Merge(*o), nil
	default:
		return nil, &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unsupported read options %T", opts)}
	}
}

func withGeneral(opts domain.ReadOptions, g domain.GeneralOptions) domain.ReadOptions {
	switch o := opts.(type) {
	case domain.TapOptions:
		o.GeneralOptions = g
		return o
	case domain.SttOptions:
		o.GeneralOptions = g
		return o
	case domain.RecordOptions:
		o.GeneralOptions = g
		return o
	}
	return opts
}

// IDListMessage plays msgs. Without PrependToNextAction it ends the call with
// an ExitError; with it the messages are sent ahead of the next instruction.
func (c *Call) IDListMessage(msgs []domain.Message, opts domain.IDListMessageOptions) error {
	if c.stopped() {
		return c.ended()
	}
	merged := c.svc.defaults.IDListMessage.Merge(opts)
	instruction, err := c.svc.encoder.IDListMessage(msgs, merged)
	if err != nil {
		return err
	}
	if domain.IsSet(merged.PrependToNextAction) {
		c.prepend = append(c.prepend, instruction)
		return nil
	}
	return c.finish(instruction, &domain.ExitError{CallID: c.CallID(), Action: "id_list_message"})
}

// GoToFolder moves the caller to target and ends the call.
func (c *Call) GoToFolder(target string) error {
	if c.stopped() {
		return c.ended()
	}
	instruction, err := c.svc.encoder.GoToFolder(target)
	if err != nil {
		return err
	}
	return c.finish(instruction, &domain.ExitError{CallID: c.CallID(), Action: "go_to_folder", Target: target})
}

// RoutingYemot transfers the caller to another system and ends the call.
func (c *Call) RoutingYemot(system string) error {
	if c.stopped() {
		return c.ended()
	}
	instruction, err := c.svc.encoder.RoutingYemot(system)
	if err != nil {
		return err
	}
	return c.finish(instruction, &domain.ExitError{CallID: c.CallID(), Action: "routing_yemot", Target: system})
}

// RestartExt sends the caller back to the start of the current extension.
func (c *Call) RestartExt() error {
	if c.stopped() {
		return c.ended()
	}
	ext := c.session.Identity.Extension
	return c.finish(c.svc.encoder.RestartExt(ext), &domain.ExitError{CallID: c.CallID(), Action: "restart_ext", Target: ext})
}

// Hangup disconnects the caller.
func (c *Call) Hangup() error {
	if c.stopped() {
		return c.ended()
	}
	return c.finish(c.svc.encoder.Hangup(), &domain.HangupError{CallID: c.CallID(), Explicit: true})
}

// SetTimeout overrides the input deadline of this call. Zero restores the
// router default; a negative value disables it.
func (c *Call) SetTimeout(d time.Duration) {
	c.session.SetTimeout(d)
}

// Values returns the captured values in capture order.
func (c *Call) Values() []domain.Value {
	return c.session.Values()
}

// Value returns the captured value stored under name.
func (c *Call) Value(name string) (string, bool) {
	return c.session.Value(name)
}

func (c *Call) CallID() string            { return c.session.CallID }
func (c *Call) Path() string              { return c.session.Path }
func (c *Call) Identity() domain.Identity { return c.session.Identity }
func (c *Call) Phone() string             { return c.session.Identity.Phone }
func (c *Call) DID() string               { return c.session.Identity.DID }
func (c *Call) RealDID() string           { return c.session.Identity.RealDID }
func (c *Call) Extension() string         { return c.session.Identity.Extension }
func (c *Call) EnterID() string           { return c.session.Identity.EnterID }
func (c *Call) EnterIDName() string       { return c.session.Identity.EnterIDName }
func (c *Call) StartedAt() time.Time      { return c.session.StartedAt }
func (c *Call) Status() domain.CallStatus { return c.session.Status() }
func (c *Call) Info() domain.CallInfo     { return c.session.Info() }
