package domain

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	v := url.Values{}
	v.Set(ParamCallID, "c1")
	v.Set(ParamPhone, "0501234567")
	v.Set(ParamDID, "0771234567")
	v.Set(ParamRealDID, "037654321")
	v.Set(ParamExtension, "2/5")
	v.Set(ParamTime, "1700000000")
	v.Set(ParamEnterID, "123456782")
	v.Set(ParamEnterIDName, "ישראל")
	v.Set(ParamHangup, "yes")
	v.Set("val_1", "9")

	p := ParseParams(v)
	assert.Equal(t, "c1", p.CallID)
	assert.Equal(t, "0501234567", p.Phone)
	assert.Equal(t, "037654321", p.RealDID)
	assert.Equal(t, "2/5", p.Extension)
	assert.Equal(t, time.Unix(1700000000, 0), p.Time)
	assert.True(t, p.Hangup)
	assert.Equal(t, "9", p.Raw.Get("val_1"))

	id := IdentityFrom(p)
	assert.Equal(t, "123456782", id.EnterID)
	assert.Equal(t, "ישראל", id.EnterIDName)
}

func TestParseParamsTolerant(t *testing.T) {
	p := ParseParams(nil)
	assert.Empty(t, p.CallID)
	assert.False(t, p.Hangup)
	assert.True(t, p.Time.IsZero())
	assert.NotNil(t, p.Raw)

	p = ParseParams(url.Values{ParamHangup: {"no"}, ParamTime: {"soon"}})
	assert.False(t, p.Hangup)
	assert.True(t, p.Time.IsZero())
}

func TestEndReasonOf(t *testing.T) {
	tests := []struct {
		err  error
		want EndReason
	}{
		{nil, EndReasonCompleted},
		{ErrCallDeleted, EndReasonDeleted},
		{ErrCallSuperseded, EndReasonSuperseded},
		{&ExitError{CallID: "c1", Action: "go_to_folder", Target: "/1"}, EndReasonExit},
		{&HangupError{CallID: "c1"}, EndReasonHangup},
		{fmt.Errorf("wrapped: %w", &TimeoutError{CallID: "c1", After: time.Second}), EndReasonTimeout},
		{errors.New("boom"), EndReasonError},
		{&ValidationError{Field: "x", Message: "bad"}, EndReasonError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EndReasonOf(tt.err), "%v", tt.err)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(&ExitError{}))
	assert.True(t, IsTerminal(&HangupError{}))
	assert.True(t, IsTerminal(fmt.Errorf("x: %w", &TimeoutError{})))
	assert.True(t, IsTerminal(ErrCallDeleted))
	assert.True(t, IsTerminal(ErrCallSuperseded))
	assert.False(t, IsTerminal(&ValidationError{}))
	assert.False(t, IsTerminal(errors.New("boom")))
	assert.False(t, IsTerminal(nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "call c1 exited via go_to_folder to /1", (&ExitError{CallID: "c1", Action: "go_to_folder", Target: "/1"}).Error())
	assert.Equal(t, "call c1 hung up by handler", (&HangupError{CallID: "c1", Explicit: true}).Error())
	assert.Equal(t, "call c1 timed out after 5m0s", (&TimeoutError{CallID: "c1", After: 5 * time.Minute}).Error())
	assert.Equal(t, "validation failed: tap: bad", (&ValidationError{Field: "tap", Message: "bad"}).Error())
	assert.Equal(t, "call canceled: deleted", ErrCallDeleted.Error())
}

func TestCancellationIsNotAnExit(t *testing.T) {
	var exit *ExitError
	assert.False(t, errors.As(ErrCallDeleted, &exit))
	assert.False(t, errors.As(ErrCallSuperseded, &exit))

	var canceled *CanceledError
	require.ErrorAs(t, fmt.Errorf("wrapped: %w", ErrCallDeleted), &canceled)
	assert.Equal(t, "deleted", canceled.Reason)
}

func TestTapOptionsMerge(t *testing.T) {
	router := TapOptions{SecWait: 10, AllowEmpty: Bool(true)}
	site := TapOptions{
		GeneralOptions: GeneralOptions{ValName: "pin"},
		MaxDigits:      4,
		AllowEmpty:     Bool(false),
	}

	got := DefaultTapOptions().Merge(router).Merge(site)
	assert.Equal(t, "pin", got.ValName)
	assert.Equal(t, 4, got.MaxDigits)
	require.NotNil(t, got.MinDigits)
	assert.Equal(t, 1, *got.MinDigits)

	zero := DefaultTapOptions().Merge(router).Merge(TapOptions{MinDigits: Int(0)})
	require.NotNil(t, zero.MinDigits)
	assert.Equal(t, 0, *zero.MinDigits)
	assert.Equal(t, 10, got.SecWait)
	assert.False(t, IsSet(got.AllowEmpty))
	assert.NotNil(t, got.AllowEmpty)
	assert.Equal(t, "None", got.EmptyVal)
	assert.Nil(t, got.RemoveInvalidChars)
	assert.Equal(t, ReadModeTap, got.Mode())
}

func TestSttAndRecordMerge(t *testing.T) {
	stt := DefaultSttOptions().Merge(SttOptions{Lang: "he-IL"}).Merge(SttOptions{BlockTyping: Bool(true)})
	assert.Equal(t, "he-IL", stt.Lang)
	assert.True(t, IsSet(stt.BlockTyping))

	rec := DefaultRecordOptions().Merge(RecordOptions{Path: "/rec"}).Merge(RecordOptions{FileName: "a"})
	assert.Equal(t, "/rec", rec.Path)
	assert.Equal(t, "a", rec.FileName)
	assert.False(t, IsSet(rec.NoConfirmMenu))
}

func TestIDListMessageOptionsMerge(t *testing.T) {
	got := IDListMessageOptions{RemoveInvalidChars: Bool(true)}.Merge(IDListMessageOptions{PrependToNextAction: Bool(true)})
	assert.True(t, IsSet(got.RemoveInvalidChars))
	assert.True(t, IsSet(got.PrependToNextAction))

	off := IDListMessageOptions{PrependToNextAction: Bool(true)}.Merge(IDListMessageOptions{PrependToNextAction: Bool(false)})
	require.NotNil(t, off.PrependToNextAction)
	assert.False(t, *off.PrependToNextAction)

	kept := IDListMessageOptions{PrependToNextAction: Bool(true)}.Merge(IDListMessageOptions{})
	assert.True(t, IsSet(kept.PrependToNextAction))
}
