package domain

import (
	"net/url"
	"strconv"
	"time"
)

// Inbound parameter names sent by the switch.
const (
	ParamCallID      = "ApiCallId"
	ParamPhone       = "ApiPhone"
	ParamDID         = "ApiDID"
	ParamRealDID     = "ApiRealDID"
	ParamExtension   = "ApiExtension"
	ParamTime        = "ApiTime"
	ParamEnterID     = "ApiEnterID"
	ParamEnterIDName = "ApiEnterIDName"
	ParamHangup      = "hangup"
)

// Params is one inbound webhook request.
type Params struct {
	CallID      string
	Phone       string
	DID         string
	RealDID     string
	Extension   string
	Time        time.Time
	EnterID     string
	EnterIDName string
	Hangup      bool
	// Raw holds every parameter, including previously requested values.
	Raw url.Values
}

// ParseParams extracts the switch fields from query and form values.
func ParseParams(values url.Values) Params {
	p := Params{
		CallID:      values.Get(ParamCallID),
		Phone:       values.Get(ParamPhone),
		DID:         values.Get(ParamDID),
		RealDID:     values.Get(ParamRealDID),
		Extension:   values.Get(ParamExtension),
		EnterID:     values.Get(ParamEnterID),
		EnterIDName: values.Get(ParamEnterIDName),
		Hangup:      values.Get(ParamHangup) == "yes",
		Raw:         values,
	}
	if ts, err := strconv.ParseInt(values.Get(ParamTime), 10, 64); err == nil && ts > 0 {
		p.Time = time.Unix(ts, 0)
	}
	if p.Raw == nil {
		p.Raw = url.Values{}
	}
	return p
}

// Identity is the immutable caller information captured on the first request.
type Identity struct {
	Phone       string `json:"phone"`
	DID         string `json:"did"`
	RealDID     string `json:"real_did"`
	Extension   string `json:"extension"`
	EnterID     string `json:"enter_id,omitempty"`
	EnterIDName string `json:"enter_id_name,omitempty"`
}

// IdentityFrom copies the identity fields of p.
func IdentityFrom(p Params) Identity {
	return Identity{
		Phone:       p.Phone,
		DID:         p.DID,
		RealDID:     p.RealDID,
		Extension:   p.Extension,
		EnterID:     p.EnterID,
		EnterIDName: p.EnterIDName,
	}
}

// Value is one captured value in capture order.
type Value struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CallInfo is a read-only snapshot of a live call.
type CallInfo struct {
	CallID       string     `json:"call_id"`
	Path         string     `json:"path"`
	Identity     Identity   `json:"identity"`
	Status       CallStatus `json:"status"`
	Values       []Value    `json:"values"`
	PendingName  string     `json:"pending_name,omitempty"`
	PendingMode  ReadMode   `json:"pending_mode,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	LastActivity time.Time  `json:"last_activity"`
	EndReason    EndReason  `json:"end_reason,omitempty"`
}

// Event is a lifecycle notification.
type Event struct {
	EventID string    `json:"event_id"`
	Type    EventType `json:"type"`
	CallID  string    `json:"call_id"`
	Ts      int64     `json:"ts"` // Unix milliseconds
	Call    CallInfo  `json:"call"`
	Reason  EndReason `json:"reason,omitempty"`
	Error   string    `json:"error,omitempty"`
}
