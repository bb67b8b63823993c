// Package domain defines the core domain models for the IVR router.
package domain

// CallStatus represents the status of a live call session.
type CallStatus string

const (
	CallStatusNew           CallStatus = "NEW"
	CallStatusRunning       CallStatus = "RUNNING"
	CallStatusAwaitingInput CallStatus = "AWAITING_INPUT"
	CallStatusEnded         CallStatus = "ENDED"
)

// EventType represents the type of a lifecycle event.
type EventType string

const (
	EventTypeNewCall      EventType = "new_call"
	EventTypeCallContinue EventType = "call_continue"
	EventTypeCallHangup   EventType = "call_hangup"
)

// ReadMode selects how the switch captures input for a read.
type ReadMode string

const (
	ReadModeTap    ReadMode = "tap"
	ReadModeStt    ReadMode = "stt"
	ReadModeRecord ReadMode = "record"
)

// MessageType is the kind of a single message item.
type MessageType string

const (
	MessageTypeFile          MessageType = "file"
	MessageTypeText          MessageType = "text"
	MessageTypeSpeech        MessageType = "speech"
	MessageTypeDigits        MessageType = "digits"
	MessageTypeNumber        MessageType = "number"
	MessageTypeAlpha         MessageType = "alpha"
	MessageTypeZmanim        MessageType = "zmanim"
	MessageTypeGoToFolder    MessageType = "go_to_folder"
	MessageTypeSystemMessage MessageType = "system_message"
	MessageTypeMusicOnHold   MessageType = "music_on_hold"
	MessageTypeDate          MessageType = "date"
	MessageTypeDateH         MessageType = "dateH"
)

// PlaybackMode controls how typed digits are played back to the caller.
type PlaybackMode string

const (
	PlaybackNumber          PlaybackMode = "Number"
	PlaybackDigits          PlaybackMode = "Digits"
	PlaybackFile            PlaybackMode = "File"
	PlaybackTTS             PlaybackMode = "TTS"
	PlaybackAlpha           PlaybackMode = "Alpha"
	PlaybackNo              PlaybackMode = "No"
	PlaybackHebrewKeyboard  PlaybackMode = "HebrewKeyboard"
	PlaybackEmailKeyboard   PlaybackMode = "EmailKeyboard"
	PlaybackEnglishKeyboard PlaybackMode = "EnglishKeyboard"
	PlaybackDigitsKeyboard  PlaybackMode = "DigitsKeyboard"
	PlaybackTeudatZehut     PlaybackMode = "TeudatZehut"
	PlaybackPrice           PlaybackMode = "Price"
	PlaybackTime            PlaybackMode = "Time"
	PlaybackPhone           PlaybackMode = "Phone"
)

// EndReason records why a session ended.
type EndReason string

const (
	EndReasonCompleted  EndReason = "completed"
	EndReasonExit       EndReason = "exit"
	EndReasonHangup     EndReason = "hangup"
	EndReasonTimeout    EndReason = "timeout"
	EndReasonDeleted    EndReason = "deleted"
	EndReasonError      EndReason = "error"
	EndReasonSuperseded EndReason = "superseded"
)
