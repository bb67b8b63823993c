package domain

// Options are merged from three levels, most specific wins: call site, router
// defaults, library defaults. A zero value or nil pointer leaves a field unset
// at its level, so plain numeric fields cannot be overridden with 0. MinDigits
// is a pointer because its library default is nonzero and 0 is meaningful.

// GeneralOptions apply to every read mode.
type GeneralOptions struct {
	ValName            string `json:"val_name,omitempty"`
	ReEnterIfExists    *bool  `json:"re_enter_if_exists,omitempty"`
	RemoveInvalidChars *bool  `json:"remove_invalid_chars,omitempty"`
}

func (g GeneralOptions) merge(over GeneralOptions) GeneralOptions {
	if over.ValName != "" {
		g.ValName = over.ValName
	}
	g.ReEnterIfExists = pick(g.ReEnterIfExists, over.ReEnterIfExists)
	g.RemoveInvalidChars = pick(g.RemoveInvalidChars, over.RemoveInvalidChars)
	return g
}

// ReadOptions is implemented by TapOptions, SttOptions and RecordOptions.
type ReadOptions interface {
	Mode() ReadMode
	General() GeneralOptions
}

// TapOptions configure a keypad read.
type TapOptions struct {
	GeneralOptions
	MaxDigits           int          `json:"max_digits,omitempty"`
	MinDigits           *int         `json:"min_digits,omitempty"`
	SecWait             int          `json:"sec_wait,omitempty"`
	TypingPlaybackMode  PlaybackMode `json:"typing_playback_mode,omitempty"`
	BlockAsteriskKey    *bool        `json:"block_asterisk_key,omitempty"`
	BlockZeroKey        *bool        `json:"block_zero_key,omitempty"`
	ReplaceChar         string       `json:"replace_char,omitempty"`
	DigitsAllowed       []string     `json:"digits_allowed,omitempty"`
	AmountAttempts      int          `json:"amount_attempts,omitempty"`
	AllowEmpty          *bool        `json:"allow_empty,omitempty"`
	EmptyVal            string       `json:"empty_val,omitempty"`
	BlockChangeTypeLang *bool        `json:"block_change_type_lang,omitempty"`
}

func (TapOptions) Mode() ReadMode            { return ReadModeTap }
func (o TapOptions) General() GeneralOptions { return o.GeneralOptions }

// Merge returns o with every field set in over replacing its counterpart.
func (o TapOptions) Merge(over TapOptions) TapOptions {
	o.GeneralOptions = o.GeneralOptions.merge(over.GeneralOptions)
	o.MaxDigits = pickInt(o.MaxDigits, over.MaxDigits)
	o.MinDigits = pickIntPtr(o.MinDigits, over.MinDigits)
	o.SecWait = pickInt(o.SecWait, over.SecWait)
	if over.TypingPlaybackMode != "" {
		o.TypingPlaybackMode = over.TypingPlaybackMode
	}
	o.BlockAsteriskKey = pick(o.BlockAsteriskKey, over.BlockAsteriskKey)
	o.BlockZeroKey = pick(o.BlockZeroKey, over.BlockZeroKey)
	o.ReplaceChar = pickString(o.ReplaceChar, over.ReplaceChar)
	if over.DigitsAllowed != nil {
		o.DigitsAllowed = over.DigitsAllowed
	}
	o.AmountAttempts = pickInt(o.AmountAttempts, over.AmountAttempts)
	o.AllowEmpty = pick(o.AllowEmpty, over.AllowEmpty)
	o.EmptyVal = pickString(o.EmptyVal, over.EmptyVal)
	o.BlockChangeTypeLang = pick(o.BlockChangeTypeLang, over.BlockChangeTypeLang)
	return o
}

// SttOptions configure a speech-to-text read.
type SttOptions struct {
	GeneralOptions
	Lang                        string `json:"lang,omitempty"`
	BlockTyping                 *bool  `json:"block_typing,omitempty"`
	MaxDigits                   int    `json:"max_digits,omitempty"`
	UseRecordsRecognitionEngine *bool  `json:"use_records_recognition_engine,omitempty"`
	QuietMax                    int    `json:"quiet_max,omitempty"`
	LengthMax                   int    `json:"length_max,omitempty"`
}

func (SttOptions) Mode() ReadMode            { return ReadModeStt }
func (o SttOptions) General() GeneralOptions { return o.GeneralOptions }

// Merge returns o with every field set in over replacing its counterpart.
func (o SttOptions) Merge(over SttOptions) SttOptions {
	o.GeneralOptions = o.GeneralOptions.merge(over.GeneralOptions)
	o.Lang = pickString(o.Lang, over.Lang)
	o.BlockTyping = pick(o.BlockTyping, over.BlockTyping)
	o.MaxDigits = pickInt(o.MaxDigits, over.MaxDigits)
	o.UseRecordsRecognitionEngine = pick(o.UseRecordsRecognitionEngine, over.UseRecordsRecognitionEngine)
	o.QuietMax = pickInt(o.QuietMax, over.QuietMax)
	o.LengthMax = pickInt(o.LengthMax, over.LengthMax)
	return o
}

// RecordOptions configure an audio recording read.
type RecordOptions struct {
	GeneralOptions
	Path                 string `json:"path,omitempty"`
	FileName             string `json:"file_name,omitempty"`
	NoConfirmMenu        *bool  `json:"no_confirm_menu,omitempty"`
	SaveOnHangup         *bool  `json:"save_on_hangup,omitempty"`
	AppendToExistingFile *bool  `json:"append_to_existing_file,omitempty"`
	MinLength            int    `json:"min_length,omitempty"`
	MaxLength            int    `json:"max_length,omitempty"`
}

func (RecordOptions) Mode() ReadMode            { return ReadModeRecord }
func (o RecordOptions) General() GeneralOptions { return o.GeneralOptions }

// Merge returns o with every field set in over replacing its counterpart.
func (o RecordOptions) Merge(over RecordOptions) RecordOptions {
	o.GeneralOptions = o.GeneralOptions.merge(over.GeneralOptions)
	o.Path = pickString(o.Path, over.Path)
	o.FileName = pickString(o.FileName, over.FileName)
	o.NoConfirmMenu = pick(o.NoConfirmMenu, over.NoConfirmMenu)
	o.SaveOnHangup = pick(o.SaveOnHangup, over.SaveOnHangup)
	o.AppendToExistingFile = pick(o.AppendToExistingFile, over.AppendToExistingFile)
	o.MinLength = pickInt(o.MinLength, over.MinLength)
	o.MaxLength = pickInt(o.MaxLength, over.MaxLength)
	return o
}

// IDListMessageOptions configure id_list_message.
type IDListMessageOptions struct {
	RemoveInvalidChars *bool `json:"remove_invalid_chars,omitempty"`
	// PrependToNextAction keeps the call running and prefixes the message to
	// the next instruction instead of ending the call.
	PrependToNextAction *bool `json:"prepend_to_next_action,omitempty"`
}

// Merge returns o with every field set in over replacing its counterpart.
func (o IDListMessageOptions) Merge(over IDListMessageOptions) IDListMessageOptions {
	o.RemoveInvalidChars = pick(o.RemoveInvalidChars, over.RemoveInvalidChars)
	o.PrependToNextAction = pick(o.PrependToNextAction, over.PrependToNextAction)
	return o
}

// DefaultTapOptions are the library defaults for keypad reads.
func DefaultTapOptions() TapOptions {
	return TapOptions{
		GeneralOptions:      GeneralOptions{ReEnterIfExists: Bool(false)},
		MinDigits:           Int(1),
		SecWait:             7,
		TypingPlaybackMode:  PlaybackNo,
		BlockAsteriskKey:    Bool(false),
		BlockZeroKey:        Bool(false),
		AllowEmpty:          Bool(false),
		EmptyVal:            "None",
		BlockChangeTypeLang: Bool(false),
	}
}

// DefaultSttOptions are the library defaults for speech reads.
func DefaultSttOptions() SttOptions {
	return SttOptions{
		GeneralOptions:              GeneralOptions{ReEnterIfExists: Bool(false)},
		BlockTyping:                 Bool(false),
		UseRecordsRecognitionEngine: Bool(false),
	}
}

// DefaultRecordOptions are the library defaults for recordings.
func DefaultRecordOptions() RecordOptions {
	return RecordOptions{
		GeneralOptions:       GeneralOptions{ReEnterIfExists: Bool(false)},
		NoConfirmMenu:        Bool(false),
		SaveOnHangup:         Bool(false),
		AppendToExistingFile: Bool(false),
	}
}

// IsSet reports whether p is non-nil and true.
func IsSet(p *bool) bool {
	return p != nil && *p
}

func pick(base, over *bool) *bool {
	if over != nil {
		return over
	}
	return base
}

func pickInt(base, over int) int {
	if over != 0 {
		return over
	}
	return base
}

func pickIntPtr(base, over *int) *int {
	if over != nil {
		return over
	}
	return base
}

func pickString(base, over string) string {
	if over != "" {
		return over
	}
	return base
}
