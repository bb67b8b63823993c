package encoder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

var numberPattern = regexp.MustCompile(`^[0-9]+$`)

// Encoder turns operations into instructions. It holds no per-call state.
type Encoder struct {
	grammar            Grammar
	removeInvalidChars bool
}

// New creates an encoder. removeInvalidChars is the router level sanitization
// policy.
func New(grammar Grammar, removeInvalidChars bool) *Encoder {
	return &Encoder{grammar: grammar, removeInvalidChars: removeInvalidChars}
}

// Grammar returns the grammar the encoder was built with.
func (e *Encoder) Grammar() Grammar {
	return e.grammar
}

// Messages encodes a message sequence. operation is the operation level
// sanitization override.
func (e *Encoder) Messages(msgs []domain.Message, operation *bool) (string, error) {
	parts := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		code, ok := e.grammar.TypeCodes[msg.Type]
		if !ok {
			return "", &domain.ValidationError{
				Field:   "messages[" + strconv.Itoa(i) + "].type",
				Message: "unknown message type " + strconv.Quote(string(msg.Type)),
			}
		}
		data, err := e.sanitize("messages["+strconv.Itoa(i)+"].data", e.render(msg), msg.RemoveInvalidChars, operation)
		if err != nil {
			return "", err
		}
		parts = append(parts, code+e.grammar.DataSeparator+data)
	}
	return strings.Join(parts, e.grammar.ItemSeparator), nil
}

func (e *Encoder) render(msg domain.Message) string {
	if msg.Type != domain.MessageTypeZmanim || msg.Zmanim == nil {
		return msg.Data
	}
	fields := []string{msg.Zmanim.Time, msg.Zmanim.Zone, msg.Zmanim.Difference}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, e.grammar.ZmanimSeparator)
}

// sanitize applies the three level policy: the most specific level that
// decides (item, then operation, then router) selects whether invalid
// characters are stripped or rejected.
func (e *Encoder) sanitize(field, data string, item, operation *bool) (string, error) {
	if !strings.ContainsAny(data, e.grammar.InvalidChars) {
		return data, nil
	}
	if e.strip(item, operation) {
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(e.grammar.InvalidChars, r) {
				return -1
			}
			return r
		}, data), nil
	}
	return "", &domain.ValidationError{
		Field:   field,
		Message: "data " + strconv.Quote(data) + " contains invalid characters " + strconv.Quote(e.grammar.InvalidChars),
	}
}

func (e *Encoder) strip(item, operation *bool) bool {
	switch {
	case item != nil:
		return *item
	case operation != nil:
		return *operation
	default:
		return e.removeInvalidChars
	}
}

// Read encodes a suspending read. opts must already be merged with defaults.
func (e *Encoder) Read(msgs []domain.Message, opts domain.ReadOptions) (string, error) {
	general := opts.General()
	if general.ValName == "" {
		return "", &domain.ValidationError{Field: "val_name", Message: "value name is required"}
	}
	body, err := e.Messages(msgs, general.RemoveInvalidChars)
	if err != nil {
		return "", err
	}

	var fields []string
	switch o := opts.(type) {
	case domain.TapOptions:
		fields = e.tapFields(o)
	case domain.SttOptions:
		fields = e.sttFields(o)
	case domain.RecordOptions:
		fields = e.recordFields(o)
	default:
		return "", &domain.ValidationError{Field: "mode", Message: "unsupported read options " + string(opts.Mode())}
	}
	return "read=" + body + "=" + strings.Join(fields, e.grammar.FieldSeparator), nil
}

func (e *Encoder) tapFields(o domain.TapOptions) []string {
	g := e.grammar
	allowEmpty := g.No
	if domain.IsSet(o.AllowEmpty) {
		allowEmpty = g.AllowEmpty
	}
	blockLang := ""
	if domain.IsSet(o.BlockChangeTypeLang) {
		blockLang = g.BlockChangeTypeLang
	}
	return []string{
		o.ValName,
		g.flag(o.ReEnterIfExists),
		number(o.MaxDigits),
		optionalNumber(o.MinDigits),
		number(o.SecWait),
		string(o.TypingPlaybackMode),
		g.flag(o.BlockAsteriskKey),
		g.flag(o.BlockZeroKey),
		o.ReplaceChar,
		strings.Join(o.DigitsAllowed, g.ListSeparator),
		number(o.AmountAttempts),
		allowEmpty,
		o.EmptyVal,
		blockLang,
	}
}

func (e *Encoder) sttFields(o domain.SttOptions) []string {
	g := e.grammar
	blockTyping := ""
	if domain.IsSet(o.BlockTyping) {
		blockTyping = g.No
	}
	engine := ""
	if domain.IsSet(o.UseRecordsRecognitionEngine) {
		engine = g.RecordSelector
	}
	return []string{
		o.ValName,
		g.flag(o.ReEnterIfExists),
		g.SttSelector,
		o.Lang,
		blockTyping,
		number(o.MaxDigits),
		engine,
		number(o.QuietMax),
		number(o.LengthMax),
	}
}

func (e *Encoder) recordFields(o domain.RecordOptions) []string {
	g := e.grammar
	confirm := g.Yes
	if domain.IsSet(o.NoConfirmMenu) {
		confirm = g.No
	}
	return []string{
		o.ValName,
		g.flag(o.ReEnterIfExists),
		g.RecordSelector,
		o.Path,
		o.FileName,
		confirm,
		g.flag(o.SaveOnHangup),
		g.flag(o.AppendToExistingFile),
		number(o.MinLength),
		number(o.MaxLength),
	}
}

// IDListMessage encodes a message played without capturing input.
func (e *Encoder) IDListMessage(msgs []domain.Message, opts domain.IDListMessageOptions) (string, error) {
	if len(msgs) == 0 {
		return "", &domain.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	body, err := e.Messages(msgs, opts.RemoveInvalidChars)
	if err != nil {
		return "", err
	}
	return "id_list_message=" + body, nil
}

// GoToFolder encodes a transfer to another folder of the system.
func (e *Encoder) GoToFolder(target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", &domain.ValidationError{Field: "target", Message: "folder is required"}
	}
	return "go_to_folder=" + target, nil
}

// RoutingYemot encodes a transfer to another system number.
func (e *Encoder) RoutingYemot(system string) (string, error) {
	if !numberPattern.MatchString(system) {
		return "", &domain.ValidationError{Field: "number", Message: "system number must be digits only"}
	}
	return "routing_yemot=" + system, nil
}

// Hangup encodes the disconnect command.
func (e *Encoder) Hangup() string {
	return "go_to_folder=" + e.grammar.HangupTarget
}

// RestartExt encodes a jump back to the start of extension.
func (e *Encoder) RestartExt(extension string) string {
	return "go_to_folder=/" + strings.TrimPrefix(extension, "/")
}

// Join chains instructions into one response.
func (e *Encoder) Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, e.grammar.CommandSeparator)
}

func number(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func optionalNumber(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
