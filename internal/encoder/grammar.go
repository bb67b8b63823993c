// Package encoder renders call operations into the switch's instruction text.
package encoder

import "github.com/xiaot623/gogo/yemot-router/internal/domain"

// Grammar holds the separators and sentinel tokens of the wire format.
type Grammar struct {
	ItemSeparator    string
	DataSeparator    string
	FieldSeparator   string
	CommandSeparator string
	ListSeparator    string
	ZmanimSeparator  string

	Yes                 string
	No                  string
	AllowEmpty          string
	BlockChangeTypeLang string
	SttSelector         string
	RecordSelector      string
	HangupTarget        string

	// InvalidChars may not appear inside message data.
	InvalidChars string
	TypeCodes    map[domain.MessageType]string
}

// DefaultGrammar returns the grammar the switch speaks today.
func DefaultGrammar() Grammar {
	return Grammar{
		ItemSeparator:       ".",
		DataSeparator:       "-",
		FieldSeparator:      ",",
		CommandSeparator:    "&",
		ListSeparator:       ".",
		ZmanimSeparator:     "*",
		Yes:                 "yes",
		No:                  "no",
		AllowEmpty:          "Ok",
		BlockChangeTypeLang: "InsertLettersTypeChangeNo",
		SttSelector:         "voice",
		RecordSelector:      "record",
		HangupTarget:        "hangup",
		InvalidChars:        ".-'\"&|",
		TypeCodes: map[domain.MessageType]string{
			domain.MessageTypeFile:          "f",
			domain.MessageTypeText:          "t",
			domain.MessageTypeSpeech:        "s",
			domain.MessageTypeDigits:        "d",
			domain.MessageTypeNumber:        "n",
			domain.MessageTypeAlpha:         "a",
			domain.MessageTypeZmanim:        "z",
			domain.MessageTypeGoToFolder:    "g",
			domain.MessageTypeSystemMessage: "m",
			domain.MessageTypeMusicOnHold:   "h",
			domain.MessageTypeDate:          "date",
			domain.MessageTypeDateH:         "dateH",
		},
	}
}

func (g Grammar) flag(b *bool) string {
	if domain.IsSet(b) {
		return g.Yes
	}
	return g.No
}
