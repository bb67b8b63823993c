package domain

// Message is a single item of a prompt sequence.
type Message struct {
	Type MessageType `json:"type"`
	Data string      `json:"data,omitempty"`
	// Zmanim is only read for MessageTypeZmanim.
	Zmanim *Zmanim `json:"zmanim,omitempty"`
	// RemoveInvalidChars overrides the operation and router level policy for this item.
	RemoveInvalidChars *bool `json:"remove_invalid_chars,omitempty"`
}

// Zmanim is the payload of a zmanim (halachic times) message.
type Zmanim struct {
	Time       string `json:"time,omitempty"`
	Zone       string `json:"zone,omitempty"`
	Difference string `json:"difference,omitempty"`
}

// Text is shorthand for a text-to-speech message item.
func Text(s string) Message {
	return Message{Type: MessageTypeText, Data: s}
}

// File is shorthand for a message item playing a stored file.
func File(path string) Message {
	return Message{Type: MessageTypeFile, Data: path}
}

// Digits is shorthand for a message item reading a digit string.
func Digits(s string) Message {
	return Message{Type: MessageTypeDigits, Data: s}
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}
