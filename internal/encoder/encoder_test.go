package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

func TestTapReadWithAllowedDigits(t *testing.T) {
	e := New(DefaultGrammar(), false)
	opts := domain.DefaultTapOptions().Merge(domain.TapOptions{
		GeneralOptions: domain.GeneralOptions{ValName: "val_1"},
		MaxDigits:      1,
		DigitsAllowed:  []string{"1"},
	})

	got, err := e.Read([]domain.Message{domain.Text("שלום, הקש 1 להמשך")}, opts)
	require.NoError(t, err)
	assert.Equal(t, "read=t-שלום, הקש 1 להמשך=val_1,no,1,1,7,No,no,no,,1,,no,None,", got)
}

func TestTapReadZeroMinDigits(t *testing.T) {
	e := New(DefaultGrammar(), false)
	opts := domain.DefaultTapOptions().Merge(domain.TapOptions{
		GeneralOptions: domain.GeneralOptions{ValName: "val_1"},
		MaxDigits:      3,
		MinDigits:      domain.Int(0),
	})

	got, err := e.Read([]domain.Message{domain.Text("הקש")}, opts)
	require.NoError(t, err)
	assert.Equal(t, "read=t-הקש=val_1,no,3,0,7,No,no,no,,,,no,None,", got)
}

func TestTapReadAllFields(t *testing.T) {
	e := New(DefaultGrammar(), false)
	opts := domain.DefaultTapOptions().Merge(domain.TapOptions{
		GeneralOptions:      domain.GeneralOptions{ValName: "pin", ReEnterIfExists: domain.Bool(true)},
		MaxDigits:           4,
		MinDigits:           domain.Int(4),
		SecWait:             10,
		TypingPlaybackMode:  domain.PlaybackDigits,
		BlockAsteriskKey:    domain.Bool(true),
		ReplaceChar:         "*/",
		DigitsAllowed:       []string{"1", "2", "3"},
		AmountAttempts:      2,
		AllowEmpty:          domain.Bool(true),
		EmptyVal:            "empty",
		BlockChangeTypeLang: domain.Bool(true),
	})

	got, err := e.Read([]domain.Message{domain.File("001"), domain.Text("enter pin")}, opts)
	require.NoError(t, err)
	assert.Equal(t, "read=f-001.t-enter pin=pin,yes,4,4,10,Digits,yes,no,*/,1.2.3,2,Ok,empty,InsertLettersTypeChangeNo", got)
}

func TestSttAndRecordReads(t *testing.T) {
	e := New(DefaultGrammar(), false)

	stt := domain.DefaultSttOptions().Merge(domain.SttOptions{
		GeneralOptions:              domain.GeneralOptions{ValName: "name"},
		Lang:                        "he-IL",
		BlockTyping:                 domain.Bool(true),
		UseRecordsRecognitionEngine: domain.Bool(true),
		QuietMax:                    3,
	})
	got, err := e.Read([]domain.Message{domain.Text("say your name")}, stt)
	require.NoError(t, err)
	assert.Equal(t, "read=t-say your name=name,no,voice,he-IL,no,,record,3,", got)

	rec := domain.DefaultRecordOptions().Merge(domain.RecordOptions{
		GeneralOptions: domain.GeneralOptions{ValName: "msg"},
		Path:           "/5",
		FileName:       "greeting",
		NoConfirmMenu:  domain.Bool(true),
		SaveOnHangup:   domain.Bool(true),
		MaxLength:      60,
	})
	got, err = e.Read([]domain.Message{domain.Text("record after the tone")}, rec)
	require.NoError(t, err)
	assert.Equal(t, "read=t-record after the tone=msg,no,record,/5,greeting,no,yes,no,,60", got)
}

func TestReadRequiresValName(t *testing.T) {
	e := New(DefaultGrammar(), false)
	_, err := e.Read(nil, domain.DefaultTapOptions())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "val_name", verr.Field)
}

func TestSanitizationLevels(t *testing.T) {
	msgs := func(item *bool) []domain.Message {
		return []domain.Message{{Type: domain.MessageTypeText, Data: `it's 5.30 - "now"`, RemoveInvalidChars: item}}
	}

	tests := []struct {
		name      string
		router    bool
		operation *bool
		item      *bool
		wantErr   bool
	}{
		{name: "no level authorizes", wantErr: true},
		{name: "explicit false everywhere", operation: domain.Bool(false), item: domain.Bool(false), wantErr: true},
		{name: "item authorizes", item: domain.Bool(true)},
		{name: "operation authorizes", operation: domain.Bool(true)},
		{name: "router authorizes", router: true},
		{name: "item refuses over router", router: true, item: domain.Bool(false), wantErr: true},
		{name: "item refuses over operation", operation: domain.Bool(true), item: domain.Bool(false), wantErr: true},
		{name: "operation refuses over router", router: true, operation: domain.Bool(false), wantErr: true},
		{name: "item authorizes over operation", operation: domain.Bool(false), item: domain.Bool(true)},
		{name: "operation authorizes over router", router: false, operation: domain.Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(DefaultGrammar(), tt.router)
			got, err := e.IDListMessage(msgs(tt.item), domain.IDListMessageOptions{RemoveInvalidChars: tt.operation})
			if tt.wantErr {
				var verr *domain.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "messages[0].data", verr.Field)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "id_list_message=t-its 530  now", got)
		})
	}
}

func TestMessageTypes(t *testing.T) {
	e := New(DefaultGrammar(), false)
	got, err := e.Messages([]domain.Message{
		{Type: domain.MessageTypeSpeech, Data: "hello"},
		{Type: domain.MessageTypeDigits, Data: "123"},
		{Type: domain.MessageTypeNumber, Data: "45"},
		{Type: domain.MessageTypeAlpha, Data: "abc"},
		{Type: domain.MessageTypeZmanim, Zmanim: &domain.Zmanim{Time: "sunset", Zone: "IL/Jerusalem"}},
		{Type: domain.MessageTypeGoToFolder, Data: "/2"},
		{Type: domain.MessageTypeSystemMessage, Data: "M1005"},
		{Type: domain.MessageTypeMusicOnHold, Data: "moh"},
		{Type: domain.MessageTypeDate, Data: "10/10/2026"},
		{Type: domain.MessageTypeDateH, Data: "10/10/2026"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "s-hello.d-123.n-45.a-abc.z-sunset*IL/Jerusalem.g-/2.m-M1005.h-moh.date-10/10/2026.dateH-10/10/2026", got)
}

func TestUnknownMessageType(t *testing.T) {
	e := New(DefaultGrammar(), false)
	_, err := e.Messages([]domain.Message{{Type: "video", Data: "x"}}, nil)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "messages[0].type", verr.Field)
}

func TestTerminalInstructions(t *testing.T) {
	e := New(DefaultGrammar(), false)

	got, err := e.GoToFolder("/1/2")
	require.NoError(t, err)
	assert.Equal(t, "go_to_folder=/1/2", got)

	_, err = e.GoToFolder(" ")
	assert.Error(t, err)

	got, err = e.RoutingYemot("0773137770")
	require.NoError(t, err)
	assert.Equal(t, "routing_yemot=0773137770", got)

	_, err = e.RoutingYemot("077-313")
	assert.Error(t, err)

	assert.Equal(t, "go_to_folder=hangup", e.Hangup())
	assert.Equal(t, "go_to_folder=/3/1", e.RestartExt("3/1"))

	_, err = e.IDListMessage(nil, domain.IDListMessageOptions{})
	assert.Error(t, err)
}

func TestJoinSkipsEmptyParts(t *testing.T) {
	e := New(DefaultGrammar(), false)
	assert.Equal(t, "id_list_message=t-hi&go_to_folder=hangup", e.Join("", "id_list_message=t-hi", "go_to_folder=hangup"))
	assert.Equal(t, "", e.Join())
}
