package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		params  url.Values
		pending Pending
		want    string
		wantOK  bool
	}{
		{
			name:    "captured digits",
			params:  url.Values{"val_1": {"1"}},
			pending: Pending{Mode: domain.ReadModeTap, ValName: "val_1"},
			want:    "1",
			wantOK:  true,
		},
		{
			name:    "last value wins",
			params:  url.Values{"val_2": {"1", "7"}},
			pending: Pending{Mode: domain.ReadModeTap, ValName: "val_2"},
			want:    "7",
			wantOK:  true,
		},
		{
			name:    "missing parameter",
			params:  url.Values{"val_1": {"1"}},
			pending: Pending{Mode: domain.ReadModeTap, ValName: "val_2"},
		},
		{
			name:    "empty without permission",
			params:  url.Values{"pin": {""}},
			pending: Pending{Mode: domain.ReadModeTap, ValName: "pin"},
		},
		{
			name:    "empty substituted",
			params:  url.Values{"pin": {""}},
			pending: Pending{Mode: domain.ReadModeTap, ValName: "pin", AllowEmpty: true, EmptyVal: "None"},
			want:    "None",
			wantOK:  true,
		},
		{
			name:    "recording path",
			params:  url.Values{"msg": {"/5/000.wav"}},
			pending: Pending{Mode: domain.ReadModeRecord, ValName: "msg"},
			want:    "/5/000.wav",
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.params, tt.pending)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReusable(t *testing.T) {
	stored := []domain.Value{{Name: "val_1", Value: "3"}, {Name: "id", Value: "123456782"}}

	got, ok := Reusable(Pending{ValName: "id"}, stored)
	assert.True(t, ok)
	assert.Equal(t, "123456782", got)

	_, ok = Reusable(Pending{ValName: "id", ReEnter: true}, stored)
	assert.False(t, ok)

	_, ok = Reusable(Pending{ValName: "val_2"}, stored)
	assert.False(t, ok)
}

func TestAutoName(t *testing.T) {
	assert.Equal(t, "val_1", AutoName("val_", 1))
	assert.Equal(t, "val_12", AutoName("val_", 12))
}
