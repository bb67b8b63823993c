package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestValidOptionsPass(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	assert.NoError(t, e.Validate(ctx, domain.DefaultTapOptions().Merge(domain.TapOptions{
		MaxDigits:     1,
		DigitsAllowed: []string{"1", "*"},
		ReplaceChar:   "*/",
	})))
	assert.NoError(t, e.Validate(ctx, domain.DefaultSttOptions()))
	assert.NoError(t, e.Validate(ctx, domain.DefaultRecordOptions().Merge(domain.RecordOptions{MinLength: 2, MaxLength: 30})))
}

func TestContradictoryOptionsRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name string
		opts domain.ReadOptions
		want string
	}{
		{
			name: "min above max",
			opts: domain.DefaultTapOptions().Merge(domain.TapOptions{MinDigits: domain.Int(5), MaxDigits: 2}),
			want: "min_digits must not exceed max_digits",
		},
		{
			name: "invalid allowed key",
			opts: domain.TapOptions{DigitsAllowed: []string{"1", "x"}},
			want: `digits_allowed contains invalid key "x"`,
		},
		{
			name: "replace char not a pair",
			opts: domain.TapOptions{ReplaceChar: "*"},
			want: "replace_char must be a pair of characters",
		},
		{
			name: "negative wait",
			opts: domain.TapOptions{SecWait: -1},
			want: "sec_wait must not be negative",
		},
		{
			name: "record lengths",
			opts: domain.RecordOptions{MinLength: 10, MaxLength: 5},
			want: "min_length must not exceed max_length",
		},
		{
			name: "only blocked zero allowed",
			opts: domain.TapOptions{BlockZeroKey: domain.Bool(true), DigitsAllowed: []string{"0"}},
			want: "digits_allowed only permits the blocked zero key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Validate(ctx, tt.opts)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Message)
			assert.Equal(t, string(tt.opts.Mode()), verr.Field)
		})
	}
}

func TestInvalidPolicyFails(t *testing.T) {
	_, err := NewEngine(context.Background(), "package read_options\n deny[msg] {")
	assert.Error(t, err)
}
