// Package policy validates read options with OPA rules.
package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content. The
// policy must define data.read_options.deny as a set of messages.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.read_options.deny"),
		rego.Module("read_options.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Validate checks merged read options. It returns a ValidationError listing
// the first violation, or nil.
func (e *Engine) Validate(ctx context.Context, opts domain.ReadOptions) error {
	input, err := toInput(opts)
	if err != nil {
		return err
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return nil
	}

	raw, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(raw) == 0 {
		return nil
	}
	violations := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			violations = append(violations, s)
		}
	}
	if len(violations) == 0 {
		return nil
	}
	sort.Strings(violations)
	return &domain.ValidationError{Field: string(opts.Mode()), Message: violations[0]}
}

func toInput(opts domain.ReadOptions) (map[string]interface{}, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}
	var options map[string]interface{}
	if err := json.Unmarshal(b, &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return map[string]interface{}{
		"mode":    string(opts.Mode()),
		"options": options,
	}, nil
}

// DefaultPolicy rejects malformed or contradictory read options.
const DefaultPolicy = `
package read_options

valid_keys = {"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "*", "#"}

deny[msg] {
	input.options.min_digits > input.options.max_digits
	input.options.max_digits > 0
	msg := "min_digits must not exceed max_digits"
}

deny[msg] {
	input.mode == "tap"
	key := input.options.digits_allowed[_]
	not valid_keys[key]
	msg := sprintf("digits_allowed contains invalid key %q", [key])
}

deny[msg] {
	input.mode == "tap"
	count(input.options.replace_char) != 0
	count(input.options.replace_char) != 2
	msg := "replace_char must be a pair of characters"
}

deny[msg] {
	some field
	numeric := {"max_digits", "min_digits", "sec_wait", "amount_attempts", "quiet_max", "length_max", "min_length", "max_length"}
	numeric[field]
	input.options[field] < 0
	msg := sprintf("%s must not be negative", [field])
}

deny[msg] {
	input.mode == "record"
	input.options.min_length > input.options.max_length
	input.options.max_length > 0
	msg := "min_length must not exceed max_length"
}

deny[msg] {
	input.mode == "tap"
	input.options.block_zero_key
	valid := {k | k := input.options.digits_allowed[_]}
	count(valid) == 1
	valid["0"]
	msg := "digits_allowed only permits the blocked zero key"
}
`
