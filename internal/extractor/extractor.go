// Package extractor reads captured values out of inbound switch requests.
package extractor

import (
	"net/url"
	"strconv"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Pending describes the read a call is waiting on.
type Pending struct {
	Mode       domain.ReadMode
	ValName    string
	ReEnter    bool
	AllowEmpty bool
	EmptyVal   string
}

// Extract returns the value supplied for p in params. ok is false when the
// request does not carry an answer to the pending read.
func Extract(params url.Values, p Pending) (value string, ok bool) {
	vals, present := params[p.ValName]
	if !present || len(vals) == 0 {
		return "", false
	}
	value = vals[len(vals)-1]
	if value != "" {
		return value, true
	}
	if p.AllowEmpty {
		return p.EmptyVal, true
	}
	return "", false
}

// Reusable returns the stored value for p when the read should not ask again.
func Reusable(p Pending, stored []domain.Value) (string, bool) {
	if p.ReEnter {
		return "", false
	}
	for _, v := range stored {
		if v.Name == p.ValName {
			return v.Value, true
		}
	}
	return "", false
}

// AutoName returns the n-th automatic value name, starting at 1.
func AutoName(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}
