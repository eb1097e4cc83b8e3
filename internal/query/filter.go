// Package query turns raw listing parameters into a validated Filter and
// the SQL predicates shared by every read of the transactions table.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilter is returned for malformed filter parameters.
var ErrInvalidFilter = errors.New("invalid filter")

// Params are the raw, untrusted query-string values.
type Params struct {
	Months      string `form:"months"`
	Years       string `form:"years"`
	CategoryID  string `form:"category_id"`
	Description string `form:"description"`
}

// Filter is the normalized set of listing constraints. Empty Months or Years
// place no restriction on that axis. All present fields are AND'ed.
type Filter struct {
	Months      []int
	Years       []int
	CategoryID  *string
	Description string
}

// IsEmpty reports whether f restricts nothing beyond the owner.
func (f Filter) IsEmpty() bool {
	return len(f.Months) == 0 && len(f.Years) == 0 && f.CategoryID == nil && f.Description == ""
}

// ParseFilter validates p. It has no side effects.
func ParseFilter(p Params) (Filter, error) {
	var f Filter
	var err error

	if f.Months, err = parseList("months", p.Months, 1, 12); err != nil {
		return Filter{}, err
	}
	if f.Years, err = parseList("years", p.Years, 1, 9999); err != nil {
		return Filter{}, err
	}
	if p.CategoryID != "" {
		id := p.CategoryID
		f.CategoryID = &id
	}
	f.Description = p.Description
	return f, nil
}

// parseList splits a comma-delimited list of integers. Blank tokens are
// skipped and duplicates collapse, keeping first-seen order.
func parseList(field, raw string, lo, hi int) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []int
	seen := make(map[int]bool)
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %s value %q is not a number", ErrInvalidFilter, field, tok)
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("%w: %s value %d out of range %d-%d", ErrInvalidFilter, field, n, lo, hi)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
