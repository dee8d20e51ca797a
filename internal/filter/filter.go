// Package filter derives the visible subset of a collection from a search
// term, a category and a created-date range.
package filter

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/dukerupert/dietdesk/internal/model"
)

// All disables the category predicate.
const All = "All"

// Filterable is implemented by records that can be searched and filtered.
type Filterable interface {
	SearchFields() []string
	CategoryValue() string
	Created() model.Date
}

// Criteria holds the filter inputs. A zero From or To leaves that end of the
// date range open.
type Criteria struct {
	Search   string
	Category string
	From     model.Date
	To       model.Date
}

// Match reports whether r satisfies all three predicates.
func (c Criteria) Match(r Filterable) bool {
	return c.matchSearch(r) && c.matchCategory(r) && c.matchDate(r)
}

func (c Criteria) matchSearch(r Filterable) bool {
	if c.Search == "" {
		return true
	}
	term := strings.ToLower(c.Search)
	for _, field := range r.SearchFields() {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (c Criteria) matchCategory(r Filterable) bool {
	if c.Category == "" || c.Category == All {
		return true
	}
	return strings.EqualFold(c.Category, r.CategoryValue())
}

func (c Criteria) matchDate(r Filterable) bool {
	created := r.Created()
	if !c.From.IsZero() && created.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && created.After(c.To) {
		return false
	}
	return true
}

// Apply returns the records of items matching c, in their original order.
func Apply[T Filterable](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if c.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// FromQuery reads search, from and to, plus the first non-empty of
// categoryParams (defaulting to "category"). The search term is used as
// typed, surrounding whitespace included.
func FromQuery(q url.Values, categoryParams ...string) (Criteria, error) {
	c := Criteria{Search: q.Get("search")}

	if len(categoryParams) == 0 {
		categoryParams = []string{"category"}
	}
	for _, p := range categoryParams {
		if v := strings.TrimSpace(q.Get(p)); v != "" {
			c.Category = v
			break
		}
	}

	if v := q.Get("from"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid from date: %w", err)
		}
		c.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid to date: %w", err)
		}
		c.To = d
	}
	return c, nil
}

// Memo caches the result for the most recent (version, criteria) pair only.
type Memo[T Filterable] struct {
	mu       sync.Mutex
	valid    bool
	version  uint64
	criteria Criteria
	result   []T
}

// Get returns the filtered view for the given collection version, calling
// load only when the version or criteria differ from the previous call.
func (m *Memo[T]) Get(version uint64, c Criteria, load func() []T) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && m.version == version && m.criteria == c {
		return slices.Clone(m.result)
	}
	m.result = Apply(load(), c)
	m.version = version
	m.criteria = c
	m.valid = true
	return slices.Clone(m.result)
}
