package store

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Query carries list-fetch parameters. Filters are free-form key/value pairs
// forwarded to the API (owner IDs, categories, date ranges).
type Query struct {
	Page    int
	Limit   int
	SortBy  string
	Order   string // "asc" or "desc"
	Filters map[string]string
}

func (q Query) normalized() Query {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q
}

// signature identifies the filter shape of a query. Page is deliberately
// excluded: two queries with the same signature are pages of one result set,
// while a signature change resets pagination to page 1.
func (q Query) signature() string {
	parts := make([]string, 0, len(q.Filters)+3)
	parts = append(parts,
		"limit="+strconv.Itoa(q.Limit),
		"sort="+q.SortBy,
		"order="+q.Order,
	)
	for k, v := range q.Filters {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// encode renders the query string sent to the API.
func (q Query) encode() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	if q.SortBy != "" {
		values.Set("sort_by", q.SortBy)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	for k, v := range q.Filters {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values.Encode()
}
