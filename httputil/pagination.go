package httputil

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageParams is a parsed page/limit pair.
type PageParams struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip.
func (p PageParams) Offset() int { return (p.Page - 1) * p.Limit }

// ParsePage reads page and limit from the query string, falling back to
// defaults for missing or non-positive values and capping limit at MaxLimit.
func ParsePage(r *http.Request) PageParams {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), DefaultPage)
	if page < 1 {
		page = DefaultPage
	}
	limit := atoiDefault(q.Get("limit"), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageParams{Page: page, Limit: limit}
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// Paginated is the paging envelope returned by list endpoints.
type Paginated[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"total_docs"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"total_pages"`
	HasPrevPage bool `json:"has_prev_page"`
	HasNextPage bool `json:"has_next_page"`
	PrevPage    *int `json:"prev_page"`
	NextPage    *int `json:"next_page"`
}

// NewPaginated fills the paging metadata for one page of docs.
func NewPaginated[T any](docs []T, total int, p PageParams) Paginated[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	out := Paginated[T]{
		Docs:       docs,
		TotalDocs:  total,
		Limit:      p.Limit,
		Page:       p.Page,
		TotalPages: totalPages,
	}
	if p.Page > 1 {
		prev := p.Page - 1
		out.HasPrevPage = true
		out.PrevPage = &prev
	}
	if p.Page < totalPages {
		next := p.Page + 1
		out.HasNextPage = true
		out.NextPage = &next
	}
	return out
}
