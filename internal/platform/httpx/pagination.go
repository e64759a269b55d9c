package httpx

import (
	"net/http"
	"strconv"
)

const maxPerPage = 200

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata. Out of range inputs are clamped.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice range for the current page. Pages past
// the end yield an empty range at Total.
func (p Pagination) Bounds() (start, end int) {
	if p.PerPage <= 0 || p.Page <= 0 {
		return 0, 0
	}
	if p.Page-1 > p.Total/p.PerPage {
		return p.Total, p.Total
	}
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// PageParams reads page and perPage from the query string. ok is false when
// neither is present; a malformed value is reported in fields.
func PageParams(r *http.Request) (page, perPage int, ok bool, fields map[string]string) {
	q := r.URL.Query()
	fields = make(map[string]string)
	for _, name := range []string{"page", "perPage"} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		ok = true
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fields[name] = name + " must be a positive integer"
			continue
		}
		if name == "page" {
			page = n
		} else {
			perPage = n
		}
	}
	return page, perPage, ok, fields
}
