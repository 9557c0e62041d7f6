package helpers

import (
	"net/http"
	"strconv"

	"skyspotter/internal/domain"
)

// Window bounds for list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// queryInt returns the named query parameter as a positive integer.
func queryInt(r *http.Request, key string) (int, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// ParsePagination extracts page and page_size from the query string. Missing,
// non-numeric, or out-of-range values fall back to the defaults; page_size is
// capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	p := domain.PaginationParams{Page: DefaultPage, PageSize: DefaultPageSize}
	if v, ok := queryInt(r, "page"); ok {
		p.Page = v
	}
	if v, ok := queryInt(r, "page_size"); ok {
		p.PageSize = min(v, MaxPageSize)
	}
	return p
}

// PaginationMeta echoes the window a list response covers.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta derives the metadata for one page out of total items.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	meta := PaginationMeta{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		meta.TotalPages = (total + pageSize - 1) / pageSize
	}
	return meta
}
