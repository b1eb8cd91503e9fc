package shared

import (
	"math"
	"net/url"
	"strconv"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageFromQuery reads page/per_page query parameters with defaults.
func PageFromQuery(values url.Values) (page, perPage int) {
	page, _ = strconv.Atoi(values.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ = strconv.Atoi(values.Get("per_page"))
	if perPage <= 0 || perPage > 500 {
		perPage = 50
	}
	return page, perPage
}

// Offset converts the page/perPage pair to a row offset.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}
