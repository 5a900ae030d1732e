package domain

// Page is the pagination metadata returned alongside every list fetch. It
// always describes the last completed fetch, never a pending one.
type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PageFor computes the metadata for a page of size limit out of total items.
func PageFor(page, limit int, total int64) Page {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}
