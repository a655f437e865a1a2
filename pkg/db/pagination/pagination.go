package pagination

// Pagination carries page-number pagination inputs from the query string.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"pageSize,default=20"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 250
)

// Normalize clamps page and page size into supported bounds.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the row limit for the normalized page.
func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}

// PageInfo describes the returned page.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// BuildPageInfo computes page metadata for a total row count.
func BuildPageInfo(p Pagination, totalCount int64) PageInfo {
	n := p.Normalize()
	totalPages := int(totalCount) / n.PageSize
	if int(totalCount)%n.PageSize != 0 {
		totalPages++
	}
	return PageInfo{
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
