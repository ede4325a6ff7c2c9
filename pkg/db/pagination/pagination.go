package pagination

// Pagination binds offset-based paging parameters from the query string.
type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"page_size,default=25" validate:"gte=1,lte=250"` // Min 1, Max 250
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	HasMore    bool  `json:"has_more"`
}

func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 25
	}
	if p.PageSize > 250 {
		p.PageSize = 250
	}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func BuildPageInfo(p Pagination, total int64) *PageInfo {
	return &PageInfo{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: total,
		HasMore:    int64(p.Offset()+p.PageSize) < total,
	}
}
