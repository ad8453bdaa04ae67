package datasource

import "github.com/nrfta/datasource-go/offset"

// PaginationView is the pagination part of a View.
//
// TotalCount, PageCount and HasNextPage are only known once a result has been
// computed; before that TotalCount is nil and the others are zero.
type PaginationView struct {
	Page            int    `json:"page"`
	MaxResults      int    `json:"maxResults"`
	TotalCount      *int64 `json:"totalCount"`
	PageCount       int    `json:"pageCount"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// newPaginationView returns the pagination state, filled in from totalCount
// when it is known.
func newPaginationView(page, maxResults int, totalCount *int64) PaginationView {
	p := offset.New(page, maxResults)
	view := PaginationView{
		Page:            p.Page,
		MaxResults:      p.MaxResults,
		HasPreviousPage: p.Page > 1 && !p.Unlimited(),
	}
	if totalCount == nil {
		return view
	}

	count := *totalCount
	info := p.PageInfo(count)
	view.TotalCount = &count
	view.PageCount = info.PageCount
	view.HasNextPage = info.HasNextPage
	return view
}
