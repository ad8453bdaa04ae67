// Package offset provides page-number based pagination arithmetic.
//
// A page is addressed by a 1-based page number and a maxResults page size,
// with offset = (page-1)*maxResults. A maxResults of zero means unlimited:
// everything is on page one.
//
// Example usage:
//
//	paginator := offset.New(page, maxResults)
//	mods := paginator.QueryMods()
//	results, err := models.Items(mods...).All(ctx, db)
//	info := paginator.PageInfo(totalCount)
package offset

import (
	"math"

	"github.com/aarondl/sqlboiler/v4/queries/qm"
)

// Paginator is the paginator for offset-based pagination.
// It encapsulates page, limit and offset for backend queries.
type Paginator struct {
	Page       int
	MaxResults int
	Limit      int
	Offset     int
}

// New creates a paginator for the given page and page size.
//
// The paginator normalises its input:
//   - page below 1 becomes 1
//   - maxResults below 0 becomes 0 (unlimited)
//   - with unlimited results there is a single page: the offset is always 0
//   - an offset too large for an int saturates at math.MaxInt
func New(page, maxResults int) Paginator {
	if page < 1 {
		page = 1
	}
	if maxResults < 0 {
		maxResults = 0
	}
	off := (page - 1) * maxResults
	if Overflows(page, maxResults) {
		off = math.MaxInt
	}
	return Paginator{
		Page:       page,
		MaxResults: maxResults,
		Limit:      maxResults,
		Offset:     off,
	}
}

// Overflows reports whether the offset of page does not fit in an int.
func Overflows(page, maxResults int) bool {
	return maxResults > 0 && page > 1 && page-1 > math.MaxInt/maxResults
}

// FromOffset rebuilds a paginator from a raw offset and limit, as handed to
// drivers. The page number is derived from the offset.
func FromOffset(offset, limit int) Paginator {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return Paginator{Page: page, MaxResults: limit, Limit: limit, Offset: offset}
}

// Unlimited reports whether the paginator returns everything.
func (p Paginator) Unlimited() bool {
	return p.Limit == 0
}

// QueryMods returns SQLBoiler query modifiers for pagination. Zero values are
// omitted so an unlimited first page adds no mods at all.
//
// Example usage:
//
//	items, err := models.Items(paginator.QueryMods()...).All(ctx, db)
func (p Paginator) QueryMods() []qm.QueryMod {
	mods := []qm.QueryMod{}
	if p.Offset > 0 {
		mods = append(mods, qm.Offset(p.Offset))
	}
	if p.Limit > 0 {
		mods = append(mods, qm.Limit(p.Limit))
	}
	return mods
}

// Window returns the slice bounds of the current page within a set of n
// items. Pages past the end yield an empty window at n.
func (p Paginator) Window(n int) (start, end int) {
	start = p.Offset
	if start > n {
		start = n
	}
	if p.Unlimited() {
		return start, n
	}
	end = start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}

// PageInfo describes where the current page sits within totalCount items.
type PageInfo struct {
	Page            int   `json:"page"`
	MaxResults      int   `json:"maxResults"`
	TotalCount      int64 `json:"totalCount"`
	PageCount       int   `json:"pageCount"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`

	// LastPageOffset is the offset of the first item on the final page.
	LastPageOffset int `json:"lastPageOffset"`
}

// PageInfo calculates page boundaries for totalCount matching items.
//
// The LastPageOffset calculation ensures the last page points to the start of
// the final page of results, complete or not.
func (p Paginator) PageInfo(totalCount int64) PageInfo {
	count := int(totalCount)
	info := PageInfo{
		Page:            p.Page,
		MaxResults:      p.MaxResults,
		TotalCount:      totalCount,
		HasPreviousPage: p.Page > 1 && !p.Unlimited(),
	}

	if p.Unlimited() {
		if count > 0 {
			info.PageCount = 1
		}
		return info
	}

	info.PageCount = (count + p.Limit - 1) / p.Limit

	endOffset := count - (count % p.Limit)
	if endOffset == count {
		endOffset = count - p.Limit
	}
	if endOffset < 0 {
		endOffset = 0
	}
	info.LastPageOffset = endOffset
	info.HasNextPage = p.Offset < count-p.Limit
	return info
}
