// AngelaMos | 2026
// page.go

package query

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	PrevPage   *int `json:"prev_page"`
	NextPage   *int `json:"next_page"`
}

// NewPageInfo clamps page into [1, TotalPages]. There is always at least one
// page, even when total is zero.
func NewPageInfo(total, page, perPage int) PageInfo {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	page = min(max(page, 1), totalPages)

	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}

	if info.HasPrev {
		prev := page - 1
		info.PrevPage = &prev
	}
	if info.HasNext {
		next := page + 1
		info.NextPage = &next
	}

	return info
}

func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p PageInfo) Limit() int {
	return p.PerPage
}

// Params is the page request as it arrives from a handler.
type Params struct {
	Page    int
	PerPage int
}

// Normalize caps PerPage; page clamping waits until the total is known.
func (p Params) Normalize() Params {
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// FromRequest reads ?page= and ?per_page=; unparsable values fall back to
// the defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	return Params{
		Page:    intParam(q.Get("page"), 1),
		PerPage: intParam(q.Get("per_page"), DefaultPerPage),
	}.Normalize()
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

type Counter func(ctx context.Context) (int, error)

type Fetcher[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// Paginate counts the filtered rows, clamps the requested page and fetches
// that page. An out-of-range page yields the last page, not an error.
func Paginate[T any](
	ctx context.Context,
	params Params,
	count Counter,
	fetch Fetcher[T],
) ([]T, PageInfo, error) {
	params = params.Normalize()

	total, err := count(ctx)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("count: %w", err)
	}

	info := NewPageInfo(total, params.Page, params.PerPage)
	if total == 0 {
		return []T{}, info, nil
	}

	items, err := fetch(ctx, info.Limit(), info.Offset())
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("fetch page: %w", err)
	}
	if items == nil {
		items = []T{}
	}

	return items, info, nil
}

// Slice applies info to an already filtered and ordered slice.
func Slice[T any](items []T, info PageInfo) []T {
	start := min(info.Offset(), len(items))
	end := min(start+info.Limit(), len(items))
	return items[start:end]
}
