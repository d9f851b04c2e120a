package view

import (
	"github.com/farhapartex/stream-search/internal/models"
	"github.com/farhapartex/stream-search/internal/paging"
)

// Summary is the serializable form of a page used by the JSON and gRPC
// fronts. Navigation offsets are nil when the control is hidden.
type Summary struct {
	Query          string              `json:"query"`
	Total          int                 `json:"total"`
	Page           int                 `json:"page"`
	TotalPages     int                 `json:"total_pages"`
	Offset         int                 `json:"offset"`
	Limit          int                 `json:"limit"`
	RequestID      string              `json:"request_id"`
	Items          []models.StreamItem `json:"items"`
	NextOffset     *int                `json:"next_offset,omitempty"`
	PreviousOffset *int                `json:"previous_offset,omitempty"`
}

// Summarize flattens page and resolves its navigation offsets
func Summarize(page *paging.Page) Summary {
	s := Summary{
		Query:      page.Params().Query,
		Total:      page.TotalCount(),
		Page:       page.CurrentPage(),
		TotalPages: page.TotalPages(),
		Offset:     page.Offset(),
		Limit:      page.Limit(),
		RequestID:  page.Result().RequestID,
		Items:      page.Items(),
	}
	if s.Items == nil {
		s.Items = []models.StreamItem{}
	}

	if page.HasNext() {
		s.NextOffset = navigationOffset(page, page.CurrentPage()+1)
	}
	if page.HasPrevious() {
		s.PreviousOffset = navigationOffset(page, page.CurrentPage()-1)
	}

	return s
}

func navigationOffset(page *paging.Page, n int) *int {
	offset, err := page.OffsetFor(n)
	if err != nil || offset < 0 {
		return nil
	}
	return &offset
}
