// Package paging derives page numbers from offset, limit and total count
// and fetches adjacent pages through a fetchers.Fetcher.
package paging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farhapartex/stream-search/internal/fetchers"
	"github.com/farhapartex/stream-search/internal/models"
)

// OffsetPolicy decides how a page number becomes an offset.
type OffsetPolicy string

const (
	// PolicyClamp keeps the page number inside [0, TotalPages].
	PolicyClamp OffsetPolicy = "clamp"
	// PolicyWrap computes (n*limit) mod total. A negative n gives a
	// negative offset, which FetchPage refuses.
	PolicyWrap OffsetPolicy = "wrap"
)

var ErrEmptyResult = errors.New("search returned no results")

// ParsePolicy maps a configuration value to an OffsetPolicy
func ParsePolicy(s string) (OffsetPolicy, error) {
	switch OffsetPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyClamp:
		return PolicyClamp, nil
	case PolicyWrap:
		return PolicyWrap, nil
	default:
		return "", fmt.Errorf("unknown page policy %q (valid: clamp, wrap)", s)
	}
}

// Page is one page of search results with navigation.
type Page struct {
	result  *models.SearchResult
	fetcher fetchers.Fetcher
	policy  OffsetPolicy
}

// New wraps result. The fetcher is used for every further navigation.
func New(result *models.SearchResult, fetcher fetchers.Fetcher, policy OffsetPolicy) (*Page, error) {
	if result == nil {
		return nil, errors.New("nil search result")
	}
	if result.Params.Limit <= 0 {
		return nil, models.ErrInvalidLimit
	}
	if policy == "" {
		policy = PolicyClamp
	}

	return &Page{result: result, fetcher: fetcher, policy: policy}, nil
}

func (p *Page) Result() *models.SearchResult { return p.result }
func (p *Page) Params() models.SearchParams { return p.result.Params }
func (p *Page) Items() []models.StreamItem { return p.result.Items }
func (p *Page) TotalCount() int { return p.result.TotalCount }
func (p *Page) Offset() int { return p.result.Params.Offset }
func (p *Page) Limit() int { return p.result.Params.Limit }
func (p *Page) Policy() OffsetPolicy { return p.policy }

// CurrentPage is floor(offset/limit)
func (p *Page) CurrentPage() int {
	if p.Limit() <= 0 || p.Offset() <= 0 {
		return 0
	}
	return p.Offset() / p.Limit()
}

// TotalPages is floor(totalCount/limit), 0 for an empty result
func (p *Page) TotalPages() int {
	if p.Limit() <= 0 || p.TotalCount() <= 0 {
		return 0
	}
	return p.TotalCount() / p.Limit()
}

// HasNext reports whether NextPage moves somewhere
func (p *Page) HasNext() bool {
	if p.policy == PolicyWrap {
		return p.TotalCount() > 0
	}
	return p.CurrentPage() < p.TotalPages()
}

// HasPrevious reports whether PreviousPage moves somewhere
func (p *Page) HasPrevious() bool {
	return p.TotalCount() > 0 && p.CurrentPage() > 0
}

// OffsetFor returns the offset of page n under the page's policy
func (p *Page) OffsetFor(n int) (int, error) {
	if p.TotalCount() <= 0 {
		return 0, ErrEmptyResult
	}

	switch p.policy {
	case PolicyWrap:
		return (n * p.Limit()) % p.TotalCount(), nil
	default:
		n = max(0, min(n, p.TotalPages()))
		return n * p.Limit(), nil
	}
}

// FetchPage fetches page n with the same query, token and limit
func (p *Page) FetchPage(ctx context.Context, n int) (*Page, error) {
	offset, err := p.OffsetFor(n)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("page %d maps to offset %d: %w", n, offset, models.ErrInvalidOffset)
	}

	result, err := p.fetcher.Fetch(ctx, p.Params().WithOffset(offset))
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", n, err)
	}

	return New(result, p.fetcher, p.policy)
}

// NextPage fetches CurrentPage()+1
func (p *Page) NextPage(ctx context.Context) (*Page, error) {
	return p.FetchPage(ctx, p.CurrentPage()+1)
}

// PreviousPage fetches CurrentPage()-1
func (p *Page) PreviousPage(ctx context.Context) (*Page, error) {
	return p.FetchPage(ctx, p.CurrentPage()-1)
}
