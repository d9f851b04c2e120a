package models

import (
	"errors"
	"time"
)

const (
	// DefaultLimit is the page size used when none is requested.
	DefaultLimit = 5
	// DefaultOffset is the offset of the first page.
	DefaultOffset = 0
)

var (
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidOffset = errors.New("offset cannot be negative")
)

// SearchParams are the parameters of one search request.
// It is a value type: derive new params with WithOffset instead of mutating.
type SearchParams struct {
	Query     string
	AuthToken string
	Offset    int
	Limit     int
}

// NewSearchParams builds params for the first page of a query
func NewSearchParams(query, authToken string) SearchParams {
	return SearchParams{
		Query:     query,
		AuthToken: authToken,
		Offset:    DefaultOffset,
		Limit:     DefaultLimit,
	}
}

// WithOffset returns a copy of p starting at offset
func (p SearchParams) WithOffset(offset int) SearchParams {
	p.Offset = offset
	return p
}

// WithLimit returns a copy of p with a different page size
func (p SearchParams) WithLimit(limit int) SearchParams {
	p.Limit = limit
	return p
}

// Validate checks the offset/limit invariants
func (p SearchParams) Validate() error {
	if p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if p.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// StreamItem is one live stream as displayed in a result list.
type StreamItem struct {
	PreviewURL  string `json:"preview_url"`
	ChannelURL  string `json:"channel_url"`
	ChannelName string `json:"channel_name"`
	Game        string `json:"game"`
	Viewers     int    `json:"viewers"`
	Status      string `json:"status"`
}

// SearchResult is one page of search results together with the params
// that produced it.
type SearchResult struct {
	TotalCount int
	Items      []StreamItem
	Params     SearchParams
	RequestID  string
	Duration   time.Duration
}

func NewSearchResult(params SearchParams, requestID string) *SearchResult {
	return &SearchResult{
		Params:    params,
		RequestID: requestID,
		Items:     make([]StreamItem, 0),
	}
}
