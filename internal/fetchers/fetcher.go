package fetchers

import (
	"context"

	"github.com/farhapartex/stream-search/internal/models"
)

// Fetcher is the interface that all stream search clients must implement
type Fetcher interface {
	// Fetch retrieves one page of search results
	// ctx: context bounding the request
	// params: query, token, offset and limit of the page
	Fetch(ctx context.Context, params models.SearchParams) (*models.SearchResult, error)

	// Name returns the platform name
	Name() string
}
