package view

import (
	"context"
	"errors"
	"sync"

	"github.com/farhapartex/stream-search/internal/models"
	"github.com/farhapartex/stream-search/internal/paging"
)

var (
	// ErrStale is returned by a navigation whose response arrived after a
	// newer navigation had been started.
	ErrStale = errors.New("superseded by a newer request")
	// ErrNoPage is returned when paginating before any search succeeded.
	ErrNoPage = errors.New("no search results to paginate")
)

// Searcher runs the first search of a session.
type Searcher interface {
	SearchParams(ctx context.Context, params models.SearchParams) (*paging.Page, error)
}

// Navigator holds the page a user is looking at. Overlapping requests are
// allowed; only the most recently started one may replace the current page.
type Navigator struct {
	searcher Searcher

	mu         sync.Mutex
	generation uint64
	current    *paging.Page
}

func NewNavigator(searcher Searcher) *Navigator {
	return &Navigator{searcher: searcher}
}

// Current returns the last committed page, nil before the first search.
func (n *Navigator) Current() *paging.Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Search starts a new search for params.
func (n *Navigator) Search(ctx context.Context, params models.SearchParams) (*paging.Page, error) {
	gen := n.begin()
	page, err := n.searcher.SearchParams(ctx, params)
	return n.commit(gen, page, err)
}

// Next moves to the page after the current one.
func (n *Navigator) Next(ctx context.Context) (*paging.Page, error) {
	return n.navigate(ctx, func(p *paging.Page) (*paging.Page, error) {
		return p.NextPage(ctx)
	})
}

// Previous moves to the page before the current one.
func (n *Navigator) Previous(ctx context.Context) (*paging.Page, error) {
	return n.navigate(ctx, func(p *paging.Page) (*paging.Page, error) {
		return p.PreviousPage(ctx)
	})
}

// GoTo moves to page number i of the current search.
func (n *Navigator) GoTo(ctx context.Context, i int) (*paging.Page, error) {
	return n.navigate(ctx, func(p *paging.Page) (*paging.Page, error) {
		return p.FetchPage(ctx, i)
	})
}

func (n *Navigator) navigate(ctx context.Context, move func(*paging.Page) (*paging.Page, error)) (*paging.Page, error) {
	n.mu.Lock()
	from := n.current
	if from == nil {
		n.mu.Unlock()
		return nil, ErrNoPage
	}
	n.generation++
	gen := n.generation
	n.mu.Unlock()

	page, err := move(from)
	return n.commit(gen, page, err)
}

func (n *Navigator) begin() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generation++
	return n.generation
}

func (n *Navigator) commit(gen uint64, page *paging.Page, err error) (*paging.Page, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if gen != n.generation {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	n.current = page
	return page, nil
}
