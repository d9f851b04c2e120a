package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farhapartex/stream-search/internal/config"
	"github.com/farhapartex/stream-search/internal/fetchers"
	"github.com/farhapartex/stream-search/internal/logging"
	"github.com/farhapartex/stream-search/internal/models"
	"github.com/farhapartex/stream-search/internal/paging"
)

const maxQueryLength = 500

var (
	ErrInvalidRequest = errors.New("invalid search request")
	ErrMissingToken   = errors.New("client id is required")
)

// SearchRequest is a search as it arrives from a user: raw, possibly
// incomplete values.
type SearchRequest struct {
	Query  string
	Token  string
	Offset int
	Limit  int
}

// SearchHandler turns user requests into fetched pages
type SearchHandler struct {
	fetcher fetchers.Fetcher
	config  *config.Config
	policy  paging.OffsetPolicy
}

// NewSearchHandler creates a search handler backed by the Twitch API
func NewSearchHandler(cfg *config.Config) (*SearchHandler, error) {
	fetcher := fetchers.NewTwitchFetcher(
		cfg.Twitch.BaseURL,
		fetchers.WithTimeout(cfg.Server.PerAPITimeout),
		fetchers.WithCallbackMode(fetchers.CallbackMode(cfg.Twitch.CallbackMode)),
		fetchers.WithRateLimit(cfg.Performance.RateLimitRPS, cfg.Performance.RateLimitBurst),
	)

	return NewSearchHandlerWithFetcher(cfg, fetcher)
}

// NewSearchHandlerWithFetcher creates a search handler using fetcher
func NewSearchHandlerWithFetcher(cfg *config.Config, fetcher fetchers.Fetcher) (*SearchHandler, error) {
	policy, err := paging.ParsePolicy(cfg.Twitch.PagePolicy)
	if err != nil {
		return nil, err
	}

	return &SearchHandler{
		fetcher: fetcher,
		config:  cfg,
		policy:  policy,
	}, nil
}

// Fetcher returns the client pages navigate with
func (h *SearchHandler) Fetcher() fetchers.Fetcher {
	return h.fetcher
}

// Policy returns the offset policy given to every page
func (h *SearchHandler) Policy() paging.OffsetPolicy {
	return h.policy
}

// Params validates req and fills in defaults
func (h *SearchHandler) Params(req SearchRequest) (models.SearchParams, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return models.SearchParams{}, fmt.Errorf("%w: query cannot be empty", ErrInvalidRequest)
	}
	if len(query) > maxQueryLength {
		return models.SearchParams{}, fmt.Errorf("%w: query too long (max %d characters)", ErrInvalidRequest, maxQueryLength)
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = h.config.Twitch.ClientID
	}
	if token == "" {
		return models.SearchParams{}, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrMissingToken)
	}

	params := models.NewSearchParams(query, token).WithLimit(h.config.Twitch.DefaultLimit)
	switch {
	case req.Limit < 0:
		return models.SearchParams{}, fmt.Errorf("%w: %w", ErrInvalidRequest, models.ErrInvalidLimit)
	case req.Limit > h.config.Twitch.MaxLimit:
		params = params.WithLimit(h.config.Twitch.MaxLimit)
	case req.Limit > 0:
		params = params.WithLimit(req.Limit)
	}

	if req.Offset < 0 {
		return models.SearchParams{}, fmt.Errorf("%w: %w", ErrInvalidRequest, models.ErrInvalidOffset)
	}

	return params.WithOffset(req.Offset), nil
}

// Search fetches the page described by req
func (h *SearchHandler) Search(ctx context.Context, req SearchRequest) (*paging.Page, error) {
	params, err := h.Params(req)
	if err != nil {
		return nil, err
	}

	return h.SearchParams(ctx, params)
}

// SearchParams fetches the page described by already validated params
func (h *SearchHandler) SearchParams(ctx context.Context, params models.SearchParams) (*paging.Page, error) {
	startTime := time.Now()
	l := logging.Ctx(ctx)

	if h.config.Server.ServerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Server.ServerTimeout)
		defer cancel()
	}

	result, err := h.fetcher.Fetch(ctx, params)
	if err != nil {
		l.Warn().Err(err).
			Str(logging.FieldPlatform, h.fetcher.Name()).
			Str(logging.FieldQuery, params.Query).
			Int(logging.FieldOffset, params.Offset).
			Dur(logging.FieldDuration, time.Since(startTime)).
			Msg("search failed")
		return nil, err
	}

	page, err := paging.New(result, h.fetcher, h.policy)
	if err != nil {
		return nil, err
	}

	l.Info().
		Str(logging.FieldPlatform, h.fetcher.Name()).
		Str(logging.FieldQuery, params.Query).
		Int(logging.FieldTotal, page.TotalCount()).
		Int(logging.FieldPage, page.CurrentPage()).
		Int(logging.FieldTotalPages, page.TotalPages()).
		Dur(logging.FieldDuration, time.Since(startTime)).
		Msg("search completed")

	return page, nil
}

// ErrorKind groups errors the way every front end reports them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalid
	KindTimeout
	KindUpstream
	KindEmpty
)

// Classify maps err to the kind of failure it represents
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, models.ErrInvalidLimit),
		errors.Is(err, models.ErrInvalidOffset):
		return KindInvalid
	case errors.Is(err, fetchers.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, paging.ErrEmptyResult):
		return KindEmpty
	case errors.Is(err, fetchers.ErrNetwork):
		return KindUpstream
	default:
		return KindInternal
	}
}
