package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/farhapartex/stream-search/internal/logging"
	"github.com/farhapartex/stream-search/internal/models"
)

const (
	// DefaultTwitchBaseURL is the streams search endpoint
	DefaultTwitchBaseURL = "https://api.twitch.tv/kraken/search/streams"

	twitchAcceptHeader = "application/vnd.twitchtv.v5+json"
	maxBodyBytes       = 4 << 20
)

// CallbackMode selects how responses are correlated with requests.
type CallbackMode string

const (
	// CallbackModeJSON sends a plain GET and reads the body as JSON.
	CallbackModeJSON CallbackMode = "json"
	// CallbackModeJSONP adds a callback parameter and expects the body
	// to be wrapped in a call to that name.
	CallbackModeJSONP CallbackMode = "jsonp"
)

// TwitchFetcher searches live streams on Twitch
type TwitchFetcher struct {
	baseURL string
	mode    CallbackMode
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	pending *pendingTable
}

// TwitchOption configures a TwitchFetcher
type TwitchOption func(*TwitchFetcher)

// WithTimeout bounds every request. Zero keeps the default.
func WithTimeout(d time.Duration) TwitchOption {
	return func(t *TwitchFetcher) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithCallbackMode sets the response correlation mode
func WithCallbackMode(mode CallbackMode) TwitchOption {
	return func(t *TwitchFetcher) {
		t.mode = mode
	}
}

// WithRateLimit throttles outgoing requests. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) TwitchOption {
	return func(t *TwitchFetcher) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) TwitchOption {
	return func(t *TwitchFetcher) {
		t.client = c
	}
}

// NewTwitchFetcher creates a new Twitch fetcher
func NewTwitchFetcher(baseURL string, opts ...TwitchOption) *TwitchFetcher {
	if baseURL == "" {
		baseURL = DefaultTwitchBaseURL
	}

	t := &TwitchFetcher{
		baseURL: baseURL,
		mode:    CallbackModeJSON,
		timeout: 10 * time.Second,
		client:  &http.Client{},
		pending: newPendingTable(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Name returns the platform name
func (t *TwitchFetcher) Name() string {
	return "twitch"
}

// Pending returns the number of requests still registered
func (t *TwitchFetcher) Pending() int {
	return t.pending.len()
}

// BuildURL returns the search URL for params. The same params always
// produce the same URL.
func (t *TwitchFetcher) BuildURL(params models.SearchParams) string {
	return t.baseURL + "?" + encodeParams(params).Encode()
}

func (t *TwitchFetcher) requestURL(params models.SearchParams, callback string) string {
	values := encodeParams(params)
	if t.mode == CallbackModeJSONP {
		values.Set("callback", callback)
	}
	return t.baseURL + "?" + values.Encode()
}

func encodeParams(params models.SearchParams) url.Values {
	values := url.Values{}
	values.Set("q", params.Query)
	values.Set("client_id", params.AuthToken)
	values.Set("offset", strconv.Itoa(params.Offset))
	values.Set("limit", strconv.Itoa(params.Limit))
	return values
}

// Fetch retrieves one page of streams matching params
func (t *TwitchFetcher) Fetch(ctx context.Context, params models.SearchParams) (*models.SearchResult, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search params: %w", err)
	}

	startTime := time.Now()
	id := NextCallbackName()

	resolved := t.pending.register(id)
	defer t.pending.remove(id)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	l := logging.Ctx(ctx)
	l.Debug().
		Str(logging.FieldCallback, id).
		Str(logging.FieldQuery, params.Query).
		Int(logging.FieldOffset, params.Offset).
		Int(logging.FieldLimit, params.Limit).
		Msg("twitch search request")

	go t.roundTrip(ctx, id, t.requestURL(params, id), params.AuthToken)

	var o outcome
	select {
	case o = <-resolved:
	case <-ctx.Done():
		o = outcome{err: t.contextError(ctx, id)}
	}
	if o.err != nil {
		return nil, o.err
	}

	var twitchResp TwitchSearchResponse
	if err := json.Unmarshal(o.body, &twitchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := models.NewSearchResult(params, id)
	result.TotalCount = twitchResp.Total
	for _, stream := range twitchResp.Streams {
		result.Items = append(result.Items, stream.toItem())
	}
	result.Duration = time.Since(startTime)

	l.Debug().
		Str(logging.FieldCallback, id).
		Int(logging.FieldTotal, result.TotalCount).
		Int(logging.FieldItems, len(result.Items)).
		Dur(logging.FieldDuration, result.Duration).
		Msg("twitch search completed")

	return result, nil
}

// roundTrip performs the GET and resolves id with the payload or error.
func (t *TwitchFetcher) roundTrip(ctx context.Context, id, searchURL, token string) {
	body, err := t.get(ctx, id, searchURL, token)
	if err != nil {
		t.pending.resolve(id, outcome{err: err})
		return
	}

	if t.mode != CallbackModeJSONP {
		t.pending.resolve(id, outcome{body: body})
		return
	}

	callback, payload, err := unwrapCallback(body)
	if err != nil {
		t.pending.resolve(id, outcome{err: &NetworkError{RequestID: id, Err: err}})
		return
	}
	if callback != id || !t.pending.resolve(callback, outcome{body: payload}) {
		t.pending.resolve(id, outcome{err: &NetworkError{
			RequestID: id,
			Err:       fmt.Errorf("%w: %q", ErrUnknownCallback, callback),
		}})
	}
}

func (t *TwitchFetcher) get(ctx context.Context, id, searchURL, token string) ([]byte, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, t.contextError(ctx, id)
			}
			return nil, &TimeoutError{RequestID: id, Timeout: t.timeout}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", twitchAcceptHeader)
	if token != "" {
		req.Header.Set("Client-ID", token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, t.contextError(ctx, id)
		}
		return nil, &NetworkError{RequestID: id, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, t.contextError(ctx, id)
		}
		return nil, &NetworkError{RequestID: id, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{RequestID: id, Code: resp.StatusCode, Body: TruncateString(string(body), 500)}
	}

	return body, nil
}

func (t *TwitchFetcher) contextError(ctx context.Context, id string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{RequestID: id, Timeout: t.timeout}
	}
	return &NetworkError{RequestID: id, Err: ctx.Err()}
}

// unwrapCallback splits `name({...});` into name and payload.
func unwrapCallback(body []byte) (string, []byte, error) {
	body = bytes.TrimSpace(body)
	body = bytes.TrimPrefix(body, []byte("/**/"))
	body = bytes.TrimSpace(body)
	body = bytes.TrimSuffix(body, []byte(";"))

	open := bytes.IndexByte(body, '(')
	if open <= 0 || body[len(body)-1] != ')' {
		return "", nil, errors.New("response is not wrapped in a callback")
	}

	name := string(bytes.TrimSpace(body[:open]))
	return name, body[open+1 : len(body)-1], nil
}

// TwitchSearchResponse represents the Twitch streams search response
type TwitchSearchResponse struct {
	Total   int            `json:"_total"`
	Streams []TwitchStream `json:"streams"`
}

// TwitchStream represents a live stream in search results
type TwitchStream struct {
	ID         int64         `json:"_id"`
	Game       string        `json:"game"`
	Viewers    int           `json:"viewers"`
	Preview    TwitchPreview `json:"preview"`
	Channel    TwitchChannel `json:"channel"`
	IsPlaylist bool          `json:"is_playlist"`
}

// TwitchPreview holds the preview image URLs of a stream
type TwitchPreview struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Template string `json:"template"`
}

// TwitchChannel represents the channel broadcasting a stream
type TwitchChannel struct {
	ID          int64  `json:"_id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	URL         string `json:"url"`
	Language    string `json:"language"`
	Followers   int    `json:"followers"`
}

func (s TwitchStream) toItem() models.StreamItem {
	return models.StreamItem{
		PreviewURL:  s.Preview.Medium,
		ChannelURL:  s.Channel.URL,
		ChannelName: s.Channel.DisplayName,
		Game:        s.Game,
		Viewers:     s.Viewers,
		Status:      s.Channel.Status,
	}
}
