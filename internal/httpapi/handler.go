package httpapi

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/farhapartex/stream-search/internal/handlers"
	"github.com/farhapartex/stream-search/internal/logging"
	"github.com/farhapartex/stream-search/internal/view"
)

const headerClientID = "Client-ID"

// searchQuery is the query string of both search routes.
type searchQuery struct {
	Query  string `form:"q"`
	Token  string `form:"token"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

// Handler serves the search page and the JSON API.
type Handler struct {
	searchHandler *handlers.SearchHandler
}

// NewHandler creates a new HTTP handler.
func NewHandler(searchHandler *handlers.SearchHandler) *Handler {
	return &Handler{
		searchHandler: searchHandler,
	}
}

// Index renders the empty search form.
func (h *Handler) Index(c *gin.Context) {
	h.renderDocument(c, http.StatusOK, view.Document{})
}

// SearchPage renders results as HTML with navigation links.
func (h *Handler) SearchPage(c *gin.Context) {
	ctx := c.Request.Context()
	l := logging.Ctx(ctx)

	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		h.renderDocument(c, http.StatusBadRequest, view.Document{Error: err.Error()})
		return
	}

	doc := view.Document{Query: q.Query, Token: q.Token}

	page, err := h.searchHandler.Search(ctx, h.request(c, q))
	if err != nil {
		reply := replyFor(err)
		l.Error().Err(err).Str(logging.FieldQuery, q.Query).Msg("search failed")
		doc.Error = reply.message
		h.renderDocument(c, reply.status, doc)
		return
	}

	summary := view.Summarize(page)
	doc.Page = page
	if summary.PreviousOffset != nil {
		doc.Links.Previous = searchLink(q, *summary.PreviousOffset, summary.Limit)
	}
	if summary.NextOffset != nil {
		doc.Links.Next = searchLink(q, *summary.NextOffset, summary.Limit)
	}

	h.renderDocument(c, http.StatusOK, doc)
}

// SearchAPI returns results as a JSON envelope.
func (h *Handler) SearchAPI(c *gin.Context) {
	ctx := c.Request.Context()
	l := logging.Ctx(ctx)

	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		l.Warn().Err(err).Msg("invalid search request")
		Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := h.searchHandler.Search(ctx, h.request(c, q))
	if err != nil {
		reply := replyFor(err)
		l.Error().Err(err).Str(logging.FieldQuery, q.Query).Msg("search failed")
		Error(c, reply.status, reply.code, reply.message)
		return
	}

	Success(c, view.Summarize(page))
}

func (h *Handler) request(c *gin.Context, q searchQuery) handlers.SearchRequest {
	token := q.Token
	if token == "" {
		token = c.GetHeader(headerClientID)
	}

	return handlers.SearchRequest{
		Query:  q.Query,
		Token:  token,
		Offset: q.Offset,
		Limit:  q.Limit,
	}
}

func (h *Handler) renderDocument(c *gin.Context, status int, doc view.Document) {
	var buf bytes.Buffer
	if err := view.RenderDocument(&buf, doc); err != nil {
		l := logging.Ctx(c.Request.Context())
		l.Error().Err(err).Msg("render failed")
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// searchLink points the HTML page at another offset of the same search.
func searchLink(q searchQuery, offset, limit int) string {
	values := url.Values{}
	values.Set("q", q.Query)
	if q.Token != "" {
		values.Set("token", q.Token)
	}
	values.Set("offset", strconv.Itoa(offset))
	values.Set("limit", strconv.Itoa(limit))
	return "/search?" + values.Encode()
}
