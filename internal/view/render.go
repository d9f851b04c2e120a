package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/farhapartex/stream-search/internal/fetchers"
	"github.com/farhapartex/stream-search/internal/models"
	"github.com/farhapartex/stream-search/internal/paging"
)

const maxStatusLength = 140

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Links are the targets of the navigation controls. An empty link hides
// its control.
type Links struct {
	Previous string
	Next     string
}

// Document is a full search page: the form, an optional error and the
// results of the last successful search.
type Document struct {
	Query string
	Token string
	Error string
	Page  *paging.Page
	Links Links
}

type documentView struct {
	Query   string
	Token   string
	Error   string
	Results *resultsView
}

type resultsView struct {
	Total      int
	Page       int
	TotalPages int
	Previous   string
	Next       string
	Items      []models.StreamItem
}

func newResultsView(page *paging.Page, links Links) *resultsView {
	items := make([]models.StreamItem, 0, len(page.Items()))
	for _, item := range page.Items() {
		item.Status = TruncateStatus(item.Status)
		items = append(items, item)
	}

	return &resultsView{
		Total:      page.TotalCount(),
		Page:       page.CurrentPage(),
		TotalPages: page.TotalPages(),
		Previous:   links.Previous,
		Next:       links.Next,
		Items:      items,
	}
}

// RenderHTML writes the summary, navigation and stream list of page
func RenderHTML(w io.Writer, page *paging.Page, links Links) error {
	return templates.ExecuteTemplate(w, "results", newResultsView(page, links))
}

// RenderDocument writes a complete HTML search page
func RenderDocument(w io.Writer, doc Document) error {
	data := documentView{
		Query: doc.Query,
		Token: doc.Token,
		Error: doc.Error,
	}
	if doc.Page != nil {
		data.Results = newResultsView(doc.Page, doc.Links)
	}

	return templates.ExecuteTemplate(w, "document", data)
}

// RenderText writes page for a terminal
func RenderText(w io.Writer, page *paging.Page) error {
	if _, err := fmt.Fprintf(w, "Total Results: %d    page %d / %d\n\n",
		page.TotalCount(), page.CurrentPage(), page.TotalPages()); err != nil {
		return err
	}

	for i, item := range page.Items() {
		_, err := fmt.Fprintf(w, "%3d. %s (%s)\n     %s - %d viewers\n     %s\n",
			page.Offset()+i+1,
			item.ChannelName,
			item.ChannelURL,
			item.Game,
			item.Viewers,
			TruncateStatus(item.Status),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// TruncateStatus shortens channel status text for display
func TruncateStatus(status string) string {
	return fetchers.TruncateString(status, maxStatusLength)
}
