package search

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhapartex/stream-search/internal/command"
)

// newTwitch answers with a total of 12 streams and names the single
// returned stream after the requested offset.
func newTwitch(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		fmt.Fprintf(w, `{"_total": 12, "streams": [{"game": "Chess", "viewers": 3,
			"channel": {"display_name": "chan-%d", "url": "https://www.twitch.tv/chan", "status": "blitz"}}]}`, offset)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("TWITCH_API_BASE_URL", srv.URL)
	t.Setenv("TWITCH_CLIENT_ID", "")
	t.Setenv("TWITCH_PAGE_POLICY", "clamp")
	t.Setenv("TWITCH_RATE_LIMIT_RPS", "0")

	return srv
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := command.NewApp("streamsearch", "test", "", Search())
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	app.ExitErrHandler = nil

	err := app.Run(append([]string{"streamsearch", "search"}, args...))
	return out.String(), err
}

func TestSearchPrintsFirstPage(t *testing.T) {
	newTwitch(t)

	out, err := run(t, "", "--token", "tok", "chess")
	require.NoError(t, err)

	assert.Contains(t, out, "Total Results: 12")
	assert.Contains(t, out, "page 0 / 2")
	assert.Contains(t, out, "chan-0")
	assert.NotContains(t, out, prompt)
}

func TestSearchOffset(t *testing.T) {
	newTwitch(t)

	out, err := run(t, "", "--token", "tok", "--offset", "10", "chess")
	require.NoError(t, err)

	assert.Contains(t, out, "page 2 / 2")
	assert.Contains(t, out, "chan-10")
}

func TestSearchInteractive(t *testing.T) {
	newTwitch(t)

	out, err := run(t, "n\nn\nn\np\ng 0\nbogus\nq\n", "--token", "tok", "-i", "chess")
	require.NoError(t, err)

	pages := strings.Count(out, "Total Results: 12")
	assert.Equal(t, 6, pages)
	assert.Contains(t, out, "chan-5")
	assert.Contains(t, out, "chan-10")
	assert.Contains(t, out, `unknown command "bogus"`)

	// clamp keeps the last page when moving past it
	assert.Equal(t, 2, strings.Count(out, "chan-10"))
}

func TestSearchInteractiveEOF(t *testing.T) {
	newTwitch(t)

	_, err := run(t, "n\n", "--token", "tok", "-i", "chess")
	assert.NoError(t, err)
}

func TestSearchErrors(t *testing.T) {
	newTwitch(t)

	_, err := run(t, "", "--token", "tok")
	assert.ErrorContains(t, err, "query is required")

	_, err = run(t, "", "chess")
	assert.ErrorContains(t, err, "client id is required")

	_, err = run(t, "", "--token", "tok", "--offset", "-1", "chess")
	assert.ErrorContains(t, err, "offset cannot be negative")
}
