package logging

import (
	"bytes"
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewAddsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "stream-search", Output: &buf})

	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "stream-search", entry[FieldService])
	assert.Equal(t, "hello", entry["message"])
}

func TestCtxFallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})

	ctx := WithLogger(context.Background(), logger)
	l := Ctx(ctx)
	l.Info().Msg("scoped")
	assert.Contains(t, buf.String(), "scoped")

	assert.NotPanics(t, func() {
		l := Ctx(context.Background())
		l.Debug().Msg("global")
	})
}

func TestGinMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(GinMiddleware(New(Config{Output: &buf})))
	r.GET("/ping", func(c *gin.Context) {
		l := Ctx(c.Request.Context())
		l.Info().Msg("inside handler")
		c.String(http.StatusOK, "pong")
	})

	t.Run("generated", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
		assert.Contains(t, buf.String(), "inside handler")
		assert.Contains(t, buf.String(), "request completed")
	})

	t.Run("propagated", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
		assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
	})

	t.Run("search query", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?q=dota", nil))

		assert.Contains(t, buf.String(), `"query":"dota"`)
	})
}

func TestUnaryServerInterceptor(t *testing.T) {
	var buf bytes.Buffer
	intercept := UnaryServerInterceptor(New(Config{Level: "info", Output: &buf}))

	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		l := Ctx(ctx)
		l.Info().Msg("inside call")
		return "ok", nil
	}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "rpc-1"))

	resp, err := intercept(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/streamsearch.v1.StreamSearch/Search"}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Contains(t, buf.String(), `"request_id":"rpc-1"`)
	assert.Contains(t, buf.String(), `"grpc_code":"OK"`)
	assert.Contains(t, buf.String(), "inside call")

	buf.Reset()
	_, err = intercept(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		func(ctx context.Context, req interface{}) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestInitReplacesGlobalAndBridgesStdlog(t *testing.T) {
	t.Cleanup(func() { Init(Config{}) })

	var boot, final bytes.Buffer
	Init(Config{Output: &boot})
	stdlog.Println("bootstrap warning")
	assert.Contains(t, boot.String(), "bootstrap warning")
	assert.Contains(t, boot.String(), `"source":"stdlog"`)

	Init(Config{Level: "warn", Output: &final})
	stdlog.Println("after reconfigure")
	l := L()
	l.Info().Msg("filtered")

	assert.NotContains(t, boot.String(), "after reconfigure")
	assert.Contains(t, final.String(), "after reconfigure")
	assert.NotContains(t, final.String(), "filtered")
}
