package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the request ID in and out of the HTTP server.
const HeaderRequestID = "X-Request-ID"

// GinMiddleware gives every request a child logger tagged with its request
// ID (taken from X-Request-ID or generated) and logs one line per request.
// Search routes also get the query they were asked for.
func GinMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		lc := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldMethod, c.Request.Method).
			Str(FieldPath, c.Request.URL.Path)
		if q := c.Query("q"); q != "" {
			lc = lc.Str(FieldQuery, q)
		}
		reqLogger := lc.Logger()

		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLogger))
		c.Next()

		ev := reqLogger.Info()
		if c.Writer.Status() >= 500 {
			ev = reqLogger.Error()
		}
		ev.Int(FieldStatus, c.Writer.Status()).
			Int64(FieldLatency, time.Since(start).Milliseconds()).
			Msg("request completed")
	}
}
