package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/farhapartex/stream-search/internal/logging"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, corsOrigins []string, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.RegisterRoutes(r, corsOrigins)

	return r
}

// RegisterRoutes registers the page and API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine, corsOrigins []string) {
	r.GET("/", h.Index)
	r.GET("/search", h.SearchPage)

	api := r.Group("/api/v1")
	api.Use(cors.New(corsConfig(corsOrigins)))
	{
		api.GET("/search", h.SearchAPI)
		api.OPTIONS("/search", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Accept", headerClientID, logging.HeaderRequestID},
		ExposeHeaders: []string{logging.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}

	return cfg
}
