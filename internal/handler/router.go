package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/memo-service/internal/service"
	"github.com/rs/zerolog"
)

// RouterConfig carries what NewRouter needs beyond the services.
type RouterConfig struct {
	AllowOrigins []string
	Logger       zerolog.Logger
}

// NewRouter builds the gin engine with recovery, CORS and access logging, then mounts all routes.
func NewRouter(cfg RouterConfig, repo Pinger, memoSvc service.MemoService) *gin.Engine {
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(accessLog(cfg.Logger.With().Str("module", "handler").Logger()))

	Register(r, repo, memoSvc)
	return r
}

// accessLog writes one zerolog line per request. Server errors log at error level.
func accessLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Debug()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
