package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ChaseRain/carouselgen/internal/api/templates"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/infra/metrics"
)

func NewRouter(handler *Handler, m *metrics.Metrics, allowedOrigins []string, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors.New(corsConfig(allowedOrigins)))
	r.SetHTMLTemplate(templates.PageTmpl)

	r.GET("/", handler.Page)
	r.POST("/generate", handler.SubmitForm)
	r.POST("/appearance", handler.SubmitAppearance)

	r.GET("/health", handler.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/catalog", handler.Catalog)
		v1.POST("/sessions", handler.CreateSession)
		v1.GET("/sessions/:id", handler.GetSession)
		v1.POST("/sessions/:id/generate", handler.Generate)
		v1.PATCH("/sessions/:id/appearance", handler.SetAppearance)
		v1.GET("/sessions/:id/slides/:n/preview.png", handler.SlidePreview)
		v1.GET("/sessions/:id/slides/:n/download", handler.SlideDownload)
		v1.GET("/sessions/:id/archive", handler.Archive)
	}

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		cfg.AllowOrigins = allowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	cfg.ExposeHeaders = []string{"Content-Disposition", "X-Skipped-Slides"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		log.Debug("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
