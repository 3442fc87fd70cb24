package api

import (
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purinelens/purinelens-backend/config"
	"github.com/purinelens/purinelens-backend/logging"
)

// multipartOverhead is the allowance for form boundaries and other fields on
// top of the image size limit.
const multipartOverhead = 1 << 20

func NewRouter(h *Handler, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	logger = logging.OrNop(logger)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxBytes + multipartOverhead
	r.Use(
		gin.Recovery(),
		RequestID(),
		AccessLog(logger.Named("http")),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"POST", "GET", "OPTIONS"},
			AllowHeaders:    []string{"Content-Type", RequestIDHeader},
			ExposeHeaders:   []string{RequestIDHeader},
		}),
	)

	r.GET("/health", h.HealthHandler)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/test", h.EnvHandler)

		uploads := apiGroup.Group("", LimitBody(cfg.Upload.MaxBytes+multipartOverhead))
		uploads.POST("/analyze", h.AnalyzeHandler)
		uploads.POST("/annotate", h.AnnotateHandler)
	}

	if dir := cfg.Server.StaticDir; dir != "" {
		r.StaticFile("/", filepath.Join(dir, "index.html"))
		r.Static("/static", dir)
	}
	return r
}
