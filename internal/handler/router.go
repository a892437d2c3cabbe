package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/survey-api/internal/middleware"
	"github.com/noah-isme/survey-api/internal/service"
	"github.com/noah-isme/survey-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/survey-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/survey-api/pkg/middleware/requestid"
)

// RouterConfig carries the cross-cutting pieces of the HTTP surface.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Tokens         middleware.TokenValidator
	Limiter        *middleware.RateLimiter
	UploadsDir     string
	UploadsPath    string
}

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Surveys *SurveyHandler
	Images  *ImageHandler
	Auth    *AuthHandler
	Admin   *AdminHandler
	Metrics *MetricsHandler
}

// NewRouter mounts every route on a fresh gin engine.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics, "/metrics"))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.UploadsDir != "" && cfg.UploadsPath != "" {
		r.Static(cfg.UploadsPath, cfg.UploadsDir)
	}

	limited := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Limiter == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{cfg.Limiter.Middleware()}, handlers...)
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	surveys := api.Group("/surveys")
	surveys.POST("", limited(h.Surveys.Submit)...)
	surveys.POST("/multipart", limited(h.Surveys.SubmitMultipart)...)
	surveys.GET("", h.Surveys.ListByUser)
	surveys.DELETE("/:id", h.Surveys.Delete)

	api.POST("/images", limited(h.Images.Upload)...)
	api.POST("/auth/admin", limited(h.Auth.AdminLogin)...)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(cfg.Tokens), middleware.RequireAdmin())
	admin.GET("/stats", h.Admin.Stats)
	admin.GET("/surveys", h.Admin.ListSurveys)
	admin.GET("/surveys/export", h.Admin.Export)
	admin.POST("/surveys/reindex", h.Admin.Reindex)
	admin.DELETE("/surveys/:id", h.Admin.Delete)
	admin.GET("/metrics", h.Admin.Metrics)

	return r
}
