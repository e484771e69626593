package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ecoswap/internal/api/handlers/health"
	recipeHandler "ecoswap/internal/api/handlers/recipe"
	"ecoswap/internal/api/middleware"
	"ecoswap/internal/app"
	"ecoswap/internal/pkg/common"
)

// SetupRouter 設置路由
func SetupRouter(a *app.App) *gin.Engine {
	cfg := a.Config
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查路由
	checks := map[string]health.Check{}
	if a.Cache != nil {
		checks["cache"] = a.Cache.Ping
	}
	healthHandler := health.NewHandler(cfg.App.Version, map[string]bool{
		"cache":      a.Cache != nil,
		"browser":    cfg.Scraper.BrowserEnabled,
		"generative": cfg.HasCredential(),
	}, checks)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		h := recipeHandler.NewHandler(a.Recipe, cfg.App.Debug)

		recipes := api.Group("/recipes")
		{
			recipes.POST("/analyze", h.HandleAnalyzeURL)
			recipes.GET("/validate-url", h.HandleValidateURL)
			recipes.GET("/supported-sites", h.HandleSupportedSites)
		}

		api.POST("/ingredients/analyze", h.HandleAnalyzeIngredients)
		api.GET("/catalog", h.HandleCatalog)
		api.GET("/usage", h.HandleUsage)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
