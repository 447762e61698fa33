package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/config"
	"github.com/freeup86/resource-pulse-sub001/internal/api/handler"
	"github.com/freeup86/resource-pulse-sub001/internal/api/middleware"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
)

const maxBodyBytes = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时计算类接口不限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window))
	{
		// 匹配模块
		matches := v1.Group("/matches")
		{
			matches.GET("/projects/:id/resources", h.Match.ResourcesForProject)
			matches.GET("/resources/:id/projects", h.Match.ProjectsForResource)
			matches.GET("/resources/:id/projects/:pid", h.Match.Pair)
		}

		// 预测模块
		forecasts := v1.Group("/forecasts")
		{
			forecasts.POST("", h.Forecast.Forecast)
			forecasts.POST("/bottlenecks", h.Forecast.Bottlenecks)
			forecasts.POST("/bench", h.Forecast.Bench)
		}

		// 优化模块（只产出建议）
		optimizations := v1.Group("/optimizations")
		{
			optimizations.POST("/rebalance", h.Optimization.Rebalance)
			optimizations.POST("/financial", h.Optimization.Financial)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.POST("/forecast", h.Export.ExportForecast)
			export.POST("/bench", h.Export.ExportBench)
		}
	}

	return r
}
