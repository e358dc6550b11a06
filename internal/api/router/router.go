package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"guardroster/config"
	"guardroster/internal/api/handler"
	"guardroster/internal/api/middleware"
	"guardroster/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时限流中间件降级放行；同步与回滚另按岗位限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger, "/health", "/metrics"))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit, cfg.Server.RateWindow, middleware.ByClient, logger))
	{
		perPost := middleware.RateLimit(rdb, cfg.Server.PostRateLimit, cfg.Server.RateWindow, middleware.ByPost, logger)

		// 月度排班模块
		pauta := v1.Group("/pauta")
		{
			pauta.POST("/sync", perPost, h.Pauta.Synchronize)
			pauta.POST("/rollback", perPost, h.Pauta.Rollback)
			pauta.GET("/mensual", h.Pauta.MonthlyPlan)
			pauta.PUT("/dias", h.Pauta.MarkDay)
		}

		// 每日状态模块
		v1.GET("/pauta-diaria", h.DailyStatus.Resolve)

		// 顶班模块
		v1.POST("/turnos-extras", h.Coverage.RegisterCoverage)
	}

	return r, nil
}
