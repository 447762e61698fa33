package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/freeup86/resource-pulse-sub001/config"
	"github.com/freeup86/resource-pulse-sub001/internal/api/handler"
	"github.com/freeup86/resource-pulse-sub001/internal/api/middleware"
	"github.com/freeup86/resource-pulse-sub001/internal/api/router"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/repository"
	"github.com/freeup86/resource-pulse-sub001/internal/service"
	"github.com/freeup86/resource-pulse-sub001/pkg/database"
	"github.com/freeup86/resource-pulse-sub001/pkg/insight"
	applogger "github.com/freeup86/resource-pulse-sub001/pkg/logger"
	"github.com/freeup86/resource-pulse-sub001/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("PULSE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("fallback_enabled", cfg.Feature.FallbackEnabled),
	)

	// 3. 连接数据库并迁移；开启样例数据降级时连接失败不中断启动
	var repo *repository.Repository
	db, err := openDatabase(cfg, logger)
	switch {
	case err == nil:
		repo = repository.NewRepository(db)
	case cfg.Feature.FallbackEnabled:
		logger.Warn("数据库不可用，所有请求将使用样例数据", zap.Error(err))
		repo = repository.NewUnavailableRepository(err)
	default:
		logger.Fatal("数据库初始化失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时不缓存、不限流）
	deps := service.Deps{}
	var limiter middleware.RateLimiter
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，预测缓存与限流将不可用", zap.Error(err))
	} else {
		deps.Cache = rdb
		limiter = rdb
	}

	// 5. 解读服务（可选）
	if client := insight.NewClient(&cfg.Insight); client != nil {
		deps.Annotator = client
		logger.Info("已启用结果解读服务", zap.String("endpoint", cfg.Insight.Endpoint))
	}

	// 6. 依赖注入: Repository → Engine → Service → Handler
	eng := engine.New(
		engine.WithBenchThreshold(cfg.Engine.BenchThreshold),
		engine.WithStemming(cfg.Engine.StemTokens),
	)
	svc := service.NewService(cfg, repo, eng, deps, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	r := router.Setup(cfg, h, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // 全员预测与导出可能较慢
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// openDatabase 连接 PostgreSQL 并执行内嵌迁移
func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
