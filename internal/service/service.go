package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/config"
	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/repository"
	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
)

// Cache 计算结果缓存；*redis.Client 满足该接口，nil 表示不缓存
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Annotator 为引擎结果生成说明文字；nil 表示不生成
type Annotator interface {
	Annotate(ctx context.Context, topic string, result any) (string, error)
}

// Deps Service 层的可选外部依赖
type Deps struct {
	Cache     Cache
	Annotator Annotator
}

// Service 所有 Service 的聚合入口
type Service struct {
	Snapshot     SnapshotService
	Match        MatchService
	Forecast     ForecastService
	Optimization OptimizationService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	eng *engine.Engine,
	deps Deps,
	logger *zap.Logger,
) *Service {
	snap := NewSnapshotService(repo, cfg.Feature.FallbackEnabled, logger)
	periods := newPeriodResolver(cfg.Engine.DefaultForecastDays)
	return &Service{
		Snapshot:     snap,
		Match:        NewMatchService(snap, eng, periods, logger),
		Forecast:     NewForecastService(snap, eng, periods, deps, cfg.Cache.ForecastTTL, logger),
		Optimization: NewOptimizationService(snap, eng, periods, deps.Annotator, logger),
		Export:       NewExportService(snap, eng, periods, logger),
	}
}

// ── 日期区间解析 ──

// periodResolver 把请求中的 YYYY-MM-DD 字符串解析为闭区间：
// start 缺省为快照日期，end 缺省为 start 起 defaultDays 天
type periodResolver struct {
	defaultDays int
}

func newPeriodResolver(defaultDays int) periodResolver {
	if defaultDays <= 0 {
		defaultDays = 90
	}
	return periodResolver{defaultDays: defaultDays}
}

func (p periodResolver) resolve(req dto.PeriodRequest, asOf time.Time) (engine.DateRange, error) {
	start := engine.Day(asOf)
	if req.Start != "" {
		t, err := time.Parse(time.DateOnly, req.Start)
		if err != nil {
			return engine.DateRange{}, fmt.Errorf("start 格式错误 %q: %w", req.Start, pkgerrors.ErrInvalidRange)
		}
		start = t
	}
	end := start.AddDate(0, 0, p.defaultDays-1)
	if req.End != "" {
		t, err := time.Parse(time.DateOnly, req.End)
		if err != nil {
			return engine.DateRange{}, fmt.Errorf("end 格式错误 %q: %w", req.End, pkgerrors.ErrInvalidRange)
		}
		end = t
	}
	return engine.NewDateRange(start, end)
}

// annotate 调用解读服务；失败只记日志，结果照常返回
func annotate(ctx context.Context, a Annotator, logger *zap.Logger, topic string, result any) string {
	if a == nil {
		return ""
	}
	text, err := a.Annotate(ctx, topic, result)
	if err != nil {
		logger.Warn("生成结果解读失败", zap.String("topic", topic), zap.Error(err))
		return ""
	}
	return text
}
