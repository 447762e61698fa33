package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
	"github.com/freeup86/resource-pulse-sub001/pkg/redis"
)

// ForecastService 利用率预测、瓶颈检测与空闲期预测
//
// 设计说明：
//   - Forecast 结果按「规范化请求 + 快照日期」缓存，样例数据结果不缓存
//   - 缓存读写失败只记日志，不影响计算
//   - 解读文字不进入缓存，每次请求单独生成
type ForecastService interface {
	Forecast(ctx context.Context, req *dto.ForecastRequest) (*dto.ForecastResponse, error)
	Bottlenecks(ctx context.Context, req *dto.RangeRequest) (*dto.BottleneckResponse, error)
	Bench(ctx context.Context, req *dto.BenchRequest) (*dto.BenchResponse, error)
}

type forecastService struct {
	snapshots SnapshotService
	engine    *engine.Engine
	periods   periodResolver
	cache     Cache
	annotator Annotator
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewForecastService 创建 ForecastService 实例；deps 中的缓存与解读服务均可为 nil
func NewForecastService(
	snapshots SnapshotService,
	eng *engine.Engine,
	periods periodResolver,
	deps Deps,
	cacheTTL time.Duration,
	logger *zap.Logger,
) ForecastService {
	return &forecastService{
		snapshots: snapshots,
		engine:    eng,
		periods:   periods,
		cache:     deps.Cache,
		annotator: deps.Annotator,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// Forecast 利用率预测
// ═══════════════════════════════════════════════════════════

func (s *forecastService) Forecast(ctx context.Context, req *dto.ForecastRequest) (*dto.ForecastResponse, error) {
	key := forecastCacheKey(req, engine.Day(s.now()))

	if fc, ok := s.cached(ctx, key); ok {
		return &dto.ForecastResponse{
			Forecast: fc,
			Insight:  annotate(ctx, s.annotator, s.logger, "utilization_forecast", fc),
		}, nil
	}

	snap, err := s.snapshots.Load(ctx, req.ResourceIDs)
	if err != nil {
		return nil, err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fc, err := s.engine.Forecast(snap, req.ResourceIDs, r, engine.ForecastOptions{
		IncludeDaily:  req.IncludeDaily,
		IncludeWeekly: req.IncludeWeekly,
	})
	metrics.ObserveRun("forecast", start, err)
	if err != nil {
		return nil, err
	}

	// 样例数据与部分人员加载失败的结果都不缓存，存储恢复后应重新计算
	if !fc.IsFallbackData && len(snap.Failures) == 0 {
		s.store(ctx, key, fc)
	}
	return &dto.ForecastResponse{
		Forecast: fc,
		Insight:  annotate(ctx, s.annotator, s.logger, "utilization_forecast", fc),
	}, nil
}

func (s *forecastService) cached(ctx context.Context, key string) (*engine.OrganizationForecast, bool) {
	if s.cache == nil {
		return nil, false
	}
	var fc engine.OrganizationForecast
	err := s.cache.GetJSON(ctx, key, &fc)
	switch {
	case err == nil:
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return &fc, true
	case errors.Is(err, redis.ErrCacheMiss):
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("读取预测缓存失败", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (s *forecastService) store(ctx context.Context, key string, fc *engine.OrganizationForecast) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, fc, s.cacheTTL); err != nil {
		s.logger.Warn("写入预测缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// forecastCacheKey 人员 ID 去重排序后参与哈希，同一集合不同顺序命中同一条缓存
func forecastCacheKey(req *dto.ForecastRequest, asOf time.Time) string {
	ids := append([]string(nil), req.ResourceIDs...)
	sort.Strings(ids)
	ids = dedupSorted(ids)
	raw, _ := json.Marshal(struct {
		IDs    []string `json:"ids"`
		Start  string   `json:"start"`
		End    string   `json:"end"`
		Daily  bool     `json:"daily"`
		Weekly bool     `json:"weekly"`
		AsOf   string   `json:"as_of"`
	}{ids, req.Start, req.End, req.IncludeDaily, req.IncludeWeekly, asOf.Format(time.DateOnly)})
	sum := sha256.Sum256(raw)
	return "forecast:" + hex.EncodeToString(sum[:])
}

func dedupSorted(ids []string) []string {
	out := ids[:0]
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// ═══════════════════════════════════════════════════════════
// Bottlenecks 瓶颈检测
// ═══════════════════════════════════════════════════════════

func (s *forecastService) Bottlenecks(ctx context.Context, req *dto.RangeRequest) (*dto.BottleneckResponse, error) {
	snap, err := s.snapshots.Load(ctx, req.ResourceIDs)
	if err != nil {
		return nil, err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report, err := s.engine.Bottlenecks(snap, req.ResourceIDs, r)
	metrics.ObserveRun("bottlenecks", start, err)
	if err != nil {
		return nil, err
	}
	metrics.BottlenecksDetected.Set(float64(len(report.Bottlenecks)))

	return &dto.BottleneckResponse{
		Report:  report,
		Insight: annotate(ctx, s.annotator, s.logger, "capacity_bottlenecks", report),
	}, nil
}

// ═══════════════════════════════════════════════════════════
// Bench 空闲期预测
// ═══════════════════════════════════════════════════════════

const defaultBenchSuggestions = 3

func (s *forecastService) Bench(ctx context.Context, req *dto.BenchRequest) (*dto.BenchResponse, error) {
	snap, err := s.snapshots.Load(ctx, req.ResourceIDs)
	if err != nil {
		return nil, err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, err
	}

	opts := engine.BenchOptions{Threshold: req.Threshold}
	if req.WithSuggestions {
		opts.SuggestionLimit = req.SuggestionLimit
		if opts.SuggestionLimit <= 0 {
			opts.SuggestionLimit = defaultBenchSuggestions
		}
	}

	start := time.Now()
	pred, err := s.engine.PredictBench(snap, req.ResourceIDs, r, opts)
	metrics.ObserveRun("bench", start, err)
	if err != nil {
		return nil, err
	}
	return &dto.BenchResponse{
		Prediction: pred,
		Insight:    annotate(ctx, s.annotator, s.logger, "bench_prediction", pred),
	}, nil
}
