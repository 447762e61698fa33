package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
)

// OptimizationService 再平衡与财务优化
// 建议只是数据，从不写回分配
type OptimizationService interface {
	Rebalance(ctx context.Context, req *dto.RebalanceRequest) (*dto.RebalanceResponse, error)
	Financial(ctx context.Context, req *dto.FinancialRequest) (*dto.FinancialResponse, error)
}

type optimizationService struct {
	snapshots SnapshotService
	engine    *engine.Engine
	periods   periodResolver
	annotator Annotator
	logger    *zap.Logger
}

// NewOptimizationService 创建 OptimizationService 实例
func NewOptimizationService(
	snapshots SnapshotService,
	eng *engine.Engine,
	periods periodResolver,
	annotator Annotator,
	logger *zap.Logger,
) OptimizationService {
	return &optimizationService{
		snapshots: snapshots,
		engine:    eng,
		periods:   periods,
		annotator: annotator,
		logger:    logger,
	}
}

func (s *optimizationService) Rebalance(ctx context.Context, req *dto.RebalanceRequest) (*dto.RebalanceResponse, error) {
	snap, err := s.snapshots.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	plan, err := s.engine.Rebalance(snap, r)
	metrics.ObserveRun("rebalance", start, err)
	if err != nil {
		return nil, err
	}
	countSuggestions(plan.Suggestions)

	s.logger.Info("生成利用率均衡建议",
		zap.Int("over_allocated", len(plan.OverAllocated)),
		zap.Int("suggestions", len(plan.Suggestions)),
		zap.Bool("is_fallback_data", plan.IsFallbackData),
	)
	return &dto.RebalanceResponse{
		Plan:    plan,
		Insight: annotate(ctx, s.annotator, s.logger, "utilization_rebalance", plan),
	}, nil
}

func (s *optimizationService) Financial(ctx context.Context, req *dto.FinancialRequest) (*dto.FinancialResponse, error) {
	// 目标先校验，非法目标不必加载数据
	goal, err := engine.ParseFinancialGoal(req.Goal)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	r, err := s.periods.resolve(req.PeriodRequest, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	plan, err := s.engine.OptimizeFinancials(snap, r, goal)
	metrics.ObserveRun("financial", start, err)
	if err != nil {
		return nil, err
	}
	countSuggestions(plan.Suggestions)

	s.logger.Info("生成财务优化建议",
		zap.String("goal", string(plan.Goal)),
		zap.Int("suggestions", len(plan.Suggestions)),
		zap.String("profit_delta", plan.Impact.Delta.Profit.StringFixed(2)),
		zap.Bool("is_fallback_data", plan.IsFallbackData),
	)
	return &dto.FinancialResponse{
		Plan:    plan,
		Insight: annotate(ctx, s.annotator, s.logger, "financial_optimization", plan),
	}, nil
}

func countSuggestions(suggestions []engine.Suggestion) {
	for _, sg := range suggestions {
		metrics.SuggestionsTotal.WithLabelValues(string(sg.Type)).Inc()
	}
}
