package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/engine"
	"github.com/freeup86/resource-pulse-sub001/internal/metrics"
)

// MatchService 人员与项目的匹配评分
type MatchService interface {
	// ResourcesForProject 为项目排序候选人员
	ResourcesForProject(ctx context.Context, projectID string, req *dto.MatchQueryRequest) (*dto.MatchListResponse, error)
	// ProjectsForResource 为人员排序可投入的项目（不含已完成项目）
	ProjectsForResource(ctx context.Context, resourceID string, req *dto.MatchQueryRequest) (*dto.MatchListResponse, error)
	// Pair 单对人员与项目的分项评分
	Pair(ctx context.Context, resourceID, projectID string, req *dto.PairQueryRequest) (*dto.PairScoreResponse, error)
}

type matchService struct {
	snapshots SnapshotService
	engine    *engine.Engine
	periods   periodResolver
	logger    *zap.Logger
}

// NewMatchService 创建 MatchService 实例
func NewMatchService(snapshots SnapshotService, eng *engine.Engine, periods periodResolver, logger *zap.Logger) MatchService {
	return &matchService{snapshots: snapshots, engine: eng, periods: periods, logger: logger}
}

func (s *matchService) ResourcesForProject(ctx context.Context, projectID string, req *dto.MatchQueryRequest) (*dto.MatchListResponse, error) {
	snap, err := s.snapshots.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	q, err := s.query(req, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	list, err := s.engine.MatchResourcesForProject(snap, projectID, q)
	metrics.ObserveRun("match_resources", start, err)
	if err != nil {
		return nil, err
	}
	if len(list.Failures) > 0 {
		s.logger.Warn("部分人员数据加载失败，未参与匹配",
			zap.String("project_id", projectID),
			zap.Int("failures", len(list.Failures)),
		)
	}
	return &dto.MatchListResponse{
		Matches:        list.Matches,
		Failures:       list.Failures,
		IsFallbackData: snap.IsFallbackData,
	}, nil
}

func (s *matchService) ProjectsForResource(ctx context.Context, resourceID string, req *dto.MatchQueryRequest) (*dto.MatchListResponse, error) {
	snap, err := s.snapshots.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	q, err := s.query(req, snap.AsOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	matches, err := s.engine.MatchProjectsForResource(snap, resourceID, q)
	metrics.ObserveRun("match_projects", start, err)
	if err != nil {
		return nil, err
	}
	return &dto.MatchListResponse{Matches: matches, IsFallbackData: snap.IsFallbackData}, nil
}

func (s *matchService) Pair(ctx context.Context, resourceID, projectID string, req *dto.PairQueryRequest) (*dto.PairScoreResponse, error) {
	snap, err := s.snapshots.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	var window engine.DateRange
	if req != nil {
		if window, err = s.window(req.Start, req.End, snap.AsOf); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	score, err := s.engine.ScorePair(snap, resourceID, projectID, window)
	metrics.ObserveRun("match_pair", start, err)
	if err != nil {
		return nil, err
	}
	return &dto.PairScoreResponse{Score: score, IsFallbackData: snap.IsFallbackData}, nil
}

// query 只有显式给出 start/end 时才设置可用性窗口，否则按项目起止日期评估
func (s *matchService) query(req *dto.MatchQueryRequest, asOf time.Time) (engine.MatchQuery, error) {
	if req == nil {
		return engine.MatchQuery{}, nil
	}
	window, err := s.window(req.Start, req.End, asOf)
	if err != nil {
		return engine.MatchQuery{}, err
	}
	return engine.MatchQuery{Limit: req.Limit, MinScore: req.MinScore, Window: window}, nil
}

// window 两端都未给出时返回零值，由引擎按项目起止日期评估
func (s *matchService) window(start, end string, asOf time.Time) (engine.DateRange, error) {
	if start == "" && end == "" {
		return engine.DateRange{}, nil
	}
	return s.periods.resolve(dto.PeriodRequest{Start: start, End: end}, asOf)
}
