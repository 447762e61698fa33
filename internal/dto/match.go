package dto

import "github.com/freeup86/resource-pulse-sub001/internal/engine"

// ── 匹配模块 DTO ──

// MatchQueryRequest 匹配查询参数
type MatchQueryRequest struct {
	Limit    int     `form:"limit"     binding:"omitempty,min=1,max=200"`
	MinScore float64 `form:"min_score" binding:"omitempty,min=0,max=1"`
	Start    string  `form:"start"     binding:"omitempty,datetime=2006-01-02"`
	End      string  `form:"end"       binding:"omitempty,datetime=2006-01-02"`
}

// PairQueryRequest 单对评分查询参数；未给日期时按项目起止日期评估可用性
type PairQueryRequest struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// ── 响应 ──

// MatchListResponse 匹配排序结果
type MatchListResponse struct {
	Matches        []engine.MatchScore      `json:"matches"`
	Failures       []engine.ResourceFailure `json:"failures,omitempty"`
	IsFallbackData bool                     `json:"is_fallback_data"`
}

// PairScoreResponse 单对评分
type PairScoreResponse struct {
	Score          *engine.MatchScore `json:"score"`
	IsFallbackData bool               `json:"is_fallback_data"`
}
