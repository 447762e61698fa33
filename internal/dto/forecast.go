package dto

import "github.com/freeup86/resource-pulse-sub001/internal/engine"

// ── 预测模块 DTO ──

// PeriodRequest 日期区间（YYYY-MM-DD）。start 缺省为当天，end 缺省为 start 起默认预测天数
type PeriodRequest struct {
	Start string `json:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `json:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// RangeRequest 人员集合 + 日期区间；resource_ids 为空表示全部人员
type RangeRequest struct {
	ResourceIDs []string `json:"resource_ids" binding:"omitempty,max=500,dive,required"`
	PeriodRequest
}

// ForecastRequest 利用率预测请求
type ForecastRequest struct {
	RangeRequest
	IncludeDaily  bool `json:"include_daily"`
	IncludeWeekly bool `json:"include_weekly"`
}

// BenchRequest 空闲期预测请求
type BenchRequest struct {
	RangeRequest
	Threshold       *float64 `json:"threshold"        binding:"omitempty,min=0,max=100"`
	WithSuggestions bool     `json:"with_suggestions"`
	SuggestionLimit int      `json:"suggestion_limit" binding:"omitempty,min=1,max=20"`
}

// ── 响应 ──

// ForecastResponse 利用率预测结果
type ForecastResponse struct {
	Forecast *engine.OrganizationForecast `json:"forecast"`
	Insight  string                       `json:"insight,omitempty"`
}

// BottleneckResponse 瓶颈检测结果
type BottleneckResponse struct {
	Report  *engine.BottleneckReport `json:"report"`
	Insight string                   `json:"insight,omitempty"`
}

// BenchResponse 空闲期预测结果
type BenchResponse struct {
	Prediction *engine.BenchPrediction `json:"prediction"`
	Insight    string                  `json:"insight,omitempty"`
}
