package dto

import "github.com/freeup86/resource-pulse-sub001/internal/engine"

// ── 再平衡模块 DTO ──

// RebalanceRequest 利用率均衡请求
type RebalanceRequest struct {
	PeriodRequest
}

// FinancialRequest 财务目标优化请求；goal 为空时按 profit
type FinancialRequest struct {
	PeriodRequest
	Goal string `json:"goal" binding:"omitempty,max=20"`
}

// ── 响应 ──

// RebalanceResponse 利用率均衡结果
type RebalanceResponse struct {
	Plan    *engine.RebalancePlan `json:"plan"`
	Insight string                `json:"insight,omitempty"`
}

// FinancialResponse 财务目标优化结果
type FinancialResponse struct {
	Plan    *engine.FinancialPlan `json:"plan"`
	Insight string                `json:"insight,omitempty"`
}
