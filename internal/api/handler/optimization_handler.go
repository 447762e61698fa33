package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/service"
	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

// OptimizationHandler 优化模块 HTTP 处理器；只返回建议，不修改分配
type OptimizationHandler struct {
	optSvc service.OptimizationService
}

// NewOptimizationHandler 创建 OptimizationHandler
func NewOptimizationHandler(optSvc service.OptimizationService) *OptimizationHandler {
	return &OptimizationHandler{optSvc: optSvc}
}

// Rebalance 利用率均衡建议
// POST /api/v1/optimizations/rebalance
func (h *OptimizationHandler) Rebalance(c *gin.Context) {
	var req dto.RebalanceRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.optSvc.Rebalance(c.Request.Context(), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}

// Financial 财务目标优化建议
// POST /api/v1/optimizations/financial
func (h *OptimizationHandler) Financial(c *gin.Context) {
	var req dto.FinancialRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.optSvc.Financial(c.Request.Context(), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}
