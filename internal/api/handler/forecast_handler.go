package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/service"
	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

// ForecastHandler 预测模块 HTTP 处理器
type ForecastHandler struct {
	forecastSvc service.ForecastService
}

// NewForecastHandler 创建 ForecastHandler
func NewForecastHandler(forecastSvc service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastSvc: forecastSvc}
}

// Forecast 利用率预测
// POST /api/v1/forecasts
func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req dto.ForecastRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.forecastSvc.Forecast(c.Request.Context(), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}

// Bottlenecks 瓶颈检测
// POST /api/v1/forecasts/bottlenecks
func (h *ForecastHandler) Bottlenecks(c *gin.Context) {
	var req dto.RangeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.forecastSvc.Bottlenecks(c.Request.Context(), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}

// Bench 空闲期预测
// POST /api/v1/forecasts/bench
func (h *ForecastHandler) Bench(c *gin.Context) {
	var req dto.BenchRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.forecastSvc.Bench(c.Request.Context(), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}
