package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/internal/service"
	pkgerrors "github.com/freeup86/resource-pulse-sub001/pkg/errors"
	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Match        *MatchHandler
	Forecast     *ForecastHandler
	Optimization *OptimizationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Match:        NewMatchHandler(svc.Match),
		Forecast:     NewForecastHandler(svc.Forecast),
		Optimization: NewOptimizationHandler(svc.Optimization),
		Export:       NewExportHandler(svc.Export),
	}
}

// ── 业务错误码 ──

const (
	codeInvalidParams = 10001
	codeNotFound      = 20001
	codeInvalidRange  = 20002
	codeInvalidGoal   = 20003
	codeUpstream      = 20004
)

// handleEngineError 引擎 / 快照错误统一映射
func handleEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, codeNotFound, "资源或项目不存在")
	case errors.Is(err, pkgerrors.ErrInvalidRange):
		response.BadRequest(c, codeInvalidRange, "日期范围非法")
	case errors.Is(err, pkgerrors.ErrInvalidGoal):
		response.BadRequest(c, codeInvalidGoal, "未知的优化目标，可选 profit / revenue / cost / utilization")
	case errors.Is(err, pkgerrors.ErrUpstreamUnavailable):
		response.ServiceUnavailable(c, codeUpstream, "数据源暂不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// bindOptionalJSON 请求体为空时保留零值，所有字段均有默认含义
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
