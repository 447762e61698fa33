package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/service"
	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportForecast 导出利用率预测
// POST /api/v1/export/forecast
func (h *ExportHandler) ExportForecast(c *gin.Context) {
	var req dto.ForecastRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportForecast(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename)
}

// ExportBench 导出空闲期预测
// POST /api/v1/export/bench
func (h *ExportHandler) ExportBench(c *gin.Context) {
	var req dto.BenchRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportBench(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename)
}

func sendFile(c *gin.Context, buf *bytes.Buffer, filename string) {
	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.InternalError(c)
		return
	}
	handleEngineError(c, err)
}
