package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/internal/dto"
	"github.com/freeup86/resource-pulse-sub001/internal/service"
	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

// MatchHandler 匹配模块 HTTP 处理器
type MatchHandler struct {
	matchSvc service.MatchService
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(matchSvc service.MatchService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc}
}

// ResourcesForProject 为项目推荐人员
// GET /api/v1/matches/projects/:id/resources
func (h *MatchHandler) ResourcesForProject(c *gin.Context) {
	var req dto.MatchQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.matchSvc.ResourcesForProject(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}

// ProjectsForResource 为人员推荐项目
// GET /api/v1/matches/resources/:id/projects
func (h *MatchHandler) ProjectsForResource(c *gin.Context) {
	var req dto.MatchQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.matchSvc.ProjectsForResource(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}

// Pair 单对评分
// GET /api/v1/matches/resources/:id/projects/:pid
func (h *MatchHandler) Pair(c *gin.Context) {
	var req dto.PairQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.matchSvc.Pair(c.Request.Context(), c.Param("id"), c.Param("pid"), &req)
	if err != nil {
		handleEngineError(c, err)
		return
	}

	response.OK(c, result)
}
