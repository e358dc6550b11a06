package handler

import (
	"github.com/gin-gonic/gin"

	"guardroster/internal/dto"
	"guardroster/internal/service"
	"guardroster/pkg/response"

	pkgerrors "guardroster/pkg/errors"
)

// CoverageHandler 顶班模块 HTTP 处理器
type CoverageHandler struct {
	executionSvc service.ExecutionService
}

// NewCoverageHandler 创建 CoverageHandler
func NewCoverageHandler(executionSvc service.ExecutionService) *CoverageHandler {
	return &CoverageHandler{executionSvc: executionSvc}
}

// RegisterCoverage 登记顶班
// POST /api/v1/turnos-extras
func (h *CoverageHandler) RegisterCoverage(c *gin.Context) {
	var req dto.CoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, 22001)
		return
	}

	rec, err := h.executionSvc.RegisterCoverage(c.Request.Context(), &req)
	if err != nil {
		switch {
		case pkgerrors.IsValidation(err):
			response.BadRequest(c, 22002, err.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, rec)
}
