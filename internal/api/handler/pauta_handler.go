package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"guardroster/internal/dto"
	"guardroster/internal/service"
	"guardroster/pkg/response"

	pkgerrors "guardroster/pkg/errors"
)

// PautaHandler 月度排班模块 HTTP 处理器
type PautaHandler struct {
	syncSvc      service.SyncService
	rollbackSvc  service.RollbackService
	executionSvc service.ExecutionService
}

// NewPautaHandler 创建 PautaHandler
func NewPautaHandler(syncSvc service.SyncService, rollbackSvc service.RollbackService, executionSvc service.ExecutionService) *PautaHandler {
	return &PautaHandler{syncSvc: syncSvc, rollbackSvc: rollbackSvc, executionSvc: executionSvc}
}

// Synchronize 指派 / 取消指派后同步月度排班
// POST /api/v1/pauta/sync
func (h *PautaHandler) Synchronize(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, 20001)
		return
	}

	result, err := h.syncSvc.Synchronize(c.Request.Context(), &req)
	if err != nil {
		h.handlePautaError(c, err)
		return
	}

	switch {
	case result.Success:
		response.OK(c, result)
	case len(result.Failed) == 0 && len(result.Conflicts) > 0:
		response.Partial(c, 20006, "存在人工编辑的日期，已拒绝覆盖", result)
	default:
		response.Partial(c, 20005, "部分日期未能写入", result)
	}
}

// Rollback 撤销单日同步结果
// POST /api/v1/pauta/rollback
func (h *PautaHandler) Rollback(c *gin.Context) {
	var req dto.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, 20001)
		return
	}

	result, err := h.rollbackSvc.Rollback(c.Request.Context(), &req)
	if err != nil {
		h.handlePautaError(c, err)
		return
	}
	if !result.Success {
		response.Partial(c, 20007, "回滚失败，可重试", result)
		return
	}

	response.OK(c, result)
}

// MonthlyPlan 查看某岗位某月的排班
// GET /api/v1/pauta/mensual
func (h *PautaHandler) MonthlyPlan(c *gin.Context) {
	var req dto.MonthlyPlanRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	plan, err := h.executionSvc.MonthlyPlan(c.Request.Context(), &req)
	if err != nil {
		h.handlePautaError(c, err)
		return
	}

	response.OK(c, plan)
}

// MarkDay 人工标记某日执行情况
// PUT /api/v1/pauta/dias
func (h *PautaHandler) MarkDay(c *gin.Context) {
	var req dto.MarkDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, 20001)
		return
	}

	day, err := h.executionSvc.MarkDay(c.Request.Context(), &req)
	if err != nil {
		h.handlePautaError(c, err)
		return
	}

	response.OK(c, day)
}

// handlePautaError 将业务错误映射为 HTTP 响应
func (h *PautaHandler) handlePautaError(c *gin.Context, err error) {
	switch {
	case pkgerrors.IsValidation(err):
		response.BadRequest(c, 20002, err.Error())
	case pkgerrors.IsNotFound(err):
		response.NotFound(c, 20004, err.Error())
	case errors.Is(err, pkgerrors.ErrPostLocked):
		response.Conflict(c, 20003, pkgerrors.ErrPostLocked.Error())
	default:
		response.InternalError(c)
	}
}
