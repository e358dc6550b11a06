package handler

import (
	"github.com/gin-gonic/gin"

	"guardroster/internal/dto"
	"guardroster/internal/service"
	"guardroster/pkg/response"

	pkgerrors "guardroster/pkg/errors"
)

// DailyStatusHandler 每日状态模块 HTTP 处理器
type DailyStatusHandler struct {
	resolverSvc service.ResolverService
}

// NewDailyStatusHandler 创建 DailyStatusHandler
func NewDailyStatusHandler(resolverSvc service.ResolverService) *DailyStatusHandler {
	return &DailyStatusHandler{resolverSvc: resolverSvc}
}

// Resolve 查询某日各岗位的实际上岗情况
// GET /api/v1/pauta-diaria
func (h *DailyStatusHandler) Resolve(c *gin.Context) {
	var req dto.DailyStatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 21001, "参数校验失败")
		return
	}

	list, err := h.resolverSvc.Resolve(c.Request.Context(), &req)
	if err != nil {
		if pkgerrors.IsValidation(err) {
			response.BadRequest(c, 21002, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	total := len(list)
	if req.Requested() {
		list = pageOf(list, req.GetOffset(), req.GetPageSize())
	}

	response.OK(c, gin.H{"list": list, "total": total})
}

// pageOf 对已排序的结果做内存分页
func pageOf(list []dto.ResolvedDailyStatus, offset, size int) []dto.ResolvedDailyStatus {
	if offset >= len(list) {
		return []dto.ResolvedDailyStatus{}
	}
	end := offset + size
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
