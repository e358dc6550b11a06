package handler

import "guardroster/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Pauta       *PautaHandler
	DailyStatus *DailyStatusHandler
	Coverage    *CoverageHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Pauta:       NewPautaHandler(svc.Sync, svc.Rollback, svc.Execution),
		DailyStatus: NewDailyStatusHandler(svc.Resolver),
		Coverage:    NewCoverageHandler(svc.Execution),
	}
}
