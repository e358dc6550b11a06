package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guardroster/internal/dto"
	"guardroster/internal/model"
	"guardroster/internal/pattern"
	"guardroster/internal/repository"

	pkgerrors "guardroster/pkg/errors"
)

// ── 执行模块业务错误 ──

var (
	ErrUnknownEstado = errors.New("未知的执行状态")
	ErrInvalidGuard  = errors.New("保安资料不完整")
)

// ExecutionService 每日执行的人工操作：标记出勤、登记顶班、查看月度排班
type ExecutionService interface {
	MarkDay(ctx context.Context, req *dto.MarkDayRequest) (*dto.PostDayResponse, error)
	RegisterCoverage(ctx context.Context, req *dto.CoverageRequest) (*dto.CoverageResponse, error)
	MonthlyPlan(ctx context.Context, req *dto.MonthlyPlanRequest) (*dto.MonthlyPlanResponse, error)
}

type executionService struct {
	repo   *repository.Repository
	clock  Clock
	logger *zap.Logger
}

// NewExecutionService 创建 ExecutionService 实例
func NewExecutionService(repo *repository.Repository, clock Clock, logger *zap.Logger) ExecutionService {
	return &executionService{repo: repo, clock: clock, logger: logger}
}

// ────────────────────── MarkDay ──────────────────────

func (s *executionService) MarkDay(ctx context.Context, req *dto.MarkDayRequest) (*dto.PostDayResponse, error) {
	postID := strings.TrimSpace(req.PuestoID)
	date, err := pattern.Parse(strings.TrimSpace(req.Fecha))
	if err != nil {
		return nil, pkgerrors.NewValidation("fecha", "日期格式应为 YYYY-MM-DD")
	}
	estado, ok := canonicalEstado(req.EstadoGuardia)
	if !ok || strings.TrimSpace(req.EstadoGuardia) == "" {
		return nil, pkgerrors.NewValidation("estado_guardia", ErrUnknownEstado.Error())
	}

	upd := repository.ExecutionUpdate{
		EstadoGuardia: estado,
		Observaciones: req.Observaciones,
		TipoCobertura: req.TipoCobertura,
	}
	if req.GuardiaTrabajoID != nil {
		if id := strings.TrimSpace(*req.GuardiaTrabajoID); id != "" {
			if err := s.requireValidGuard(ctx, "guardia_trabajo_id", id); err != nil {
				return nil, err
			}
			upd.GuardiaTrabajoID = &id
		}
	}

	if err := s.repo.PostDay.MarkExecution(ctx, postID, date, upd); err != nil {
		if !pkgerrors.IsNotFound(err) {
			s.logger.Error("标记执行状态失败", zap.String("post_id", postID), zap.Error(err))
		}
		return nil, err
	}

	rec, err := s.repo.PostDay.Get(ctx, postID, date)
	if err != nil {
		s.logger.Error("查询排班行失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("执行状态已人工标记",
		zap.String("post_id", postID),
		zap.String("fecha", pattern.Format(date)),
		zap.String("estado_guardia", estado),
	)
	resp := toPostDayResponse(rec)
	return &resp, nil
}

// ────────────────────── RegisterCoverage ──────────────────────

func (s *executionService) RegisterCoverage(ctx context.Context, req *dto.CoverageRequest) (*dto.CoverageResponse, error) {
	date, err := pattern.Parse(strings.TrimSpace(req.Fecha))
	if err != nil {
		return nil, pkgerrors.NewValidation("fecha", "日期格式应为 YYYY-MM-DD")
	}

	postID := strings.TrimSpace(req.PuestoID)
	if _, err := s.repo.Post.GetByID(ctx, postID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewValidation("puesto_id", "岗位不存在")
		}
		s.logger.Error("查询岗位失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	guardID := strings.TrimSpace(req.GuardiaID)
	if err := s.requireValidGuard(ctx, "guardia_id", guardID); err != nil {
		return nil, err
	}

	estado := req.Estado
	if estado == "" {
		estado = model.CoverageEstadoPendiente
	}
	rec := &model.CoverageRecord{
		ID:        uuid.NewString(),
		PuestoID:  postID,
		GuardiaID: guardID,
		Fecha:     date,
		Estado:    estado,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Coverage.Create(ctx, rec); err != nil {
		s.logger.Error("登记顶班失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	return &dto.CoverageResponse{
		ID:        rec.ID,
		PuestoID:  rec.PuestoID,
		GuardiaID: rec.GuardiaID,
		Fecha:     pattern.Format(rec.Fecha),
		Estado:    rec.Estado,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}, nil
}

// ────────────────────── MonthlyPlan ──────────────────────

func (s *executionService) MonthlyPlan(ctx context.Context, req *dto.MonthlyPlanRequest) (*dto.MonthlyPlanResponse, error) {
	postID := strings.TrimSpace(req.PuestoID)
	if _, err := s.repo.Post.GetByID(ctx, postID); err != nil {
		if !pkgerrors.IsNotFound(err) {
			s.logger.Error("查询岗位失败", zap.String("post_id", postID), zap.Error(err))
		}
		return nil, err
	}

	recs, err := s.repo.PostDay.ListByMonth(ctx, postID, req.Anio, req.Mes)
	if err != nil {
		s.logger.Error("查询月度排班失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	resp := &dto.MonthlyPlanResponse{
		PuestoID: postID,
		Anio:     req.Anio,
		Mes:      req.Mes,
		Dias:     make([]dto.PostDayResponse, 0, len(recs)),
	}
	// 行已按 dia ASC, id DESC 排序，同一天只取第一行
	lastDay := 0
	for i := range recs {
		if recs[i].Dia == lastDay {
			continue
		}
		lastDay = recs[i].Dia
		resp.Dias = append(resp.Dias, toPostDayResponse(&recs[i]))
	}
	return resp, nil
}

// ── 辅助 ──

func (s *executionService) requireValidGuard(ctx context.Context, field, id string) error {
	if id == "" {
		return pkgerrors.NewValidation(field, "不能为空")
	}
	g, err := s.repo.Guard.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewValidation(field, "保安不存在")
		}
		s.logger.Error("查询保安失败", zap.String("guardia_id", id), zap.Error(err))
		return err
	}
	if err := g.Validate(); err != nil {
		return pkgerrors.NewValidation(field, ErrInvalidGuard.Error())
	}
	return nil
}

func toPostDayResponse(rec *model.PostDayRecord) dto.PostDayResponse {
	return dto.PostDayResponse{
		ID:                 rec.ID,
		PuestoID:           rec.PuestoID,
		Fecha:              pattern.Format(rec.Date()),
		GuardiaID:          rec.GuardiaID,
		TipoTurno:          rec.TipoTurno,
		EstadoPuesto:       rec.EstadoPuesto,
		EstadoGuardia:      rec.EstadoGuardia,
		TipoCobertura:      rec.TipoCobertura,
		GuardiaTrabajoID:   rec.GuardiaTrabajoID,
		Observaciones:      rec.Observaciones,
		EditadoManualmente: rec.EditadoManualmente,
		UpdatedAt:          rec.UpdatedAt.Format(time.RFC3339),
	}
}
