package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"guardroster/internal/dto"
	"guardroster/internal/model"
	"guardroster/internal/pattern"
	"guardroster/internal/repository"
	"guardroster/pkg/logger"
	"guardroster/pkg/metrics"

	pkgerrors "guardroster/pkg/errors"
)

// 回滚动作
const (
	AccionNoop           = "noop"
	AccionDeleted        = "deleted"
	AccionRestored       = "restored"
	AccionGuardRefreshed = "guard_refreshed"
	AccionFailed         = "failed"
)

// RollbackService 下游步骤失败时撤销单日同步结果
type RollbackService interface {
	Rollback(ctx context.Context, req *dto.RollbackRequest) (*dto.RollbackResult, error)
}

type rollbackService struct {
	repo    *repository.Repository
	locker  PostLocker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewRollbackService 创建 RollbackService 实例
func NewRollbackService(repo *repository.Repository, locker PostLocker, m *metrics.Collector, logger *zap.Logger) RollbackService {
	return &rollbackService{repo: repo, locker: locker, metrics: m, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Rollback — 把该日恢复到同步前的状态；同步新建的行才删除，重复调用无副作用
// ════════════════════════════════════════════════════════════

func (s *rollbackService) Rollback(ctx context.Context, req *dto.RollbackRequest) (*dto.RollbackResult, error) {
	target, err := parseRollback(req)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, s.logger)

	unlock, err := s.locker.LockPost(ctx, target.postID)
	if err != nil {
		log.Warn("获取岗位锁失败", zap.String("post_id", target.postID), zap.Error(err))
		return nil, err
	}
	defer unlock()

	res := &dto.RollbackResult{PuestoID: target.postID, Fecha: pattern.Format(target.date)}
	action, err := s.rollbackDay(ctx, target)
	if err != nil {
		log.Error("单日回滚失败",
			zap.String("post_id", target.postID),
			zap.String("fecha", res.Fecha),
			zap.Error(err),
		)
		res.Accion = AccionFailed
		res.Error = err.Error()
		s.metrics.Rollback(AccionFailed)
		return res, nil
	}

	res.Success = true
	res.Accion = action
	s.metrics.Rollback(action)
	log.Info("单日回滚完成",
		zap.String("post_id", target.postID),
		zap.String("fecha", res.Fecha),
		zap.String("accion", action),
	)
	return res, nil
}

// rollbackTarget 校验后的回滚目标
type rollbackTarget struct {
	postID  string
	date    time.Time
	prev    *string
	existed bool
	fields  model.PostDayFields // existed 时该日应恢复成的字段
}

func parseRollback(req *dto.RollbackRequest) (*rollbackTarget, error) {
	t := &rollbackTarget{postID: strings.TrimSpace(req.PuestoID), existed: req.RowExisted()}
	if t.postID == "" {
		return nil, pkgerrors.NewValidation("puesto_id", "不能为空")
	}
	date, err := pattern.Parse(strings.TrimSpace(req.Fecha))
	if err != nil {
		return nil, pkgerrors.NewValidation("fecha", "日期格式应为 YYYY-MM-DD")
	}
	t.date = date

	if req.GuardiaAnteriorID != nil {
		id := strings.TrimSpace(*req.GuardiaAnteriorID)
		if id == "" {
			return nil, pkgerrors.NewValidation("guardia_anterior_id", "不能为空字符串，无原保安时传 null")
		}
		t.prev = model.StrPtr(id)
	}
	if !t.existed {
		if t.prev != nil {
			return nil, pkgerrors.NewValidation("existia", "该日不存在记录时不能有原保安")
		}
		return t, nil
	}

	estado := strings.ToLower(strings.TrimSpace(req.EstadoPuestoAnterior))
	switch {
	case t.prev != nil:
		if estado != "" && estado != model.EstadoPuestoAsignado {
			return nil, pkgerrors.NewValidation("estado_puesto_anterior", "有原保安时只能为 asignado")
		}
		t.fields = workDayFields(*t.prev)
	case estado == model.EstadoPuestoLibre:
		t.fields = restDayFields()
	case estado == "" || estado == model.EstadoPuestoPPC:
		t.fields = vacantDayFields()
	case estado == model.EstadoPuestoAsignado:
		return nil, pkgerrors.NewValidation("estado_puesto_anterior", "asignado 需要 guardia_anterior_id")
	default:
		return nil, pkgerrors.NewValidation("estado_puesto_anterior", "取值应为 asignado、ppc 或 libre")
	}
	return t, nil
}

func (s *rollbackService) rollbackDay(ctx context.Context, t *rollbackTarget) (string, error) {
	rec, err := s.repo.PostDay.Get(ctx, t.postID, t.date)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return AccionNoop, nil
		}
		return "", err
	}

	// 人工编辑行绝不删除，也不动执行字段，只把 guardia_id 指回原保安
	if rec.EditadoManualmente {
		if model.SameID(rec.GuardiaID, t.prev) {
			return AccionNoop, nil
		}
		if err := s.repo.PostDay.RefreshGuard(ctx, t.postID, t.date, t.prev); err != nil {
			return "", err
		}
		return AccionGuardRefreshed, nil
	}

	if !t.existed {
		deleted, err := s.repo.PostDay.Delete(ctx, t.postID, t.date)
		if err != nil {
			return "", err
		}
		if !deleted {
			return AccionNoop, nil
		}
		return AccionDeleted, nil
	}

	if matchesFields(rec, t.fields) {
		return AccionNoop, nil
	}
	out, err := s.repo.PostDay.Upsert(ctx, t.postID, t.date, t.fields, repository.UpsertOptions{})
	if err != nil {
		return "", err
	}
	if out == repository.OutcomePreserved {
		return AccionNoop, nil
	}
	return AccionRestored, nil
}
