package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"guardroster/config"
	"guardroster/internal/dto"
	"guardroster/internal/model"
	"guardroster/internal/pattern"
	"guardroster/internal/repository"
	"guardroster/pkg/logger"
	"guardroster/pkg/metrics"

	pkgerrors "guardroster/pkg/errors"
)

// 同步方式
const (
	ModoAsignar    = "asignar"
	ModoDesasignar = "desasignar"
)

// SyncService 指派变更后按班型重算月度排班
type SyncService interface {
	Synchronize(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResult, error)
}

type syncService struct {
	sched   config.ScheduleConfig
	loc     *time.Location
	repo    *repository.Repository
	locker  PostLocker
	clock   Clock
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewSyncService 创建 SyncService 实例
func NewSyncService(
	sched config.ScheduleConfig,
	repo *repository.Repository,
	locker PostLocker,
	clock Clock,
	m *metrics.Collector,
	logger *zap.Logger,
) SyncService {
	if sched.SyncConcurrency <= 0 {
		sched.SyncConcurrency = 1
	}
	return &syncService{
		sched:   sched,
		loc:     sched.Location(),
		repo:    repo,
		locker:  locker,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

// syncPlan 校验通过后的同步计划
type syncPlan struct {
	post    *model.OperationalPost
	pattern pattern.Pattern
	guardID *string
	from    time.Time
	to      time.Time
	strict  bool
}

func (p *syncPlan) mode() string {
	if p.guardID == nil {
		return ModoDesasignar
	}
	return ModoAsignar
}

// dayResult 单日写入结果，每个日期只由一个 goroutine 写入自己的下标
type dayResult struct {
	date    time.Time
	outcome repository.UpsertOutcome
	err     error
	skipped bool
}

// ════════════════════════════════════════════════════════════
// Synchronize — 指派 / 取消指派后重算生效日至展开终点的每一天
// ════════════════════════════════════════════════════════════

func (s *syncService) Synchronize(ctx context.Context, req *dto.SyncRequest) (*dto.SyncResult, error) {
	started := time.Now()

	plan, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	// 等锁时间同样计入 sync_timeout
	if s.sched.SyncTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sched.SyncTimeout)
		defer cancel()
	}

	unlock, err := s.locker.LockPost(ctx, plan.post.ID)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("获取岗位锁失败", zap.String("post_id", plan.post.ID), zap.Error(err))
		return nil, err
	}
	defer unlock()

	days, err := s.expand(ctx, plan)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("展开排班失败", zap.String("post_id", plan.post.ID), zap.Error(err))
		return nil, err
	}

	results := s.apply(ctx, plan, days)
	res := s.summarize(ctx, plan, results)

	outcome := "ok"
	switch {
	case res.Canceled:
		outcome = "canceled"
	case len(res.Failed) > 0:
		outcome = "partial"
	case len(res.Conflicts) > 0:
		outcome = "conflict"
	}
	s.metrics.SyncRun(res.Modo, outcome, time.Since(started).Seconds())

	logger.FromContext(ctx, s.logger).Info("排班同步完成",
		zap.String("post_id", plan.post.ID),
		zap.String("mode", res.Modo),
		zap.String("desde", res.Desde),
		zap.String("hasta", res.Hasta),
		zap.Int("written", res.DaysWritten),
		zap.Int("preserved", res.DaysPreserved),
		zap.Int("skipped", res.DaysSkipped),
		zap.Int("failed", len(res.Failed)),
		zap.Int("conflicts", len(res.Conflicts)),
	)
	return res, nil
}

// prepare 写入前的全部校验，失败时不产生任何写入
func (s *syncService) prepare(ctx context.Context, req *dto.SyncRequest) (*syncPlan, error) {
	postID := strings.TrimSpace(req.PuestoID)
	if postID == "" {
		return nil, pkgerrors.NewValidation("puesto_id", "不能为空")
	}

	post, err := s.repo.Post.GetByID(ctx, postID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewValidation("puesto_id", "岗位不存在")
		}
		logger.FromContext(ctx, s.logger).Error("查询岗位失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	if inst := strings.TrimSpace(req.InstalacionID); inst != "" && inst != post.InstalacionID {
		return nil, pkgerrors.NewValidation("instalacion_id", "与岗位所属装置不一致")
	}
	if rol := strings.TrimSpace(req.RolID); rol != "" && rol != post.RolID {
		return nil, pkgerrors.NewValidation("rol_id", "与岗位勤务角色不一致")
	}

	role, err := s.repo.Role.GetByID(ctx, post.RolID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewValidation("rol_id", "勤务角色不存在")
		}
		logger.FromContext(ctx, s.logger).Error("查询勤务角色失败", zap.String("rol_id", post.RolID), zap.Error(err))
		return nil, err
	}
	pat := pattern.Pattern{WorkDays: role.DiasTrabajo, RestDays: role.DiasDescanso}
	if err := pat.Validate(); err != nil {
		return nil, pkgerrors.NewValidation("rol_id", err.Error())
	}

	from := pattern.CivilDate(s.clock.Now(), s.loc)
	if req.FechaEfectiva != nil && strings.TrimSpace(*req.FechaEfectiva) != "" {
		from, err = pattern.Parse(strings.TrimSpace(*req.FechaEfectiva))
		if err != nil {
			return nil, pkgerrors.NewValidation("fecha_efectiva", "日期格式应为 YYYY-MM-DD")
		}
	}

	strict := s.sched.StrictManualEdits
	if req.Strict != nil {
		strict = *req.Strict
	}

	// 只有显式 null 才是取消指派，空串不能落到清空排班的分支
	var guardID *string
	if req.GuardiaID != nil {
		id := strings.TrimSpace(*req.GuardiaID)
		if err := s.requireValidGuard(ctx, id); err != nil {
			return nil, err
		}
		guardID = model.StrPtr(id)
	}

	return &syncPlan{
		post:    post,
		pattern: pat,
		guardID: guardID,
		from:    from,
		to:      s.horizonEnd(from),
		strict:  strict,
	}, nil
}

// requireValidGuard 被指派的保安必须存在且资料完整
func (s *syncService) requireValidGuard(ctx context.Context, id string) error {
	if id == "" {
		return pkgerrors.NewValidation("guardia_id", "不能为空，取消指派请传 null")
	}
	g, err := s.repo.Guard.GetByID(ctx, id)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return pkgerrors.NewValidation("guardia_id", "保安不存在")
		}
		logger.FromContext(ctx, s.logger).Error("查询保安失败", zap.String("guardia_id", id), zap.Error(err))
		return err
	}
	if err := g.Validate(); err != nil {
		return pkgerrors.NewValidation("guardia_id", ErrInvalidGuard.Error())
	}
	return nil
}

// horizonEnd 展开终点：默认当年 12 月 31 日，可配置为固定天数
func (s *syncService) horizonEnd(from time.Time) time.Time {
	if s.sched.HorizonMode == config.HorizonDays && s.sched.HorizonDays > 0 {
		return from.AddDate(0, 0, s.sched.HorizonDays-1)
	}
	return pattern.YearEnd(from)
}

// plannedDay 某一天应写入的内容
type plannedDay struct {
	date   time.Time
	fields model.PostDayFields
}

// expand 计算每一天的目标状态
func (s *syncService) expand(ctx context.Context, plan *syncPlan) ([]plannedDay, error) {
	dates := pattern.Dates(plan.from, plan.to)
	days := make([]plannedDay, 0, len(dates))

	if plan.guardID != nil {
		for _, d := range dates {
			kind, err := pattern.Classify(plan.pattern, plan.from, d)
			if err != nil {
				return nil, err
			}
			f := restDayFields()
			if kind == pattern.Work {
				f = workDayFields(*plan.guardID)
			}
			days = append(days, plannedDay{date: d, fields: f})
		}
		return days, nil
	}

	// 取消指派：生效日恰逢原保安的休息段时，本段剩余休息日保持 libre，之后全部转为 PPC
	restRun, err := s.remainingRest(ctx, plan)
	if err != nil {
		return nil, err
	}
	for i, d := range dates {
		f := vacantDayFields()
		if i < restRun {
			f = restDayFields()
		}
		days = append(days, plannedDay{date: d, fields: f})
	}
	return days, nil
}

// remainingRest 从生效日起连续已是休息日的天数，最多一个休息段
func (s *syncService) remainingRest(ctx context.Context, plan *syncPlan) (int, error) {
	n := 0
	for d := plan.from; n < plan.pattern.RestDays && !d.After(plan.to); d = d.AddDate(0, 0, 1) {
		rec, err := s.repo.PostDay.Get(ctx, plan.post.ID, d)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				break
			}
			return 0, err
		}
		if rec.TipoTurno != model.TipoTurnoLibre {
			break
		}
		n++
	}
	return n, nil
}

// apply 以有限并发逐日执行原子 upsert；ctx 取消后不再发起新的写入，已完成的不回退
func (s *syncService) apply(ctx context.Context, plan *syncPlan, days []plannedDay) []dayResult {
	opts := repository.UpsertOptions{
		RefreshGuard: plan.guardID == nil,
		Strict:       plan.strict,
	}

	results := make([]dayResult, len(days))
	var g errgroup.Group
	g.SetLimit(s.sched.SyncConcurrency)

	for i := range days {
		results[i].date = days[i].date
		if ctx.Err() != nil {
			results[i].skipped = true
			continue
		}

		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].skipped = true
				return nil
			}
			out, err := s.repo.PostDay.Upsert(ctx, plan.post.ID, days[i].date, days[i].fields, opts)
			if err != nil && ctx.Err() != nil {
				results[i].skipped = true
				return nil
			}
			results[i].outcome = out
			results[i].err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// summarize 汇总逐日结果；失败日期逐一列出，不吞掉任何一天
func (s *syncService) summarize(ctx context.Context, plan *syncPlan, results []dayResult) *dto.SyncResult {
	res := &dto.SyncResult{
		PuestoID: plan.post.ID,
		Modo:     plan.mode(),
		Desde:    pattern.Format(plan.from),
		Hasta:    pattern.Format(plan.to),
	}

	counts := make(map[string]int)
	for _, r := range results {
		fecha := pattern.Format(r.date)
		switch {
		case r.skipped:
			res.DaysSkipped++
			counts["skipped"]++
		case r.err != nil:
			res.Failed = append(res.Failed, pkgerrors.DayFailure{Date: fecha, Error: r.err.Error()})
			counts["failed"]++
			logger.FromContext(ctx, s.logger).Warn("单日排班写入失败",
				zap.String("post_id", plan.post.ID),
				zap.String("fecha", fecha),
				zap.Error(r.err),
			)
		case r.outcome == repository.OutcomeBlocked:
			res.Conflicts = append(res.Conflicts, fecha)
			counts[r.outcome.String()]++
		case r.outcome == repository.OutcomePreserved:
			res.DaysPreserved++
			counts[r.outcome.String()]++
		default:
			res.DaysWritten++
			counts[r.outcome.String()]++
		}
	}
	for outcome, n := range counts {
		s.metrics.SyncDays(outcome, n)
	}

	res.Canceled = res.DaysSkipped > 0
	res.Success = len(res.Failed) == 0 && len(res.Conflicts) == 0 && !res.Canceled

	switch {
	case len(res.Failed) > 0:
		res.Error = (&pkgerrors.PartialFailureError{
			PostID:    plan.post.ID,
			Succeeded: res.DaysWritten + res.DaysPreserved,
			Failed:    res.Failed,
		}).Error()
	case len(res.Conflicts) > 0:
		res.Error = (&pkgerrors.ConflictError{
			PostID: plan.post.ID,
			Date:   strings.Join(res.Conflicts, ","),
		}).Error()
	case res.Canceled:
		res.Error = fmt.Sprintf("同步在完成前被取消，%d 天未写入: %v", res.DaysSkipped, ctx.Err())
	}
	return res
}
