package service

import (
	"context"
	"sort"
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

// 实际上岗保安的来源
const (
	FuenteCobertura = "cobertura"
	FuenteMeta      = "meta"
	FuenteTitular   = "titular"
	FuenteNinguna   = "ninguna"
)

// ResolverService 每日状态只读解析
type ResolverService interface {
	Resolve(ctx context.Context, req *dto.DailyStatusRequest) ([]dto.ResolvedDailyStatus, error)
}

type resolverService struct {
	repo    *repository.Repository
	clock   Clock
	loc     *time.Location
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewResolverService 创建 ResolverService 实例
func NewResolverService(repo *repository.Repository, clock Clock, loc *time.Location, m *metrics.Collector, logger *zap.Logger) ResolverService {
	if loc == nil {
		loc = time.UTC
	}
	return &resolverService{repo: repo, clock: clock, loc: loc, metrics: m, logger: logger}
}

// guardCandidate 候选上岗保安，按优先级排列
type guardCandidate struct {
	source string
	id     *string
}

// resolveInput 单行解析所需的全部数据，均已批量加载
type resolveInput struct {
	rec      *model.PostDayRecord
	post     *model.OperationalPost
	coverage *model.CoverageRecord
	guards   map[string]*model.Guard
}

// ════════════════════════════════════════════════════════════
// Resolve — 合并计划、顶班与 meta，得出当日唯一的上岗结论
// ════════════════════════════════════════════════════════════

func (s *resolverService) Resolve(ctx context.Context, req *dto.DailyStatusRequest) ([]dto.ResolvedDailyStatus, error) {
	date := pattern.CivilDate(s.clock.Now(), s.loc)
	if f := strings.TrimSpace(req.Fecha); f != "" {
		d, err := pattern.Parse(f)
		if err != nil {
			return nil, pkgerrors.NewValidation("fecha", "日期格式应为 YYYY-MM-DD")
		}
		date = d
	}

	rows, err := s.repo.PostDay.ListByDate(ctx, date, repository.DayFilter{
		PuestoID:      strings.TrimSpace(req.PuestoID),
		InstalacionID: strings.TrimSpace(req.InstalacionID),
	})
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("查询当日排班失败", zap.String("fecha", pattern.Format(date)), zap.Error(err))
		return nil, err
	}

	records := dedupe(rows)
	postIDs := make([]string, 0, len(records))
	for _, rec := range records {
		postIDs = append(postIDs, rec.PuestoID)
	}

	posts, err := s.repo.Post.ListByIDs(ctx, postIDs)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("查询岗位失败", zap.Error(err))
		return nil, err
	}
	postByID := make(map[string]*model.OperationalPost, len(posts))
	for i := range posts {
		postByID[posts[i].ID] = &posts[i]
	}

	coverages, err := s.repo.Coverage.LatestByDate(ctx, date, postIDs)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("查询顶班记录失败", zap.Error(err))
		return nil, err
	}
	coverageByPost := make(map[string]*model.CoverageRecord, len(coverages))
	for i := range coverages {
		c := &coverages[i]
		// 最新一条已作废时视为没有顶班，不回退到更早的记录
		if c.Estado == model.CoverageEstadoAnulado {
			continue
		}
		coverageByPost[c.PuestoID] = c
	}

	guards, err := s.loadGuards(ctx, records, coverageByPost)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ResolvedDailyStatus, 0, len(records))
	for _, rec := range records {
		out = append(out, s.resolveOne(resolveInput{
			rec:      rec,
			post:     postByID[rec.PuestoID],
			coverage: coverageByPost[rec.PuestoID],
			guards:   guards,
		}))
	}
	sortStatuses(out)

	s.metrics.ResolvedRows(len(out))
	return out, nil
}

// dedupe 过滤关闭 / 停用岗位与非标准状态行后，每个岗位保留主键最大的一行
func dedupe(rows []model.PostDayRecord) []*model.PostDayRecord {
	best := make(map[string]*model.PostDayRecord)
	for i := range rows {
		r := &rows[i]
		if r.Estado != model.EstadoRegistroPlanificado {
			continue
		}
		if r.EstadoPuesto == model.EstadoPuestoCerrado || r.EstadoPuesto == model.EstadoPuestoInactivo {
			continue
		}
		if cur, ok := best[r.PuestoID]; !ok || r.ID > cur.ID {
			best[r.PuestoID] = r
		}
	}

	out := make([]*model.PostDayRecord, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PuestoID < out[j].PuestoID })
	return out
}

// loadGuards 一次性加载所有候选保安
func (s *resolverService) loadGuards(ctx context.Context, records []*model.PostDayRecord, coverage map[string]*model.CoverageRecord) (map[string]*model.Guard, error) {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id *string) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for _, rec := range records {
		add(rec.GuardiaID)
		add(rec.MetaCoverageGuardID())
		if c, ok := coverage[rec.PuestoID]; ok {
			add(model.StrPtr(c.GuardiaID))
		}
	}

	list, err := s.repo.Guard.ListByIDs(ctx, ids)
	if err != nil {
		logger.FromContext(ctx, s.logger).Error("查询保安失败", zap.Error(err))
		return nil, err
	}
	guards := make(map[string]*model.Guard, len(list))
	for i := range list {
		guards[list[i].ID] = &list[i]
	}
	return guards, nil
}

// pickGuard 按优先级返回第一个有效候选；无效候选视为不存在，继续往下找
func (s *resolverService) pickGuard(cands []guardCandidate, guards map[string]*model.Guard) (*model.Guard, string) {
	for _, c := range cands {
		if c.id == nil {
			continue
		}
		g, ok := guards[*c.id]
		if !ok {
			g = &model.Guard{ID: *c.id}
		}
		if err := g.Validate(); err != nil {
			s.metrics.InvalidGuard(c.source)
			s.logger.Debug("跳过无效保安候选",
				zap.String("source", c.source),
				zap.String("guardia_id", *c.id),
				zap.Error(err),
			)
			continue
		}
		return g, c.source
	}
	return nil, FuenteNinguna
}

// resolveOne 单行解析，每个字段只计算一次
func (s *resolverService) resolveOne(in resolveInput) dto.ResolvedDailyStatus {
	rec := in.rec
	st := dto.ResolvedDailyStatus{
		PautaID:            rec.ID,
		Fecha:              pattern.Format(rec.Date()),
		PuestoID:           rec.PuestoID,
		TipoTurno:          rec.TipoTurno,
		EstadoPuesto:       rec.EstadoPuesto,
		EstadoUI:           NormalizeEstadoUI(rec.EstadoGuardia),
		TipoCobertura:      rec.TipoCobertura,
		Observaciones:      rec.Observaciones,
		GuardiaTitularID:   rec.GuardiaID,
		EditadoManualmente: rec.EditadoManualmente,
	}

	// 关联缺失时字段留空，岗位仍然出现在结果中
	if p := in.post; p != nil {
		st.PuestoNombre = model.StrPtr(p.Nombre)
		st.InstalacionID = model.StrPtr(p.InstalacionID)
		st.RolID = model.StrPtr(p.RolID)
		st.EsPPC = p.EsPPC
		if p.Instalacion != nil {
			st.InstalacionNombre = model.StrPtr(p.Instalacion.Nombre)
		}
		if p.Rol != nil {
			st.RolNombre = model.StrPtr(p.Rol.Nombre)
			st.HoraInicio = model.StrPtr(p.Rol.HoraInicio)
			st.HoraTermino = model.StrPtr(p.Rol.HoraTermino)
		}
	}
	if rec.EstadoPuesto == model.EstadoPuestoPPC {
		st.EsPPC = true
	}

	var coverageGuard *string
	if c := in.coverage; c != nil {
		st.CoberturaID = model.StrPtr(c.ID)
		coverageGuard = model.StrPtr(c.GuardiaID)
		st.CoberturaGuardiaID = coverageGuard
	}

	titular, _ := s.pickGuard([]guardCandidate{{FuenteTitular, rec.GuardiaID}}, in.guards)
	if titular != nil {
		st.GuardiaTitularNombre = titular.FullName()
	}

	working, source := s.pickGuard([]guardCandidate{
		{FuenteCobertura, coverageGuard},
		{FuenteMeta, rec.MetaCoverageGuardID()},
	}, in.guards)
	if working == nil && titular != nil {
		working, source = titular, FuenteTitular
	}
	st.FuenteGuardia = source
	if working != nil {
		st.GuardiaTrabajoID = model.StrPtr(working.ID)
		st.GuardiaTrabajoNombre = working.FullName()
		st.GuardiaTrabajoTelefono = working.Phone()
	}

	st.EsReemplazo = working != nil &&
		(source == FuenteCobertura || source == FuenteMeta) &&
		!model.SameID(st.GuardiaTrabajoID, rec.GuardiaID)
	st.EsSinCobertura = st.EstadoUI == model.EstadoUISinCobertura || st.EstadoUI == model.EstadoUIInasistencia
	st.EsFaltaSinAviso = st.EstadoUI == model.EstadoUIInasistencia
	st.NecesitaCobertura = st.EsSinCobertura ||
		(st.EsPPC && titular == nil) ||
		(rec.TipoTurno == model.TipoTurnoPlanificado && working == nil)

	return st
}

// sortStatuses 按装置名、岗位名、岗位 ID 排序
func sortStatuses(list []dto.ResolvedDailyStatus) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if ai, bi := model.StrVal(a.InstalacionNombre), model.StrVal(b.InstalacionNombre); ai != bi {
			return ai < bi
		}
		if ap, bp := model.StrVal(a.PuestoNombre), model.StrVal(b.PuestoNombre); ap != bp {
			return ap < bp
		}
		return a.PuestoID < b.PuestoID
	})
}
