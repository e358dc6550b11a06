package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"guardroster/internal/model"
	"guardroster/internal/repository"

	pkgerrors "guardroster/pkg/errors"
)

// ── Mock PostRepository ──

type mockPostRepo struct {
	posts map[string]*model.OperationalPost
	err   error
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[string]*model.OperationalPost)}
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*model.OperationalPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return nil, &pkgerrors.NotFoundError{Entity: "puesto", Key: id}
}

func (m *mockPostRepo) ListByIDs(_ context.Context, ids []string) ([]model.OperationalPost, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.OperationalPost
	for _, id := range ids {
		if p, ok := m.posts[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Mock ServiceRoleRepository ──

type mockRoleRepo struct {
	roles map[string]*model.ServiceRole
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: make(map[string]*model.ServiceRole)}
}

func (m *mockRoleRepo) GetByID(_ context.Context, id string) (*model.ServiceRole, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, &pkgerrors.NotFoundError{Entity: "rol_servicio", Key: id}
}

// ── Mock GuardRepository ──

type mockGuardRepo struct {
	guards map[string]*model.Guard
}

func newMockGuardRepo() *mockGuardRepo {
	return &mockGuardRepo{guards: make(map[string]*model.Guard)}
}

func (m *mockGuardRepo) GetByID(_ context.Context, id string) (*model.Guard, error) {
	if g, ok := m.guards[id]; ok {
		return g, nil
	}
	return nil, &pkgerrors.NotFoundError{Entity: "guardia", Key: id}
}

func (m *mockGuardRepo) ListByIDs(_ context.Context, ids []string) ([]model.Guard, error) {
	var result []model.Guard
	for _, id := range ids {
		if g, ok := m.guards[id]; ok {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── Mock CoverageRepository ──

type mockCoverageRepo struct {
	records []model.CoverageRecord
}

func newMockCoverageRepo() *mockCoverageRepo {
	return &mockCoverageRepo{}
}

func (m *mockCoverageRepo) Create(_ context.Context, rec *model.CoverageRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *mockCoverageRepo) LatestByDate(_ context.Context, date time.Time, postIDs []string) ([]model.CoverageRecord, error) {
	wanted := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}
	latest := make(map[string]model.CoverageRecord)
	for _, r := range m.records {
		if !wanted[r.PuestoID] || !r.Fecha.Equal(date) {
			continue
		}
		if cur, ok := latest[r.PuestoID]; !ok || r.CreatedAt.After(cur.CreatedAt) {
			latest[r.PuestoID] = r
		}
	}
	var result []model.CoverageRecord
	for _, r := range latest {
		result = append(result, r)
	}
	return result, nil
}

// ── Mock PostDayRepository ──
// 按 SQL 语义实现保留 / 严格模式，并发安全

type dayKey struct {
	post string
	date string
}

func keyOf(postID string, date time.Time) dayKey {
	return dayKey{post: postID, date: date.Format("2006-01-02")}
}

type mockPostDayRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[dayKey]*model.PostDayRecord
	legacy []model.PostDayRecord // 绕过唯一键的历史重复行，仅 ListByDate 可见
	posts  *mockPostRepo

	failDates    map[string]error
	beforeUpsert func(date time.Time)
	upserts      int
	listErr      error
}

func newMockPostDayRepo(posts *mockPostRepo) *mockPostDayRepo {
	return &mockPostDayRepo{
		rows:      make(map[dayKey]*model.PostDayRecord),
		posts:     posts,
		failDates: make(map[string]error),
	}
}

func (m *mockPostDayRepo) Upsert(_ context.Context, postID string, date time.Time, f model.PostDayFields, opts repository.UpsertOptions) (repository.UpsertOutcome, error) {
	if m.beforeUpsert != nil {
		m.beforeUpsert(date)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++

	if err, ok := m.failDates[date.Format("2006-01-02")]; ok {
		return 0, err
	}

	k := keyOf(postID, date)
	rec, ok := m.rows[k]
	if !ok {
		m.nextID++
		m.rows[k] = &model.PostDayRecord{
			ID:               m.nextID,
			PuestoID:         postID,
			Anio:             date.Year(),
			Mes:              int(date.Month()),
			Dia:              date.Day(),
			GuardiaID:        f.GuardiaID,
			TipoTurno:        f.TipoTurno,
			EstadoPuesto:     f.EstadoPuesto,
			Estado:           model.EstadoRegistroPlanificado,
			EstadoGuardia:    f.EstadoGuardia,
			TipoCobertura:    f.TipoCobertura,
			GuardiaTrabajoID: f.GuardiaTrabajoID,
		}
		return repository.OutcomeInserted, nil
	}

	if rec.EditadoManualmente {
		if opts.Strict {
			return repository.OutcomeBlocked, nil
		}
		if opts.RefreshGuard {
			rec.GuardiaID = f.GuardiaID
		}
		return repository.OutcomePreserved, nil
	}

	rec.GuardiaID = f.GuardiaID
	rec.TipoTurno = f.TipoTurno
	rec.EstadoPuesto = f.EstadoPuesto
	rec.Estado = model.EstadoRegistroPlanificado
	rec.EstadoGuardia = f.EstadoGuardia
	rec.TipoCobertura = f.TipoCobertura
	rec.GuardiaTrabajoID = f.GuardiaTrabajoID
	return repository.OutcomeOverwritten, nil
}

func (m *mockPostDayRepo) Get(_ context.Context, postID string, date time.Time) (*model.PostDayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.rows[keyOf(postID, date)]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: postID}
}

func (m *mockPostDayRepo) RefreshGuard(_ context.Context, postID string, date time.Time, guardID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[keyOf(postID, date)]
	if !ok {
		return &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: postID}
	}
	rec.GuardiaID = guardID
	return nil
}

func (m *mockPostDayRepo) Delete(_ context.Context, postID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := keyOf(postID, date)
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

func (m *mockPostDayRepo) ListByDate(_ context.Context, date time.Time, filter repository.DayFilter) ([]model.PostDayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	match := func(r *model.PostDayRecord) bool {
		if !r.Date().Equal(date) {
			return false
		}
		if filter.PuestoID != "" && r.PuestoID != filter.PuestoID {
			return false
		}
		if filter.InstalacionID != "" {
			p, ok := m.posts.posts[r.PuestoID]
			if !ok || p.InstalacionID != filter.InstalacionID {
				return false
			}
		}
		return true
	}

	var result []model.PostDayRecord
	for _, r := range m.rows {
		if match(r) {
			result = append(result, *r)
		}
	}
	for i := range m.legacy {
		if match(&m.legacy[i]) {
			result = append(result, m.legacy[i])
		}
	}
	return result, nil
}

func (m *mockPostDayRepo) ListByMonth(_ context.Context, postID string, year, month int) ([]model.PostDayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.PostDayRecord
	for _, r := range m.rows {
		if r.PuestoID == postID && r.Anio == year && r.Mes == month {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Dia < result[j].Dia })
	return result, nil
}

func (m *mockPostDayRepo) MarkExecution(_ context.Context, postID string, date time.Time, upd repository.ExecutionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.rows[keyOf(postID, date)]
	if !ok {
		return &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: postID}
	}
	estado := upd.EstadoGuardia
	rec.EstadoGuardia = &estado
	rec.EditadoManualmente = true
	if upd.Observaciones != nil {
		rec.Observaciones = upd.Observaciones
	}
	if upd.GuardiaTrabajoID != nil {
		rec.GuardiaTrabajoID = upd.GuardiaTrabajoID
	}
	if upd.TipoCobertura != nil {
		rec.TipoCobertura = *upd.TipoCobertura
	}
	return nil
}

// row 测试辅助：直接读取某天的行
func (m *mockPostDayRepo) row(postID string, date time.Time) *model.PostDayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[keyOf(postID, date)]
}

// snapshot 测试辅助：当前全部行的拷贝
func (m *mockPostDayRepo) snapshot() map[dayKey]model.PostDayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[dayKey]model.PostDayRecord, len(m.rows))
	for k, v := range m.rows {
		out[k] = *v
	}
	return out
}

// ── 时钟 ──

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// ── 测试环境 ──

type testEnv struct {
	posts    *mockPostRepo
	roles    *mockRoleRepo
	guards   *mockGuardRepo
	days     *mockPostDayRepo
	coverage *mockCoverageRepo
	repo     *repository.Repository
	clock    fixedClock
}

func newTestEnv() *testEnv {
	posts := newMockPostRepo()
	env := &testEnv{
		posts:    posts,
		roles:    newMockRoleRepo(),
		guards:   newMockGuardRepo(),
		days:     newMockPostDayRepo(posts),
		coverage: newMockCoverageRepo(),
		clock:    fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	env.repo = &repository.Repository{
		Post:     env.posts,
		Role:     env.roles,
		Guard:    env.guards,
		PostDay:  env.days,
		Coverage: env.coverage,
	}
	return env
}

// seedPost 创建岗位（装置 inst-1）及其 work x rest 勤务角色
func (e *testEnv) seedPost(id string, work, rest int) *model.OperationalPost {
	role := &model.ServiceRole{
		ID:           "rol-" + id,
		Nombre:       "turno",
		DiasTrabajo:  work,
		DiasDescanso: rest,
		HoraInicio:   "08:00",
		HoraTermino:  "20:00",
	}
	e.roles.roles[role.ID] = role
	post := &model.OperationalPost{
		ID:            id,
		Nombre:        "Puesto " + id,
		InstalacionID: "inst-1",
		RolID:         role.ID,
		Activo:        true,
		Instalacion:   &model.Installation{ID: "inst-1", Nombre: "Planta Norte", Activo: true},
		Rol:           role,
	}
	e.posts.posts[id] = post

	// 常用保安，个别用例会用 seedGuard 覆盖
	if _, ok := e.guards.guards["g1"]; !ok {
		e.seedGuard("g1", "Juan", "Pérez")
	}
	if _, ok := e.guards.guards["g2"]; !ok {
		e.seedGuard("g2", "Luis", "Rojas")
	}
	return post
}

func (e *testEnv) seedGuard(id, nombre, paterno string) *model.Guard {
	g := &model.Guard{
		ID:              id,
		Nombre:          model.StrPtr(nombre),
		ApellidoPaterno: model.StrPtr(paterno),
		Telefono:        model.StrPtr("+56911111111"),
		Activo:          true,
	}
	e.guards.guards[id] = g
	return g
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
