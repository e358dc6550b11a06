package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"guardroster/internal/model"
	pkgerrors "guardroster/pkg/errors"
)

// UpsertOutcome 单日写入结果
type UpsertOutcome int

const (
	// OutcomeInserted 新插入
	OutcomeInserted UpsertOutcome = iota + 1
	// OutcomeOverwritten 未人工编辑的旧行被整行覆盖
	OutcomeOverwritten
	// OutcomePreserved 人工编辑行被保留（仅可能刷新 guardia_id）
	OutcomePreserved
	// OutcomeBlocked 严格模式下遇到人工编辑行，未做任何修改
	OutcomeBlocked
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeOverwritten:
		return "overwritten"
	case OutcomePreserved:
		return "preserved"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// UpsertOptions 冲突时的处理方式
type UpsertOptions struct {
	// RefreshGuard 人工编辑行也刷新 guardia_id（仅取消指派时使用）
	RefreshGuard bool
	// Strict 人工编辑行整行不动，结果为 OutcomeBlocked
	Strict bool
}

// DayFilter 按日查询的可选过滤条件
type DayFilter struct {
	PuestoID      string
	InstalacionID string
}

// ExecutionUpdate 人工执行标记
type ExecutionUpdate struct {
	EstadoGuardia    string
	Observaciones    *string
	GuardiaTrabajoID *string
	TipoCobertura    *string
}

// PostDayRepository 月度排班行数据访问接口
type PostDayRepository interface {
	Upsert(ctx context.Context, postID string, date time.Time, f model.PostDayFields, opts UpsertOptions) (UpsertOutcome, error)
	Get(ctx context.Context, postID string, date time.Time) (*model.PostDayRecord, error)
	RefreshGuard(ctx context.Context, postID string, date time.Time, guardID *string) error
	Delete(ctx context.Context, postID string, date time.Time) (bool, error)
	ListByDate(ctx context.Context, date time.Time, filter DayFilter) ([]model.PostDayRecord, error)
	ListByMonth(ctx context.Context, postID string, year, month int) ([]model.PostDayRecord, error)
	MarkExecution(ctx context.Context, postID string, date time.Time, upd ExecutionUpdate) error
}

// ── PostDay Repository 实现 ──

type postDayRepo struct {
	db *gorm.DB
}

func NewPostDayRepo(db *gorm.DB) PostDayRepository {
	return &postDayRepo{db: db}
}

// 人工编辑行保留原值的列
var preservedColumns = []string{
	"tipo_turno",
	"estado_puesto",
	"estado",
	"estado_guardia",
	"tipo_cobertura",
	"guardia_trabajo_id",
}

// buildUpsertSQL 生成单条原子条件 upsert。
// 是否人工编辑的判断与写入在同一条语句内完成，不存在先读后写的竞态。
func buildUpsertSQL(opts UpsertOptions) string {
	var b strings.Builder
	b.WriteString(`INSERT INTO pauta_mensual
  (puesto_id, anio, mes, dia, guardia_id, tipo_turno, estado_puesto, estado,
   estado_guardia, tipo_cobertura, guardia_trabajo_id, editado_manualmente, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, false, NOW(), NOW())
ON CONFLICT (puesto_id, anio, mes, dia) DO UPDATE SET
`)
	if opts.RefreshGuard {
		b.WriteString("  guardia_id = EXCLUDED.guardia_id")
	} else {
		b.WriteString("  guardia_id = CASE WHEN pauta_mensual.editado_manualmente THEN pauta_mensual.guardia_id ELSE EXCLUDED.guardia_id END")
	}
	for _, col := range preservedColumns {
		fmt.Fprintf(&b, ",\n  %[1]s = CASE WHEN pauta_mensual.editado_manualmente THEN pauta_mensual.%[1]s ELSE EXCLUDED.%[1]s END", col)
	}
	b.WriteString(",\n  updated_at = EXCLUDED.updated_at")
	if opts.Strict {
		b.WriteString("\nWHERE NOT pauta_mensual.editado_manualmente")
	}
	b.WriteString("\nRETURNING editado_manualmente, (xmax = 0) AS inserted")
	return b.String()
}

type upsertReturning struct {
	EditadoManualmente bool
	Inserted           bool
}

func (r *postDayRepo) Upsert(ctx context.Context, postID string, date time.Time, f model.PostDayFields, opts UpsertOptions) (UpsertOutcome, error) {
	var rows []upsertReturning
	err := r.db.WithContext(ctx).Raw(buildUpsertSQL(opts),
		postID, date.Year(), int(date.Month()), date.Day(),
		f.GuardiaID, f.TipoTurno, f.EstadoPuesto, model.EstadoRegistroPlanificado,
		f.EstadoGuardia, f.TipoCobertura, f.GuardiaTrabajoID,
	).Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	switch {
	case len(rows) == 0:
		// 仅严格模式的 WHERE 条件会让冲突行不返回
		return OutcomeBlocked, nil
	case rows[0].Inserted:
		return OutcomeInserted, nil
	case rows[0].EditadoManualmente:
		return OutcomePreserved, nil
	default:
		return OutcomeOverwritten, nil
	}
}

func dayKey(postID string, date time.Time) string {
	return postID + "@" + date.Format("2006-01-02")
}

func (r *postDayRepo) whereDay(ctx context.Context, postID string, date time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.PostDayRecord{}).
		Where("puesto_id = ? AND anio = ? AND mes = ? AND dia = ?",
			postID, date.Year(), int(date.Month()), date.Day())
}

func (r *postDayRepo) Get(ctx context.Context, postID string, date time.Time) (*model.PostDayRecord, error) {
	var rec model.PostDayRecord
	err := r.whereDay(ctx, postID, date).Order("id DESC").First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: dayKey(postID, date)}
		}
		return nil, err
	}
	return &rec, nil
}

// RefreshGuard 只更新 guardia_id，不插入、不触碰执行字段
func (r *postDayRepo) RefreshGuard(ctx context.Context, postID string, date time.Time, guardID *string) error {
	result := r.whereDay(ctx, postID, date).Updates(map[string]interface{}{
		"guardia_id": guardID,
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: dayKey(postID, date)}
	}
	return nil
}

func (r *postDayRepo) Delete(ctx context.Context, postID string, date time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("puesto_id = ? AND anio = ? AND mes = ? AND dia = ?",
			postID, date.Year(), int(date.Month()), date.Day()).
		Delete(&model.PostDayRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *postDayRepo) ListByDate(ctx context.Context, date time.Time, filter DayFilter) ([]model.PostDayRecord, error) {
	var recs []model.PostDayRecord
	query := r.db.WithContext(ctx).
		Where("anio = ? AND mes = ? AND dia = ?", date.Year(), int(date.Month()), date.Day())
	if filter.PuestoID != "" {
		query = query.Where("puesto_id = ?", filter.PuestoID)
	}
	if filter.InstalacionID != "" {
		query = query.Where("puesto_id IN (?)",
			r.db.Model(&model.OperationalPost{}).Select("id").Where("instalacion_id = ?", filter.InstalacionID))
	}
	err := query.Order("puesto_id ASC, id DESC").Find(&recs).Error
	return recs, err
}

func (r *postDayRepo) ListByMonth(ctx context.Context, postID string, year, month int) ([]model.PostDayRecord, error) {
	var recs []model.PostDayRecord
	err := r.db.WithContext(ctx).
		Where("puesto_id = ? AND anio = ? AND mes = ?", postID, year, month).
		Order("dia ASC, id DESC").
		Find(&recs).Error
	return recs, err
}

// MarkExecution 人工标记执行状态，同时置 editado_manualmente = true
func (r *postDayRepo) MarkExecution(ctx context.Context, postID string, date time.Time, upd ExecutionUpdate) error {
	fields := map[string]interface{}{
		"estado_guardia":      upd.EstadoGuardia,
		"editado_manualmente": true,
		"updated_at":          gorm.Expr("NOW()"),
	}
	if upd.Observaciones != nil {
		fields["observaciones"] = *upd.Observaciones
	}
	if upd.GuardiaTrabajoID != nil {
		fields["guardia_trabajo_id"] = *upd.GuardiaTrabajoID
	}
	if upd.TipoCobertura != nil {
		fields["tipo_cobertura"] = *upd.TipoCobertura
	}

	result := r.whereDay(ctx, postID, date).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &pkgerrors.NotFoundError{Entity: "pauta_mensual", Key: dayKey(postID, date)}
	}
	return nil
}
