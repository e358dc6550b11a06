package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"guardroster/internal/model"
	pkgerrors "guardroster/pkg/errors"
)

// GuardRepository 保安数据访问接口（只读）
type GuardRepository interface {
	GetByID(ctx context.Context, id string) (*model.Guard, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Guard, error)
}

// CoverageRepository 顶班记录数据访问接口
type CoverageRepository interface {
	Create(ctx context.Context, rec *model.CoverageRecord) error
	// LatestByDate 每个岗位在该日期 created_at 最新的一条记录
	LatestByDate(ctx context.Context, date time.Time, postIDs []string) ([]model.CoverageRecord, error)
}

// ── Guard Repository 实现 ──

type guardRepo struct {
	db *gorm.DB
}

func NewGuardRepo(db *gorm.DB) GuardRepository {
	return &guardRepo{db: db}
}

func (r *guardRepo) GetByID(ctx context.Context, id string) (*model.Guard, error) {
	var g model.Guard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &pkgerrors.NotFoundError{Entity: "guardia", Key: id}
		}
		return nil, err
	}
	return &g, nil
}

func (r *guardRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Guard, error) {
	var guards []model.Guard
	if len(ids) == 0 {
		return guards, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&guards).Error
	return guards, err
}

// ── Coverage Repository 实现 ──

type coverageRepo struct {
	db *gorm.DB
}

func NewCoverageRepo(db *gorm.DB) CoverageRepository {
	return &coverageRepo{db: db}
}

func (r *coverageRepo) Create(ctx context.Context, rec *model.CoverageRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *coverageRepo) LatestByDate(ctx context.Context, date time.Time, postIDs []string) ([]model.CoverageRecord, error) {
	var recs []model.CoverageRecord
	if len(postIDs) == 0 {
		return recs, nil
	}
	err := r.db.WithContext(ctx).Raw(`
SELECT DISTINCT ON (puesto_id) id, puesto_id, guardia_id, fecha, estado, created_at
FROM turnos_extras
WHERE fecha = ? AND puesto_id IN ?
ORDER BY puesto_id, created_at DESC, id DESC`,
		date.Format("2006-01-02"), postIDs,
	).Scan(&recs).Error
	return recs, err
}
