package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"guardroster/internal/model"
	pkgerrors "guardroster/pkg/errors"
)

// PostRepository 运营岗位数据访问接口（只读）
type PostRepository interface {
	GetByID(ctx context.Context, id string) (*model.OperationalPost, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.OperationalPost, error)
}

// ServiceRoleRepository 勤务角色数据访问接口（只读）
type ServiceRoleRepository interface {
	GetByID(ctx context.Context, id string) (*model.ServiceRole, error)
}

// ── Post Repository 实现 ──

type postRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*model.OperationalPost, error) {
	var post model.OperationalPost
	err := r.db.WithContext(ctx).
		Preload("Instalacion").
		Preload("Rol").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &pkgerrors.NotFoundError{Entity: "puesto", Key: id}
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepo) ListByIDs(ctx context.Context, ids []string) ([]model.OperationalPost, error) {
	var posts []model.OperationalPost
	if len(ids) == 0 {
		return posts, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Instalacion").
		Preload("Rol").
		Where("id IN ?", ids).
		Find(&posts).Error
	return posts, err
}

// ── ServiceRole Repository 实现 ──

type serviceRoleRepo struct {
	db *gorm.DB
}

func NewServiceRoleRepo(db *gorm.DB) ServiceRoleRepository {
	return &serviceRoleRepo{db: db}
}

func (r *serviceRoleRepo) GetByID(ctx context.Context, id string) (*model.ServiceRole, error) {
	var role model.ServiceRole
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &pkgerrors.NotFoundError{Entity: "rol_servicio", Key: id}
		}
		return nil, err
	}
	return &role, nil
}
