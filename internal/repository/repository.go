package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Post     PostRepository
	Role     ServiceRoleRepository
	Guard    GuardRepository
	PostDay  PostDayRepository
	Coverage CoverageRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Post:     NewPostRepo(db),
		Role:     NewServiceRoleRepo(db),
		Guard:    NewGuardRepo(db),
		PostDay:  NewPostDayRepo(db),
		Coverage: NewCoverageRepo(db),
	}
}
