package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"guardroster/config"
	"guardroster/internal/repository"
	"guardroster/pkg/metrics"

	pkgerrors "guardroster/pkg/errors"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Sync      SyncService
	Resolver  ResolverService
	Rollback  RollbackService
	Execution ExecutionService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker PostLocker,
	clock Clock,
	m *metrics.Collector,
	logger *zap.Logger,
) *Service {
	loc := cfg.Schedule.Location()
	return &Service{
		Sync:      NewSyncService(cfg.Schedule, repo, locker, clock, m, logger),
		Resolver:  NewResolverService(repo, clock, loc, m, logger),
		Rollback:  NewRollbackService(repo, locker, m, logger),
		Execution: NewExecutionService(repo, clock, logger),
	}
}

// ── 时钟 ──

// Clock 提供"现在"，未指定生效日期时用于计算当天
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回系统时钟
func SystemClock() Clock { return systemClock{} }

// ── 岗位锁 ──

// PostLocker 按岗位串行化排班写入；返回的 unlock 可重复调用
type PostLocker interface {
	LockPost(ctx context.Context, postID string) (func(), error)
}

// localLocker 进程内按岗位加锁，Redis 不可用时使用（仅保证单实例串行）
type localLocker struct {
	slots *xsync.MapOf[string, chan struct{}]
}

// NewLocalLocker 创建进程内岗位锁
func NewLocalLocker() PostLocker {
	return &localLocker{slots: xsync.NewMapOf[string, chan struct{}]()}
}

func (l *localLocker) LockPost(ctx context.Context, postID string) (func(), error) {
	slot, _ := l.slots.LoadOrStore(postID, make(chan struct{}, 1))
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrPostLocked, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-slot })
	}, nil
}
