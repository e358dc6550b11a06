package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"guardroster/config"
	pkgerrors "guardroster/pkg/errors"
)

// Client Redis 客户端封装
// 当前用于岗位同步锁与接口限流
type Client struct {
	rdb     *goredis.Client
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return NewFromClient(rdb, cfg.LockTTL, logger), nil
}

// NewFromClient 用已有的 go-redis 客户端构造封装（测试中配合 miniredis 使用）
func NewFromClient(rdb *goredis.Client, lockTTL time.Duration, logger *zap.Logger) *Client {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	return &Client{rdb: rdb, lockTTL: lockTTL, logger: logger}
}

// ── 岗位同步锁 ──

const postLockPrefix = "lock:puesto:"

// releaseScript 仅当锁仍属于自己时释放，避免误删他人续上的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockPost 获取岗位级互斥锁，在 ctx 结束前按固定间隔重试。
// 返回的 unlock 可安全重复调用。
func (c *Client) LockPost(ctx context.Context, postID string) (func(), error) {
	key := postLockPrefix + postID
	token := uuid.New().String()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, c.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("获取岗位锁失败: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", pkgerrors.ErrPostLocked, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			// 释放锁不受调用方 ctx 取消影响
			releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, c.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				c.logger.Warn("释放岗位锁失败", zap.String("post_id", postID), zap.Error(err))
			}
		})
	}
	return unlock, nil
}

// ── 滑动窗口限流 ──

// CheckRateLimit 基于 ZSET 的滑动窗口限流，返回本次请求是否放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", minScore)
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	if card.Val() >= int64(limit) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.New().String()
	pipe = c.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
