package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector 排班引擎的 Prometheus 指标
type Collector struct {
	syncRuns      *prometheus.CounterVec
	syncDays      *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	resolveRows   prometheus.Counter
	invalidGuards *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
}

// New 创建并注册指标；reg 为 nil 时使用 prometheus.DefaultRegisterer
func New(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "guardroster"
	}

	c := &Collector{
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Synchronize calls by mode (assign|unassign) and result (ok|partial|conflict|canceled).",
		}, []string{"mode", "result"}),
		syncDays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "days_total",
			Help:      "Per-day upsert outcomes (inserted|overwritten|preserved|blocked|failed|skipped).",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Wall time of a synchronize call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		resolveRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolve",
			Name:      "rows_total",
			Help:      "Resolved daily status rows returned.",
		}),
		invalidGuards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolve",
			Name:      "invalid_guard_candidates_total",
			Help:      "Guard candidates rejected for missing identity data, by source (cobertura|meta|titular).",
		}, []string{"source"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rollback",
			Name:      "actions_total",
			Help:      "Rollback actions (noop|deleted|restored|guard_refreshed|failed).",
		}, []string{"action"}),
	}

	reg.MustRegister(c.syncRuns, c.syncDays, c.syncDuration, c.resolveRows, c.invalidGuards, c.rollbacks)
	return c
}

// NewNop 返回注册到独立 Registry 的指标，供测试使用
func NewNop() *Collector {
	return New(prometheus.NewRegistry(), "")
}

// SyncRun 记录一次同步调用
func (c *Collector) SyncRun(mode, result string, seconds float64) {
	if c == nil {
		return
	}
	c.syncRuns.WithLabelValues(mode, result).Inc()
	c.syncDuration.Observe(seconds)
}

// SyncDays 记录单日写入结果
func (c *Collector) SyncDays(outcome string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.syncDays.WithLabelValues(outcome).Add(float64(n))
}

// ResolvedRows 记录解析返回行数
func (c *Collector) ResolvedRows(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.resolveRows.Add(float64(n))
}

// InvalidGuard 记录被拒绝的保安候选
func (c *Collector) InvalidGuard(source string) {
	if c == nil {
		return
	}
	c.invalidGuards.WithLabelValues(source).Inc()
}

// Rollback 记录回滚动作
func (c *Collector) Rollback(action string) {
	if c == nil {
		return
	}
	c.rollbacks.WithLabelValues(action).Inc()
}
