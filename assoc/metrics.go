package assoc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// updateEventTotal 按来源统计标注更新事件
	updateEventTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_assoc_update_events_total",
		Help: "Total dimension update events by source",
	}, []string{"source"})

	// recomputeDuration 一次 UpdateData 全量重算的耗时
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cad_assoc_recompute_duration_seconds",
		Help:    "Full relationship recompute duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
	})

	// unevaluableTotal 无法计算的关系(引用失效、公式错误)，按类型统计
	unevaluableTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_assoc_unevaluable_total",
		Help: "Relationship or dependency evaluations that produced no result",
	}, []string{"type"})
)
