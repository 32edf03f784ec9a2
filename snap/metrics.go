package snap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// snapTotal 按类别统计命中次数，未命中记为 none
	snapTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_snap_total",
		Help: "Total snap queries by resulting category",
	}, []string{"category"})

	// snapDuration 单次查询耗时
	snapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cad_snap_duration_seconds",
		Help:    "Snap query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs 到 ~160ms
	})
)
