package constraint

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cad_constraint_solve_duration_seconds",
		Help:    "Constraint solve pass duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
	})

	// solutionTotal 求解结果，按是否可满足统计
	solutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cad_constraint_solutions_total",
		Help: "Constraint solutions by outcome",
	}, []string{"outcome"})
)
