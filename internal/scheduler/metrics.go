package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_scheduler_runs_total",
			Help: "Scheduled job runs by job and result.",
		},
		[]string{"job", "result"},
	)
	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "support_scheduler_run_duration_seconds",
			Help:    "Scheduled job run durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

func init() {
	prometheus.MustRegister(jobRuns, jobDuration)
}

func observeRun(job string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	jobRuns.WithLabelValues(job, result).Inc()
	jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
