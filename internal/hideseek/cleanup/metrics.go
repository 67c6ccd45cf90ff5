package cleanup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics: 정리 서비스 Prometheus 지표
type Metrics struct {
	runs     *prometheus.CounterVec
	skipped  prometheus.Counter
	deleted  prometheus.Counter
	repaired prometheus.Counter
	duration prometheus.Histogram
}

// NewMetrics: reg 에 지표를 등록합니다. reg 가 nil 이면 등록하지 않습니다.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hideseek_cleanup_runs_total",
			Help: "Cleanup runs by final status.",
		}, []string{"status"}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "hideseek_cleanup_runs_skipped_total",
			Help: "Scheduled runs skipped because another instance held the lock.",
		}),
		deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "hideseek_cleanup_keys_deleted_total",
			Help: "Keys deleted by cleanup (near-expiry and orphans).",
		}),
		repaired: factory.NewCounter(prometheus.CounterOpts{
			Name: "hideseek_cleanup_keys_repaired_total",
			Help: "Keys found without TTL and repaired.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "hideseek_cleanup_duration_seconds",
			Help:    "Cleanup run duration including retries.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) observe(result CleanupResult) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(result.Status)).Inc()
	m.deleted.Add(float64(result.DeletedKeys))
	m.repaired.Add(float64(result.RepairedKeys))
	m.duration.Observe(result.Duration.Seconds())
}

func (m *Metrics) observeSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}
