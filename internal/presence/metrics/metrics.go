package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActivityRequests       prometheus.Counter
	ActivityThrottled      prometheus.Counter
	ActivityWrites         *prometheus.CounterVec
	ThrottleCacheSize      prometheus.Gauge
	ReconcilerSweeps       prometheus.Counter
	SubjectsFlippedOffline *prometheus.CounterVec
	StatusBroadcasts       prometheus.Counter
	BroadcastsDropped      prometheus.Counter
	OnlineSubjects         *prometheus.GaugeVec
	ConnectionsOpen        prometheus.Gauge
	DailyCleanupRuns       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ActivityRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_activity_requests_total",
			Help: "Total activity signals received on the pull path",
		}),
		ActivityThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_activity_throttled_total",
			Help: "Activity signals suppressed by the throttle window",
		}),
		ActivityWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meeshy_presence_activity_writes_total",
			Help: "Persisted lastActiveAt writes by result",
		}, []string{"result"}),
		ThrottleCacheSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "meeshy_presence_throttle_cache_entries",
			Help: "Current number of throttle cache entries",
		}),
		ReconcilerSweeps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_reconciler_sweeps_total",
			Help: "Total reconciliation sweep ticks executed",
		}),
		SubjectsFlippedOffline: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meeshy_presence_subjects_flipped_offline_total",
			Help: "Subjects flipped offline by the reconciliation sweep",
		}, []string{"kind"}),
		StatusBroadcasts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_status_broadcasts_total",
			Help: "Status change notifications delivered to the broadcast callback",
		}),
		BroadcastsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_status_broadcasts_dropped_total",
			Help: "Status change notifications dropped because no callback was registered",
		}),
		OnlineSubjects: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "meeshy_presence_online_subjects",
			Help: "Online subjects by kind, as of the last sweep",
		}, []string{"kind"}),
		ConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "meeshy_presence_connections_open",
			Help: "Currently tracked live transport connections",
		}),
		DailyCleanupRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meeshy_presence_daily_cleanup_runs_total",
			Help: "Daily cleanup executions",
		}),
	}
}
