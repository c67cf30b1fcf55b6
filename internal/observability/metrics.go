package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/sandbox/internal/launch"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandbox",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sandbox",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	launchSpawns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "spawns_total",
			Help:      "Workers started by launchers.",
		},
		[]string{"launcher"},
	)
	launchSpawnsIgnored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "spawns_ignored_total",
			Help:      "Spawn calls ignored because a worker was attached or the launcher was closed.",
		},
		[]string{"launcher"},
	)
	launchTicks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "ticks_total",
			Help:      "Counter lines emitted by workers.",
		},
		[]string{"launcher"},
	)
	launchJoins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "joins_total",
			Help:      "Workers joined on launcher close.",
		},
		[]string{"launcher"},
	)
	launchActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "active_workers",
			Help:      "Workers spawned and not yet joined.",
		},
	)
	launchLifetime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sandbox",
			Subsystem: "launch",
			Name:      "worker_lifetime_seconds",
			Help:      "Time from spawn to join in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 1.25, 1.5, 2, 5},
		},
		[]string{"launcher"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			launchSpawns,
			launchSpawnsIgnored,
			launchTicks,
			launchJoins,
			launchActive,
			launchLifetime,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// LaunchRecorder reports launcher lifecycle events to the default registry.
type LaunchRecorder struct{}

var _ launch.Recorder = LaunchRecorder{}

func NewLaunchRecorder() LaunchRecorder {
	RegisterMetrics()
	return LaunchRecorder{}
}

func (LaunchRecorder) Spawned(name string) {
	launchSpawns.WithLabelValues(name).Inc()
	launchActive.Inc()
}

func (LaunchRecorder) SpawnIgnored(name string) {
	launchSpawnsIgnored.WithLabelValues(name).Inc()
}

func (LaunchRecorder) Tick(name string) {
	launchTicks.WithLabelValues(name).Inc()
}

func (LaunchRecorder) Joined(name string, lifetime time.Duration, _ int) {
	launchJoins.WithLabelValues(name).Inc()
	launchActive.Dec()
	launchLifetime.WithLabelValues(name).Observe(lifetime.Seconds())
}
