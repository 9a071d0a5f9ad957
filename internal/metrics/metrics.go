// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	ReqCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoh_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoh_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoh_errors_total",
			Help: "Errors returned to clients, by code",
		},
		[]string{"code"},
	)

	// Gameplay
	MissionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoh_missions_completed_total",
			Help: "Mission completions applied to progress",
		},
		[]string{"level", "first"},
	)
	BossVictories = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoh_boss_victories_total",
			Help: "Boss victories applied to progress",
		},
		[]string{"level"},
	)
	AchievementsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoh_achievements_granted_total",
			Help: "Achievement grants by type and outcome",
		},
		[]string{"type", "outcome"},
	)
	PlaySessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoh_play_sessions",
			Help: "Play sessions currently tracked in memory",
		},
	)
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			ReqCount, ReqDuration, ErrorCount,
			MissionsCompleted, BossVictories, AchievementsGranted, PlaySessions,
		)
	})
}
