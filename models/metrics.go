package models

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"

	resultHit  = "hit"
	resultMiss = "miss"
)

var (
	worldCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "world_count",
		Help: "The number of worlds.",
	})

	worldCountTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "world_count_total",
		Help: "The total number of worlds.",
	})

	volumeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "volume_count",
		Help: "The number of registered volumes across worlds.",
	})

	raycastCountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raycast_count_total",
		Help: "The total number of raycasts.",
	}, []string{resultLabel})

	raycastLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "raycast_latency_seconds",
		Help:    "The time to scan the volumes of a world for a raycast.",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
	})
)

func instrumentIncreaseWorldGauge() {
	worldCount.Inc()
	worldCountTotal.Inc()
}

func instrumentDecreaseWorldGauge(volumes int) {
	worldCount.Dec()
	volumeCount.Sub(float64(volumes))
}

func instrumentVolumeAdded() {
	volumeCount.Inc()
}

func instrumentRaycast(hit bool, duration time.Duration) {
	result := resultMiss
	if hit {
		result = resultHit
	}

	raycastCountTotal.
		With(prometheus.Labels{resultLabel: result}).
		Inc()
	raycastLatency.Observe(duration.Seconds())
}
