package indicator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "railyard",
		Subsystem: "indicator",
		Name:      "recomputes_total",
		Help:      "Full connectivity recomputations performed by indicator boards.",
	})

	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "railyard",
		Subsystem: "indicator",
		Name:      "recompute_duration_seconds",
		Help:      "Duration of a full connectivity recomputation.",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	candidatesMarkedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "railyard",
		Subsystem: "indicator",
		Name:      "candidates_marked_total",
		Help:      "Connectors marked as snap candidates.",
	})

	overlayClearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railyard",
		Subsystem: "indicator",
		Name:      "overlay_clears_total",
		Help:      "Overlay clear operations by kind (candidates, all).",
	}, []string{"kind"})
)
