// Package metrics exposes Prometheus instrumentation for the frame pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesTotal counts processed frames by pipeline mode (idle or active).
	FramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memebooth_frames_total",
		Help: "Frames processed by the pipeline, partitioned by mode.",
	}, []string{"mode"})

	// FrameDuration observes wall-clock time spent processing one frame.
	FrameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "memebooth_frame_duration_seconds",
		Help:    "Wall-clock time spent processing one frame.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	// LifecycleEvents counts entered and exited overlay events.
	LifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memebooth_lifecycle_events_total",
		Help: "Overlay lifecycle events, partitioned by kind.",
	}, []string{"kind"})

	// ActiveOverlays tracks how many overlays are currently visible.
	ActiveOverlays = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memebooth_active_overlays",
		Help: "Overlays currently drawn with non-zero intensity.",
	})

	// Reloads counts successful entry set reloads.
	Reloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memebooth_config_reloads_total",
		Help: "Successful meme entry set reloads.",
	})

	// DetectorErrors counts hand detection failures.
	DetectorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memebooth_detector_errors_total",
		Help: "Hand detection failures.",
	})
)
