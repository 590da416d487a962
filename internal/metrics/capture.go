// Package metrics provides Prometheus metrics for capture sessions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camdrv",
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Frames dequeued from the driver",
	}, []string{"device"})

	frameBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camdrv",
		Subsystem: "capture",
		Name:      "frame_bytes_total",
		Help:      "Payload bytes delivered across all frames",
	}, []string{"device"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camdrv",
		Subsystem: "capture",
		Name:      "errors_total",
		Help:      "Capture errors by stage (start, capture, stop)",
	}, []string{"device", "stage"})

	sessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camdrv",
		Subsystem: "capture",
		Name:      "sessions_active",
		Help:      "Capture sessions currently streaming",
	}, []string{"device"})
)

// RecordFrame accounts one dequeued frame and its payload size.
func RecordFrame(device string, bytes int) {
	framesTotal.WithLabelValues(device).Inc()
	frameBytesTotal.WithLabelValues(device).Add(float64(bytes))
}

// RecordError counts an error at the given stage for a device.
func RecordError(device, stage string) {
	errorsTotal.WithLabelValues(device, stage).Inc()
}

// SessionStarted marks a session as streaming.
func SessionStarted(device string) {
	sessionsActive.WithLabelValues(device).Set(1)
}

// SessionStopped marks a session as stopped.
func SessionStopped(device string) {
	sessionsActive.WithLabelValues(device).Set(0)
}

// DeleteDevice removes all metrics for a detached device.
func DeleteDevice(device string) {
	framesTotal.DeleteLabelValues(device)
	frameBytesTotal.DeleteLabelValues(device)
	errorsTotal.DeletePartialMatch(prometheus.Labels{"device": device})
	sessionsActive.DeleteLabelValues(device)
}

// HTTPHandler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
