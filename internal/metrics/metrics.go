// Package metrics exposes prometheus instrumentation for the detection
// and compliance path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	InferenceTotal    prometheus.Counter
	InferenceFailures prometheus.Counter
	InferenceSeconds  prometheus.Histogram
	DetectionsTotal   *prometheus.CounterVec
	RuleResultsTotal  *prometheus.CounterVec
	ModelSwitchTotal  prometheus.Counter
}

// New registers the metrics with reg. Passing nil uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		InferenceTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "yolov11_inference_total",
			Help: "Total number of detection inferences attempted",
		}),
		InferenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "yolov11_inference_failures_total",
			Help: "Total number of failed detection inferences",
		}),
		InferenceSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "yolov11_inference_duration_seconds",
			Help:    "Wall time of one detection inference",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		DetectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yolov11_detections_total",
			Help: "Detected objects by category group",
		}, []string{"group"}),
		RuleResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yolov11_rule_results_total",
			Help: "Compliance rule outcomes by status",
		}, []string{"status"}),
		ModelSwitchTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "yolov11_model_switches_total",
			Help: "Total number of successful model switches",
		}),
	}
}

// ObserveInference records one inference attempt.
func (m *Metrics) ObserveInference(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.InferenceTotal.Inc()
	if err != nil {
		m.InferenceFailures.Inc()
		return
	}
	m.InferenceSeconds.Observe(d.Seconds())
}

// CountDetection records one mapped detection.
func (m *Metrics) CountDetection(group string) {
	if m == nil {
		return
	}
	m.DetectionsTotal.WithLabelValues(group).Inc()
}

// CountRuleResult records one rule outcome.
func (m *Metrics) CountRuleResult(status string) {
	if m == nil {
		return
	}
	m.RuleResultsTotal.WithLabelValues(status).Inc()
}

// CountModelSwitch records one successful model switch.
func (m *Metrics) CountModelSwitch() {
	if m == nil {
		return
	}
	m.ModelSwitchTotal.Inc()
}
