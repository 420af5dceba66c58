package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry           *prom.Registry
	controlTransitions *prom.CounterVec
	persistFailures    *prom.CounterVec
	snapshotWrites     prom.Counter
	unviewed           *prom.GaugeVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when reg is nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		controlTransitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "thermacore",
			Name:      "control_transitions_total",
			Help:      "Unit control transitions by control and outcome",
		}, []string{"control", "result"}),
		persistFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "thermacore",
			Name:      "persist_failures_total",
			Help:      "Failed durable storage writes by key",
		}, []string{"key"}),
		snapshotWrites: prom.NewCounter(prom.CounterOpts{
			Namespace: "thermacore",
			Name:      "notification_snapshot_writes_total",
			Help:      "Unresolved notification snapshots written",
		}),
		unviewed: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "thermacore",
			Name:      "notifications_unviewed",
			Help:      "Unviewed notifications by role as of the last read",
		}, []string{"role"}),
	}
	reg.MustRegister(pr.controlTransitions, pr.persistFailures, pr.snapshotWrites, pr.unviewed)
	return pr
}

func (p *PrometheusRecorder) IncControlTransition(control string, result ResultLabel) {
	p.controlTransitions.WithLabelValues(control, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPersistFailure(key string) {
	p.persistFailures.WithLabelValues(key).Inc()
}

func (p *PrometheusRecorder) IncSnapshotWrite() {
	p.snapshotWrites.Inc()
}

func (p *PrometheusRecorder) SetUnviewedNotifications(role string, n int) {
	p.unviewed.WithLabelValues(role).Set(float64(n))
}

// HTTPHandler serves the recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
