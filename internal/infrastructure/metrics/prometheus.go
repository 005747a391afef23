// Package metrics implementa ports.Metrics con Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdmorgan/trading-portal/internal/application/ports"
)

const namespace = "jdmorgan"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus registro propio (no el global) con los contadores de la aplicación.
type Prometheus struct {
	registry       *prometheus.Registry
	submissions    *prometheus.CounterVec
	uploadedBytes  prometheus.Counter
	publishes      *prometheus.CounterVec
	housekeeping   *prometheus.CounterVec
	workspacesOpen prometheus.Gauge
}

// NewPrometheus registra los colectores de la aplicación más los de proceso y runtime.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "intake", Name: "submissions_total",
			Help: "Intenciones de compra/venta registradas.",
		}, []string{"type"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "intake", Name: "uploaded_bytes_total",
			Help: "Bytes de adjuntos subidos al almacén de blobs.",
		}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "admin", Name: "publishes_total",
			Help: "Publicaciones de la configuración del sitio por resultado.",
		}, []string{"result"}),
		housekeeping: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "housekeeping", Name: "deleted_total",
			Help: "Documentos eliminados por trabajo de limpieza.",
		}, []string{"job"}),
		workspacesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "admin", Name: "workspaces_open",
			Help: "Workspaces de administración abiertos.",
		}),
	}
	reg.MustRegister(
		p.submissions, p.uploadedBytes, p.publishes, p.housekeeping, p.workspacesOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry expone el registro (tests y handlers adicionales).
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler handler HTTP de exposición en formato Prometheus.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) SubmissionAccepted(submissionType string) {
	p.submissions.WithLabelValues(submissionType).Inc()
}

func (p *Prometheus) UploadedBytes(n int64) {
	if n > 0 {
		p.uploadedBytes.Add(float64(n))
	}
}

func (p *Prometheus) PublishFinished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	p.publishes.WithLabelValues(result).Inc()
}

func (p *Prometheus) HousekeepingDeleted(job string, n int) {
	if n > 0 {
		p.housekeeping.WithLabelValues(job).Add(float64(n))
	}
}

func (p *Prometheus) WorkspacesOpen(n int) {
	p.workspacesOpen.Set(float64(n))
}
