// Package metrics expone contadores Prometheus del almacenamiento, los presupuestos y la API HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los colectores registrados en un registro propio (no global).
type Metrics struct {
	registry *prometheus.Registry

	StorageWrites     *prometheus.CounterVec
	QuotaEvictions    prometheus.Counter
	QuotesSaved       *prometheus.CounterVec
	DocumentsRendered *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New crea y registra los colectores bajo namespace. Incluye los colectores de proceso y runtime.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		StorageWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_writes_total",
			Help:      "Escrituras del documento por resultado (ok, retried, failed, quota_exceeded).",
		}, []string{"result"}),
		QuotaEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_quota_evictions_total",
			Help:      "Presupuestos eliminados por la política de retención.",
		}),
		QuotesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_saved_total",
			Help:      "Operaciones sobre presupuestos por acción.",
		}, []string{"action"}),
		DocumentsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Documentos generados por tipo (pdf, preview, ubl).",
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por método, ruta y código.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.StorageWrites, m.QuotaEvictions, m.QuotesSaved, m.DocumentsRendered,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry devuelve el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler sirve el formato de exposición de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StorageWrite implementa storage.Observer.
func (m *Metrics) StorageWrite(result string) { m.StorageWrites.WithLabelValues(result).Inc() }

// StorageEvicted implementa storage.Observer.
func (m *Metrics) StorageEvicted(n int) { m.QuotaEvictions.Add(float64(n)) }

// QuoteSaved implementa devis.Observer.
func (m *Metrics) QuoteSaved(action string) { m.QuotesSaved.WithLabelValues(action).Inc() }

// DocumentRendered implementa devis.Observer.
func (m *Metrics) DocumentRendered(kind string) { m.DocumentsRendered.WithLabelValues(kind).Inc() }

// ObserveHTTP registra una petición terminada.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
