package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	postingsTotal     *prometheus.CounterVec
	integrityFaults   prometheus.Counter
	distributionRuns  prometheus.Counter
	pointsDistributed prometheus.Counter
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "merahputih_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "merahputih_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	postings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "koperasi_ledger_postings_total",
		Help: "Jumlah posting jurnal berdasarkan hasil.",
	}, []string{"result"})
	integrity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "koperasi_ledger_integrity_faults_total",
		Help: "Jumlah pelanggaran keseimbangan buku besar yang terdeteksi.",
	})
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "koperasi_point_distribution_runs_total",
		Help: "Jumlah distribusi gaji poin yang selesai.",
	})
	points := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "koperasi_points_distributed_total",
		Help: "Total poin yang dibagikan kepada pekerja.",
	})
	registry.MustRegister(requests, duration, postings, integrity, runs, points)
	return &Metrics{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:     requests,
		requestDuration:   duration,
		postingsTotal:     postings,
		integrityFaults:   integrity,
		distributionRuns:  runs,
		pointsDistributed: points,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// PostingCommitted mencatat posting jurnal yang berhasil.
func (m *Metrics) PostingCommitted() {
	if m == nil {
		return
	}
	m.postingsTotal.WithLabelValues("committed").Inc()
}

// PostingRejected mencatat posting jurnal yang ditolak validasi.
func (m *Metrics) PostingRejected() {
	if m == nil {
		return
	}
	m.postingsTotal.WithLabelValues("rejected").Inc()
}

// IntegrityFault mencatat pelanggaran keseimbangan buku besar.
func (m *Metrics) IntegrityFault() {
	if m == nil {
		return
	}
	m.integrityFaults.Inc()
}

// DistributionCompleted mencatat satu distribusi gaji poin yang selesai.
func (m *Metrics) DistributionCompleted(workers int, total int64) {
	if m == nil {
		return
	}
	m.distributionRuns.Inc()
	m.pointsDistributed.Add(float64(total))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
