package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docqa"

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	documentsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_ingested_total",
		Help:      "Documents ingested successfully.",
	})
	ingestFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_ingest_failures_total",
		Help:      "Rejected ingestions by pipeline stage.",
	}, []string{"stage"})
	documentsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documents_deleted_total",
		Help:      "Documents deleted.",
	})
	indexFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_index_failures_total",
		Help:      "Search index operations that failed and were left for reconciliation.",
	}, []string{"op"})
	orphanBlobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphan_blobs_total",
		Help:      "Blobs left behind after a failed compensating delete.",
	})
	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queries_total",
		Help:      "Document queries by outcome.",
	}, []string{"outcome"})
	generationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Language model generation latency.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	reconcileMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_messages_total",
		Help:      "Reconcile notices handled by the worker, by kind and outcome.",
	}, []string{"kind", "outcome"})
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		documentsIngestedTotal,
		ingestFailuresTotal,
		documentsDeletedTotal,
		indexFailuresTotal,
		orphanBlobsTotal,
		queriesTotal,
		generationDuration,
		reconcileMessagesTotal,
		httpRequestsTotal,
	)
}

// IncDocumentIngested increments the ingested counter.
func IncDocumentIngested() {
	documentsIngestedTotal.Inc()
}

// IncIngestFailed records a rejected ingestion at the given stage (blob, extract, metadata).
func IncIngestFailed(stage string) {
	ingestFailuresTotal.WithLabelValues(stage).Inc()
}

// IncDocumentDeleted increments the deleted counter.
func IncDocumentDeleted() {
	documentsDeletedTotal.Inc()
}

// IncIndexFailed records a failed index operation (index, delete).
func IncIndexFailed(op string) {
	indexFailuresTotal.WithLabelValues(op).Inc()
}

// IncOrphanBlob records a blob that could not be removed during compensation.
func IncOrphanBlob() {
	orphanBlobsTotal.Inc()
}

// IncQuery records a query outcome (answered, not_found, generation_failed, persist_failed).
func IncQuery(outcome string) {
	queriesTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration records how long a generation call took.
func ObserveGeneration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	generationDuration.Observe(d.Seconds())
}

// IncReconcile records a reconcile notice outcome (completed, failed, discarded).
func IncReconcile(kind, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	reconcileMessagesTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveHTTPRequest records a served request.
func ObserveHTTPRequest(method, route, status string) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
