// Package observability exposes Prometheus metrics for the API service and
// the response worker.
package observability

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ResponseBatchesEnqueued counts flattened response batches handed to the queue.
	ResponseBatchesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moonbear_response_batches_enqueued_total",
		Help: "Number of response batches successfully published to the queue.",
	})

	// ResponseRecordsStored counts records persisted by the worker.
	ResponseRecordsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moonbear_response_records_stored_total",
		Help: "Number of flattened response records persisted by the worker.",
	})

	// PipelineFailures counts pipeline failures by error kind.
	PipelineFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moonbear_pipeline_failures_total",
		Help: "Number of pipeline failures, labelled by error kind.",
	}, []string{"kind"})
)

// RegisterMetricsEndpoint exposes Prometheus metrics on /metrics.
func RegisterMetricsEndpoint(router chi.Router) {
	router.Handle("/metrics", promhttp.Handler())
}
