package calclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calky_document_cache_reads_total",
		Help: "Document reads answered from the local cache, by reason.",
	}, []string{"reason"})

	remoteFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calky_document_remote_fetches_total",
		Help: "Document reads that downloaded the remote body.",
	})

	writeConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calky_write_conflicts_total",
		Help: "Conditional writes that hit a precondition conflict.",
	})

	conflictRetryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calky_conflict_retry_failures_total",
		Help: "Mutations abandoned after the single conflict retry failed.",
	})
)

const (
	cacheReasonETagMatch = "etag_match"
	cacheReasonFresh     = "freshness_override"
	cacheReasonFallback  = "remote_unavailable"
)
