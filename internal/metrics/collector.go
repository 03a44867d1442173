package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	descCacheHits = prometheus.NewDesc("chartpipe_cache_hits_total",
		"Requests served from either cache tier.", nil, nil)
	descCacheMisses = prometheus.NewDesc("chartpipe_cache_misses_total",
		"Requests that missed both cache tiers.", nil, nil)
	descSharedHits = prometheus.NewDesc("chartpipe_shared_hits_total",
		"Local misses served by the shared tier.", nil, nil)
	descSharedErrors = prometheus.NewDesc("chartpipe_shared_errors_total",
		"Shared-tier operations that degraded to local-only.", nil, nil)
	descGenerated = prometheus.NewDesc("chartpipe_generated_total",
		"Artifacts produced by the generator.", nil, nil)
	descGenErrors = prometheus.NewDesc("chartpipe_errors_total",
		"Generator invocations that returned an error.", nil, nil)
	descTimeouts = prometheus.NewDesc("chartpipe_queue_timeouts_total",
		"Tasks that waited past the queue bound.", nil, nil)
	descRejected = prometheus.NewDesc("chartpipe_rejected_total",
		"Requests refused at admission.", nil, nil)
	descQueueDepth = prometheus.NewDesc("chartpipe_queue_depth",
		"Tasks currently waiting in the priority queue.", nil, nil)
	descActiveJobs = prometheus.NewDesc("chartpipe_active_jobs",
		"Tasks currently executing on the worker pool.", nil, nil)
	descLocalEntries = prometheus.NewDesc("chartpipe_local_cache_entries",
		"Entries currently held by the local tier.", nil, nil)
)

// Describe implements prometheus.Collector.
func (r *Registry) Describe(ch chan<- *prometheus.Desc) {
	ch <- descCacheHits
	ch <- descCacheMisses
	ch <- descSharedHits
	ch <- descSharedErrors
	ch <- descGenerated
	ch <- descGenErrors
	ch <- descTimeouts
	ch <- descRejected
	ch <- descQueueDepth
	ch <- descActiveJobs
	ch <- descLocalEntries
}

// Collect implements prometheus.Collector, exporting the registry as const
// metrics so a host process can hang the pipeline off its scrape registry.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	s := r.Snapshot()
	ch <- prometheus.MustNewConstMetric(descCacheHits, prometheus.CounterValue, float64(s.CacheHits))
	ch <- prometheus.MustNewConstMetric(descCacheMisses, prometheus.CounterValue, float64(s.CacheMisses))
	ch <- prometheus.MustNewConstMetric(descSharedHits, prometheus.CounterValue, float64(s.SharedHits))
	ch <- prometheus.MustNewConstMetric(descSharedErrors, prometheus.CounterValue, float64(s.SharedErrors))
	ch <- prometheus.MustNewConstMetric(descGenerated, prometheus.CounterValue, float64(s.Generated))
	ch <- prometheus.MustNewConstMetric(descGenErrors, prometheus.CounterValue, float64(s.GenerationErrors))
	ch <- prometheus.MustNewConstMetric(descTimeouts, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(descRejected, prometheus.CounterValue, float64(s.Rejected))
	ch <- prometheus.MustNewConstMetric(descQueueDepth, prometheus.GaugeValue, float64(s.QueueDepth))
	ch <- prometheus.MustNewConstMetric(descActiveJobs, prometheus.GaugeValue, float64(s.ActiveJobs))
	ch <- prometheus.MustNewConstMetric(descLocalEntries, prometheus.GaugeValue, float64(s.LocalEntries))
}
