package metrics

import "sync/atomic"

// Registry aggregates pipeline counters and gauges. One instance is owned by
// each Pipeline and injected into the components that feed it; there is no
// ambient global.
type Registry struct {
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	sharedHits   atomic.Int64
	sharedErrors atomic.Int64
	generated    atomic.Int64
	genErrors    atomic.Int64
	timeouts     atomic.Int64
	rejected     atomic.Int64

	queueDepth   atomic.Int64
	activeJobs   atomic.Int64
	localEntries atomic.Int64
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) CacheHit()        { r.cacheHits.Add(1) }
func (r *Registry) CacheMiss()       { r.cacheMisses.Add(1) }
func (r *Registry) SharedHit()       { r.sharedHits.Add(1) }
func (r *Registry) SharedError()     { r.sharedErrors.Add(1) }
func (r *Registry) Generated()       { r.generated.Add(1) }
func (r *Registry) GenerationError() { r.genErrors.Add(1) }
func (r *Registry) Timeout()         { r.timeouts.Add(1) }
func (r *Registry) Rejected()        { r.rejected.Add(1) }

func (r *Registry) SetQueueDepth(n int64)   { r.queueDepth.Store(n) }
func (r *Registry) AddActiveJobs(d int64)   { r.activeJobs.Add(d) }
func (r *Registry) SetLocalEntries(n int64) { r.localEntries.Store(n) }

// Snapshot holds cumulative counters (monotonic) plus current gauge values.
type Snapshot struct {
	CacheHits        int64
	CacheMisses      int64
	SharedHits       int64
	SharedErrors     int64
	Generated        int64
	GenerationErrors int64
	Timeouts         int64
	Rejected         int64

	QueueDepth   int64
	ActiveJobs   int64
	LocalEntries int64
}

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		CacheHits:        r.cacheHits.Load(),
		CacheMisses:      r.cacheMisses.Load(),
		SharedHits:       r.sharedHits.Load(),
		SharedErrors:     r.sharedErrors.Load(),
		Generated:        r.generated.Load(),
		GenerationErrors: r.genErrors.Load(),
		Timeouts:         r.timeouts.Load(),
		Rejected:         r.rejected.Load(),
		QueueDepth:       r.queueDepth.Load(),
		ActiveJobs:       r.activeJobs.Load(),
		LocalEntries:     r.localEntries.Load(),
	}
}

// Reset zeroes the counters. Administrative use only, not part of the hot
// path; gauges track live state and are left alone.
func (r *Registry) Reset() {
	r.cacheHits.Store(0)
	r.cacheMisses.Store(0)
	r.sharedHits.Store(0)
	r.sharedErrors.Store(0)
	r.generated.Store(0)
	r.genErrors.Store(0)
	r.timeouts.Store(0)
	r.rejected.Store(0)
}
