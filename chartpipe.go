// Package chartpipe is an adaptive cache and admission-controlled execution
// pipeline for chart artifact generation. It fingerprints requests into
// stable cache keys, serves repeats from a bounded local tier (optionally
// backed by a shared Redis tier), and gates fresh generation work behind
// resource-aware admission and a priority queue so the host is never
// oversubscribed.
package chartpipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/finsight/chartpipe/config"
	"github.com/finsight/chartpipe/internal/admission"
	"github.com/finsight/chartpipe/internal/batch"
	"github.com/finsight/chartpipe/internal/cache"
	"github.com/finsight/chartpipe/internal/cache/remote"
	"github.com/finsight/chartpipe/internal/fingerprint"
	"github.com/finsight/chartpipe/internal/metrics"
	"github.com/finsight/chartpipe/internal/monitor"
	"github.com/finsight/chartpipe/internal/queue"
	"github.com/finsight/chartpipe/internal/telemetry"
	"github.com/finsight/chartpipe/model"
)

// Generator produces the artifact for one request. The pipeline decides when
// (and whether) it runs; implementations should honor ctx cancellation for
// long renders.
type Generator func(ctx context.Context, req *model.GenerationRequest) (*model.Artifact, error)

// Result pairs one batch request with its outcome.
type Result struct {
	Request  *model.GenerationRequest
	Artifact *model.Artifact
	Err      error
}

// Option overrides a pipeline dependency, mainly for tests and embedding.
type Option func(*options)

type options struct {
	reader monitor.Reader
	shared remote.Store
	clk    clock.Clock
}

// WithReader substitutes the host resource reader.
func WithReader(r monitor.Reader) Option {
	return func(o *options) { o.reader = r }
}

// WithSharedStore substitutes the shared cache tier. The store's lifecycle
// stays with the caller; Close does not touch it.
func WithSharedStore(s remote.Store) Option {
	return func(o *options) { o.shared = s }
}

// WithClock substitutes the local tier's time source.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clk = c }
}

// Pipeline is the facade over the cache tiers, admission controller, priority
// queue and resource monitor. One instance serves many goroutines.
type Pipeline struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Pipeline
	logger *slog.Logger

	registry  *metrics.Registry
	cache     *cache.Tiered
	queue     *queue.Queue
	monitor   *monitor.Monitor
	admission *admission.Controller
	telemetry *telemetry.Logs

	// ownedShared is the redis adapter the pipeline created itself and must
	// close; nil when the store was injected or the shared tier is disabled.
	ownedShared io.Closer
	closed      atomic.Bool
}

// New builds and starts a pipeline. The cfg must have passed AdjustConfig
// (LoadConfig does this); the pipeline runs until ctx ends or Close is
// called.
func New(ctx context.Context, cfg *config.Pipeline, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("chartpipe: nil config")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.reader == nil {
		o.reader = monitor.HostReader{}
	}
	if o.clk == nil {
		o.clk = clock.New()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pipeline{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		registry: metrics.NewRegistry(),
	}

	shared := o.shared
	var opTimeout time.Duration
	if cfg.SharedCache.Enabled() {
		opTimeout = cfg.SharedCache.OpTimeout
		if shared == nil {
			r := remote.NewRedis(cfg.SharedCache)
			shared = r
			p.ownedShared = r
		}
	}

	p.cache = cache.NewTiered(ctx, cfg.Cache, shared, opTimeout, p.registry, logger, o.clk)
	p.queue = queue.New(ctx, cfg.Queue, cfg.Limits.Workers, logger, p.registry)
	p.monitor = monitor.New(ctx, cfg.Monitor, logger, o.reader, cfg.Limits.StoragePath, p.queue.Active)
	p.admission = admission.New(cfg.Limits, cfg.Queue.MaxDepth, o.reader, logger, p.queue.Active, p.queue.Depth)
	p.telemetry = telemetry.New(ctx, cfg.Telemetry, logger, p.registry)

	logger.Info("pipeline is running",
		"workers", cfg.Limits.Workers,
		"cache_entries", cfg.Cache.MaxEntries,
		"queue_depth", cfg.Queue.MaxDepth,
		"shared_tier", shared != nil,
	)
	return p, nil
}

// GenerateOrGet returns the artifact for req, from cache when possible,
// freshly generated otherwise. A cache miss goes through admission: it is
// rejected with ErrAdmissionRejected when the queue is at capacity, and
// otherwise waits its turn on the priority queue. Waiting is bounded by the
// configured queue timeout and by ctx.
func (p *Pipeline) GenerateOrGet(ctx context.Context, req *model.GenerationRequest, gen Generator) (*model.Artifact, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	key := fingerprint.Key(req)
	if art, ok := p.cache.Get(ctx, key); ok {
		return art, nil
	}

	if p.admission.Admit() == admission.Reject {
		p.registry.Rejected()
		p.logger.Warn("request rejected at admission",
			"symbol", req.Symbol, "kind", req.Kind, "queue_depth", p.queue.Depth())
		return nil, ErrAdmissionRejected
	}

	task, err := p.queue.Submit(req, key, p.taskFor(key, req, gen))
	if err != nil {
		// Submit races admission; a queue that filled in between is still a
		// capacity rejection.
		p.registry.Rejected()
		return nil, ErrAdmissionRejected
	}

	select {
	case <-ctx.Done():
		task.Cancel()
		return nil, ctx.Err()
	case <-p.ctx.Done():
		return nil, ErrClosed
	case <-task.Done():
		return task.Result()
	}
}

// taskFor wraps one generation as queue work. The cache re-check makes
// duplicate requests that queued behind the first one resolve without a
// second render.
func (p *Pipeline) taskFor(key string, req *model.GenerationRequest, gen Generator) queue.TaskFunc {
	return func(ctx context.Context) (*model.Artifact, error) {
		if art, ok := p.cache.Get(ctx, key); ok {
			return art, nil
		}

		art, err := gen(ctx, req)
		if err != nil {
			p.registry.GenerationError()
			return nil, fmt.Errorf("generate %s/%s: %w", req.Kind, req.Symbol, err)
		}

		p.registry.Generated()
		if err := p.cache.Put(ctx, key, art, 0); err != nil {
			p.logger.Warn("generated artifact not cached", "key", key, "err", err)
		}
		return art, nil
	}
}

// GenerateBatch dedupes reqs by fingerprint, orders survivors by priority and
// runs them concurrently. It returns one Result per surviving request, in the
// optimized order; individual failures never abort the rest of the batch.
func (p *Pipeline) GenerateBatch(ctx context.Context, reqs []*model.GenerationRequest, gen Generator) []Result {
	optimized := batch.Optimize(reqs)
	if len(optimized) == 0 {
		return nil
	}

	results := make([]Result, len(optimized))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range optimized {
		i, req := i, req
		g.Go(func() error {
			art, err := p.GenerateOrGet(gctx, req, gen)
			results[i] = Result{Request: req, Artifact: art, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Metrics snapshots the pipeline counters and gauges.
func (p *Pipeline) Metrics() metrics.Snapshot {
	return p.registry.Snapshot()
}

// Collector exposes the same figures as a prometheus.Collector, for host
// processes that scrape.
func (p *Pipeline) Collector() prometheus.Collector {
	return p.registry
}

// ResourceLatest returns the most recent host resource sample, if any was
// taken yet.
func (p *Pipeline) ResourceLatest() (monitor.Snapshot, bool) {
	return p.monitor.Latest()
}

// ResourceSummary aggregates resource samples over the trailing window.
func (p *Pipeline) ResourceSummary(window time.Duration) monitor.Summary {
	return p.monitor.Summary(window)
}

// Close stops workers, the reaper, the monitor and telemetry, and closes the
// redis client if the pipeline created it. Queued tasks resolve with ErrClosed
// on the caller side; Close is idempotent.
func (p *Pipeline) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.cancel()

	var err error
	if p.ownedShared != nil {
		err = p.ownedShared.Close()
	}
	p.logger.Info("pipeline is stopped")
	return err
}
