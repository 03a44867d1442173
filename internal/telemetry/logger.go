// Package telemetry logs interval pipeline stats so operators can watch hit
// rates and pressure without scraping the metrics registry.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/finsight/chartpipe/config"
	"github.com/finsight/chartpipe/internal/metrics"
)

// Logs emits one stats line per configured interval. Counter fields are
// deltas over the interval, gauge fields are current values; an interval with
// no traffic at all is skipped.
type Logs struct {
	ctx      context.Context
	cfg      *config.TelemetryCfg
	logger   *slog.Logger
	registry *metrics.Registry
	prev     metrics.Snapshot
}

func New(ctx context.Context, cfg *config.TelemetryCfg, logger *slog.Logger, reg *metrics.Registry) *Logs {
	l := &Logs{ctx: ctx, cfg: cfg, logger: logger, registry: reg}
	if cfg.Enabled() {
		go l.run()
	}
	return l
}

func (l *Logs) run() {
	t := time.NewTicker(l.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-t.C:
			l.report()
		}
	}
}

func (l *Logs) report() {
	cur := l.registry.Snapshot()
	defer func() { l.prev = cur }()

	hits := cur.CacheHits - l.prev.CacheHits
	misses := cur.CacheMisses - l.prev.CacheMisses
	generated := cur.Generated - l.prev.Generated
	timeouts := cur.Timeouts - l.prev.Timeouts
	rejected := cur.Rejected - l.prev.Rejected
	errors := (cur.GenerationErrors - l.prev.GenerationErrors) + (cur.SharedErrors - l.prev.SharedErrors)

	if hits+misses+generated+timeouts+rejected+errors == 0 {
		return
	}

	l.logger.Info("pipeline stats",
		"interval", l.cfg.Interval.String(),
		"hits", hits,
		"misses", misses,
		"shared_hits", cur.SharedHits-l.prev.SharedHits,
		"generated", generated,
		"errors", errors,
		"timeouts", timeouts,
		"rejected", rejected,
		"queue_depth", cur.QueueDepth,
		"active_jobs", cur.ActiveJobs,
		"local_entries", cur.LocalEntries,
	)
}
