package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/finsight/chartpipe/config"
	"github.com/finsight/chartpipe/internal/cache/remote"
	"github.com/finsight/chartpipe/internal/metrics"
	"github.com/finsight/chartpipe/model"
)

// Tiered composes the bounded local tier with an optional shared tier, and
// presents the same get/put shape as either one, so callers never know how
// many tiers sit behind a lookup.
//
// Shared-tier writes are best-effort and asynchronous: a failure there is
// logged and counted but never fails a Put. Shared-tier reads are bounded by
// the configured op timeout, after which the lookup is a plain local miss.
type Tiered struct {
	ctx       context.Context
	cfg       config.CacheCfg
	local     *Local
	shared    remote.Store
	opTimeout time.Duration
	metrics   *metrics.Registry
	logger    *slog.Logger
}

func NewTiered(
	ctx context.Context,
	cfg config.CacheCfg,
	shared remote.Store,
	opTimeout time.Duration,
	reg *metrics.Registry,
	logger *slog.Logger,
	clk clock.Clock,
) *Tiered {
	if opTimeout <= 0 {
		opTimeout = 3 * time.Second
	}
	return &Tiered{
		ctx:       ctx,
		cfg:       cfg,
		local:     NewLocal(cfg.MaxEntries, clk),
		shared:    shared,
		opTimeout: opTimeout,
		metrics:   reg,
		logger:    logger,
	}
}

func (t *Tiered) Get(ctx context.Context, key string) (*model.Artifact, bool) {
	if art, ok := t.local.Get(key); ok {
		t.metrics.CacheHit()
		t.metrics.SetLocalEntries(int64(t.local.Len()))
		return art, true
	}

	if t.shared != nil {
		if art, ok := t.getShared(ctx, key); ok {
			t.metrics.CacheHit()
			t.metrics.SharedHit()
			return art, true
		}
	}

	t.metrics.CacheMiss()
	return nil, false
}

func (t *Tiered) Put(ctx context.Context, key string, art *model.Artifact, ttl time.Duration) error {
	if ttl <= 0 || ttl > t.cfg.DefaultTTL {
		ttl = t.cfg.DefaultTTL
	}

	t.local.Put(key, art, ttl)
	t.metrics.SetLocalEntries(int64(t.local.Len()))

	if t.shared != nil {
		data, err := json.Marshal(art)
		if err != nil {
			t.logger.Warn("artifact not encodable for shared tier", "key", key, "err", err)
			return nil
		}
		go t.writeShared(key, data, ttl)
	}
	return nil
}

func (t *Tiered) Len() int {
	return t.local.Len()
}

func (t *Tiered) getShared(ctx context.Context, key string) (*model.Artifact, bool) {
	opCtx, cancel := context.WithTimeout(ctx, t.opTimeout)
	defer cancel()

	data, err := t.shared.Get(opCtx, key)
	if err != nil {
		if !errors.Is(err, remote.ErrMiss) {
			t.metrics.SharedError()
		}
		return nil, false
	}

	var art model.Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		t.logger.Warn("shared tier payload undecodable", "key", key, "err", err)
		t.metrics.SharedError()
		return nil, false
	}

	// Backfill so the next lookup is a local hit. The shared tier keeps the
	// authoritative expiry; the local copy just gets the default lifetime.
	t.local.Put(key, &art, t.cfg.DefaultTTL)
	t.metrics.SetLocalEntries(int64(t.local.Len()))
	return art.Clone(), true
}

// writeShared runs detached from the caller, bounded by the pipeline
// lifetime rather than the request.
func (t *Tiered) writeShared(key string, data []byte, ttl time.Duration) {
	opCtx, cancel := context.WithTimeout(t.ctx, t.opTimeout)
	defer cancel()

	if err := t.shared.Set(opCtx, key, data, ttl); err != nil {
		t.metrics.SharedError()
		t.logger.Warn("shared tier write degraded", "key", key, "err", err)
	}
}
