// Package admission decides whether new generation work runs now, waits in
// the queue, or is refused outright.
package admission

import (
	"log/slog"

	"github.com/finsight/chartpipe/config"
	"github.com/finsight/chartpipe/internal/monitor"
)

type Decision int

const (
	Proceed Decision = iota
	Enqueue
	Reject
)

func (d Decision) String() string {
	switch d {
	case Proceed:
		return "proceed"
	case Enqueue:
		return "enqueue"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Controller runs the ordered admission checks. Checks are cheapest first
// and short-circuit: counter comparisons before syscalls, memory before cpu
// before disk, so the common "resources fine" case stays fast.
//
// Reject is reserved for requests that cannot succeed regardless of resource
// state: the queue at its hard capacity bound.
type Controller struct {
	cfg        config.LimitsCfg
	maxDepth   int
	reader     monitor.Reader
	logger     *slog.Logger
	activeJobs func() int64
	queueDepth func() int
}

func New(
	cfg config.LimitsCfg,
	maxDepth int,
	reader monitor.Reader,
	logger *slog.Logger,
	activeJobs func() int64,
	queueDepth func() int,
) *Controller {
	return &Controller{
		cfg:        cfg,
		maxDepth:   maxDepth,
		reader:     reader,
		logger:     logger,
		activeJobs: activeJobs,
		queueDepth: queueDepth,
	}
}

func (c *Controller) Admit() Decision {
	if c.queueDepth() >= c.maxDepth {
		return Reject
	}
	if c.activeJobs() >= int64(c.cfg.Workers) {
		return c.deferFor("active_jobs")
	}

	// Reader failures never block admission: a sample error is absorbed and
	// the corresponding limit is treated as unconstrained.
	if mb, err := c.reader.MemoryUsedMB(); err == nil && mb > c.cfg.MemoryLimitMB {
		return c.deferFor("memory")
	}
	if pct, err := c.reader.CPUPercent(); err == nil && pct > c.cfg.CPULimitPercent {
		return c.deferFor("cpu")
	}
	if mb, err := c.reader.DiskUsedMB(c.cfg.StoragePath); err == nil && mb > c.cfg.StorageLimitMB {
		return c.deferFor("disk")
	}
	return Proceed
}

func (c *Controller) deferFor(dimension string) Decision {
	c.logger.Debug("admission deferred", "reason", dimension)
	return Enqueue
}
