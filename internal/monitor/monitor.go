package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/finsight/chartpipe/config"
)

// Snapshot is one immutable sample of host pressure. A failed field is set
// to -1 and Partial is raised; the rest of the sample stays usable.
type Snapshot struct {
	Timestamp  time.Time
	CPUPercent float64
	MemUsedMB  float64
	DiskUsedMB float64
	ActiveJobs int64
	Partial    bool
}

// Summary aggregates snapshots over a trailing window.
type Summary struct {
	Samples  int
	AvgCPU   float64
	MaxCPU   float64
	AvgMemMB float64
	MaxMemMB float64
}

// Monitor samples host resources on a fixed cadence and retains a bounded
// FIFO history. It is the single writer of the history; everyone else only
// reads, so a read/write lock is enough.
type Monitor struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        config.MonitorCfg
	logger     *slog.Logger
	reader     Reader
	path       string
	activeJobs func() int64

	mu      sync.RWMutex
	history []Snapshot
}

func New(
	ctx context.Context,
	cfg config.MonitorCfg,
	logger *slog.Logger,
	reader Reader,
	storagePath string,
	activeJobs func() int64,
) *Monitor {
	ctx, cancel := context.WithCancel(ctx)
	m := &Monitor{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        cfg,
		logger:     logger,
		reader:     reader,
		path:       storagePath,
		activeJobs: activeJobs,
		history:    make([]Snapshot, 0, cfg.HistorySize),
	}
	return m.run()
}

func (m *Monitor) Latest() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.history) == 0 {
		return Snapshot{}, false
	}
	return m.history[len(m.history)-1], true
}

func (m *Monitor) Summary(window time.Duration) Summary {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum Summary
	for i := len(m.history) - 1; i >= 0; i-- {
		s := m.history[i]
		if s.Timestamp.Before(cutoff) {
			break
		}
		sum.Samples++
		if s.CPUPercent >= 0 {
			sum.AvgCPU += s.CPUPercent
			if s.CPUPercent > sum.MaxCPU {
				sum.MaxCPU = s.CPUPercent
			}
		}
		if s.MemUsedMB >= 0 {
			sum.AvgMemMB += s.MemUsedMB
			if s.MemUsedMB > sum.MaxMemMB {
				sum.MaxMemMB = s.MemUsedMB
			}
		}
	}
	if sum.Samples > 0 {
		sum.AvgCPU /= float64(sum.Samples)
		sum.AvgMemMB /= float64(sum.Samples)
	}
	return sum
}

func (m *Monitor) Close() error {
	m.cancel()
	return nil
}

func (m *Monitor) run() *Monitor {
	m.logger.Info("resource monitor is running",
		"interval", m.cfg.SampleInterval.String(), "history", m.cfg.HistorySize)
	go m.loop()
	return m
}

// loop checks the stop signal between samples, never mid-sample, so shutdown
// completes within one interval.
func (m *Monitor) loop() {
	defer m.logger.Info("resource monitor is stopped")

	ticker := time.NewTicker(m.cfg.SampleInterval)
	defer ticker.Stop()

	m.append(m.sample())
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.append(m.sample())
		}
	}
}

func (m *Monitor) sample() Snapshot {
	s := Snapshot{Timestamp: time.Now()}

	var err error
	if s.CPUPercent, err = m.reader.CPUPercent(); err != nil {
		s.CPUPercent, s.Partial = -1, true
		m.logger.Debug("cpu sample failed", "err", err)
	}
	if s.MemUsedMB, err = m.reader.MemoryUsedMB(); err != nil {
		s.MemUsedMB, s.Partial = -1, true
		m.logger.Debug("memory sample failed", "err", err)
	}
	if s.DiskUsedMB, err = m.reader.DiskUsedMB(m.path); err != nil {
		s.DiskUsedMB, s.Partial = -1, true
		m.logger.Debug("disk sample failed", "err", err)
	}
	if m.activeJobs != nil {
		s.ActiveJobs = m.activeJobs()
	}
	return s
}

func (m *Monitor) append(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) >= m.cfg.HistorySize {
		m.history = append(m.history[1:], s)
		return
	}
	m.history = append(m.history, s)
}
