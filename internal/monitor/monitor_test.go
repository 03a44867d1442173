package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/finsight/chartpipe/config"
)

// fakeReader serves canned figures; any of them can be failed independently.
type fakeReader struct {
	mu      sync.Mutex
	cpu     float64
	mem     float64
	disk    float64
	cpuErr  error
	memErr  error
	diskErr error
}

func (f *fakeReader) CPUPercent() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cpu, f.cpuErr
}

func (f *fakeReader) MemoryUsedMB() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mem, f.memErr
}

func (f *fakeReader) DiskUsedMB(string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disk, f.diskErr
}

func (f *fakeReader) set(cpu, mem float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cpu, f.mem = cpu, mem
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitorSamplesImmediately(t *testing.T) {
	reader := &fakeReader{cpu: 42.5, mem: 1024, disk: 100}
	cfg := config.MonitorCfg{SampleInterval: time.Hour, HistorySize: 10}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", func() int64 { return 3 })
	defer m.Close()

	require.Eventually(t, func() bool {
		_, ok := m.Latest()
		return ok
	}, time.Second, 5*time.Millisecond, "first sample lands before the first tick")

	s, ok := m.Latest()
	require.True(t, ok)
	require.Equal(t, 42.5, s.CPUPercent)
	require.Equal(t, float64(1024), s.MemUsedMB)
	require.Equal(t, float64(100), s.DiskUsedMB)
	require.Equal(t, int64(3), s.ActiveJobs)
	require.False(t, s.Partial)
}

func TestMonitorPartialSample(t *testing.T) {
	reader := &fakeReader{cpu: 10, mem: 500, cpuErr: errors.New("proc unreadable")}
	cfg := config.MonitorCfg{SampleInterval: time.Hour, HistorySize: 10}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", nil)
	defer m.Close()

	require.Eventually(t, func() bool {
		_, ok := m.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)

	s, _ := m.Latest()
	require.True(t, s.Partial)
	require.Equal(t, float64(-1), s.CPUPercent, "failed field is marked, not zeroed")
	require.Equal(t, float64(500), s.MemUsedMB, "other fields stay usable")
}

func TestMonitorHistoryBound(t *testing.T) {
	reader := &fakeReader{cpu: 1}
	cfg := config.MonitorCfg{SampleInterval: 5 * time.Millisecond, HistorySize: 3}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", nil)
	defer m.Close()

	require.Eventually(t, func() bool {
		return m.Summary(time.Hour).Samples == 3
	}, 2*time.Second, 5*time.Millisecond, "history settles at its bound")
}

func TestMonitorSummary(t *testing.T) {
	reader := &fakeReader{}
	reader.set(20, 1000)
	cfg := config.MonitorCfg{SampleInterval: 10 * time.Millisecond, HistorySize: 100}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", nil)
	defer m.Close()

	require.Eventually(t, func() bool {
		return m.Summary(time.Hour).Samples >= 2
	}, 2*time.Second, 5*time.Millisecond)

	reader.set(80, 3000)
	require.Eventually(t, func() bool {
		return m.Summary(time.Hour).MaxCPU == 80
	}, 2*time.Second, 5*time.Millisecond)

	sum := m.Summary(time.Hour)
	require.Greater(t, sum.AvgCPU, float64(0))
	require.LessOrEqual(t, sum.AvgCPU, sum.MaxCPU)
	require.Equal(t, float64(3000), sum.MaxMemMB)
}

func TestMonitorSummaryEmptyWindow(t *testing.T) {
	reader := &fakeReader{}
	cfg := config.MonitorCfg{SampleInterval: time.Hour, HistorySize: 10}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", nil)
	defer m.Close()

	require.Eventually(t, func() bool {
		_, ok := m.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)

	sum := m.Summary(0)
	require.Equal(t, 0, sum.Samples)
	require.Equal(t, float64(0), sum.AvgCPU)
}

func TestMonitorClose(t *testing.T) {
	reader := &fakeReader{}
	cfg := config.MonitorCfg{SampleInterval: 5 * time.Millisecond, HistorySize: 10}

	m := New(context.Background(), cfg, discard(), reader, "/tmp", nil)
	require.NoError(t, m.Close())

	time.Sleep(20 * time.Millisecond)
	before := m.Summary(time.Hour).Samples
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, before, m.Summary(time.Hour).Samples, "no samples after close")
}
