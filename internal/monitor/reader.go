package monitor

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Reader reports current host resource figures. Admission checks and the
// monitor both consume it; tests substitute a fake.
type Reader interface {
	CPUPercent() (float64, error)
	MemoryUsedMB() (float64, error)
	DiskUsedMB(path string) (float64, error)
}

// HostReader samples the local host via gopsutil.
type HostReader struct{}

func (HostReader) CPUPercent() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(pcts) == 0 {
		return 0, nil
	}
	return pcts[0], nil
}

func (HostReader) MemoryUsedMB() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return float64(vm.Used) / (1 << 20), nil
}

func (HostReader) DiskUsedMB(path string) (float64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return float64(usage.Used) / (1 << 20), nil
}
