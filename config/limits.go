package config

// LimitsCfg bounds concurrent generation work. Each limit maps to one
// admission check; a request failing any of them waits in the queue instead
// of running immediately.
type LimitsCfg struct {
	// MaxConcurrentJobs bounds the worker pool. Absent -> 3.
	// An explicit 0 is honored and means no worker ever drains the queue;
	// every request waits until its queue timeout.
	MaxConcurrentJobs *int `yaml:"max_concurrent_jobs"`

	// MemoryLimitMB defers new work while host memory usage is above this
	// value. Example: 2048.
	MemoryLimitMB float64 `yaml:"memory_limit_mb"`

	// CPULimitPercent defers new work while instantaneous CPU usage is above
	// this value. Example: 90.
	CPULimitPercent float64 `yaml:"cpu_limit_percent"`

	// StorageLimitMB defers new work while disk usage under StoragePath is
	// above this value. Example: 10240.
	StorageLimitMB float64 `yaml:"storage_limit_mb"`

	// StoragePath is the directory artifacts are rendered into; disk usage is
	// measured there. Absent -> a chartpipe directory under the OS temp dir.
	StoragePath string `yaml:"storage_path"`

	// Workers is derived from MaxConcurrentJobs during init and is not read
	// from YAML.
	Workers int
}
