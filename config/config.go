package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultWorkers        = 3
	defaultMemoryLimitMB  = 2048
	defaultCPULimitPct    = 90
	defaultStorageLimitMB = 10240
	defaultMaxEntries     = 100
	defaultTTL            = 24 * time.Hour
	defaultMaxDepth       = 100
	defaultMaxWait        = 5 * time.Minute
	defaultReaperRate     = 10
	defaultSampleInterval = time.Minute
	defaultHistorySize    = 1440
	defaultOpTimeout      = 3 * time.Second
)

// AdjustConfig fills absent fields with defaults and computes virtual fields.
// It is idempotent and must run before the config is handed to New.
func (cfg *Pipeline) AdjustConfig() {
	if cfg.Limits.MaxConcurrentJobs == nil {
		cfg.Limits.Workers = defaultWorkers
	} else {
		cfg.Limits.Workers = *cfg.Limits.MaxConcurrentJobs
		if cfg.Limits.Workers < 0 {
			cfg.Limits.Workers = 0
		}
	}
	if cfg.Limits.MemoryLimitMB <= 0 {
		cfg.Limits.MemoryLimitMB = defaultMemoryLimitMB
	}
	if cfg.Limits.CPULimitPercent <= 0 {
		cfg.Limits.CPULimitPercent = defaultCPULimitPct
	}
	if cfg.Limits.StorageLimitMB <= 0 {
		cfg.Limits.StorageLimitMB = defaultStorageLimitMB
	}
	if cfg.Limits.StoragePath == "" {
		cfg.Limits.StoragePath = filepath.Join(os.TempDir(), "chartpipe")
	}

	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = defaultMaxEntries
	}
	if cfg.Cache.DefaultTTL <= 0 {
		cfg.Cache.DefaultTTL = defaultTTL
	}

	if cfg.Queue.MaxDepth <= 0 {
		cfg.Queue.MaxDepth = defaultMaxDepth
	}
	if cfg.Queue.MaxWait <= 0 {
		cfg.Queue.MaxWait = defaultMaxWait
	}
	if cfg.Queue.ReaperRate <= 0 {
		cfg.Queue.ReaperRate = defaultReaperRate
	}

	if cfg.Monitor.SampleInterval <= 0 {
		cfg.Monitor.SampleInterval = defaultSampleInterval
	}
	if cfg.Monitor.HistorySize <= 0 {
		cfg.Monitor.HistorySize = defaultHistorySize
	}

	if cfg.SharedCache.Enabled() && cfg.SharedCache.OpTimeout <= 0 {
		cfg.SharedCache.OpTimeout = defaultOpTimeout
	}
}

func LoadConfig(path string) (*Pipeline, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Pipeline
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
